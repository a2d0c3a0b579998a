package persistent

import (
	"github.com/zeebo/blake3"

	"github.com/outofforest/photon"
	"github.com/outofforest/quadrant"
)

// Hash is the digest of the tree.
type Hash [32]byte

// Digest computes the hash of the materialized part of the tree.
// Two trees have equal digests if they have the same shape, variants, embeddings and base cells,
// so expanding or caching a node changes the digest even if the meaning of the tree stays the same.
func Digest[A, B quadrant.Embeddable](n quadrant.Node[A, B]) Hash {
	h := blake3.New()

	variant := n.Quad.Variant
	_, _ = h.Write(photon.NewFromValue(&variant).B)
	_, _ = h.Write(photon.NewFromValue(&n.Depth).B)
	_, _ = h.Write(photon.NewFromValue(&n.Embedding).B)

	switch variant {
	case quadrant.VariantBase:
		_, _ = h.Write(photon.NewFromValue(&n.Quad.Base).B)
	case quadrant.VariantNode:
		for _, child := range n.Quad.Children {
			d := Digest(child)
			_, _ = h.Write(d[:])
		}
	}

	var d Hash
	h.Sum(d[:0])
	return d
}
