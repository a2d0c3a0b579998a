// Package persistent stores quad-trees in snapshots.
//
// Snapshot starts with the header followed by zstd stream of node records stored in pre-order.
// Record consists of variant, depth, embedding and, for base variant, the base cell.
// Stream is terminated by xxhash checksum of all the records.
// Intern table of the reference backend is stored in the separate file of the same layout.
// Base cells and embeddings are stored as raw memory, so they must be fixed-size types without pointers.
package persistent

import (
	"bytes"
	"encoding/binary"
	"io"
	"unsafe"

	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/outofforest/photon"
	"github.com/outofforest/quadrant"
)

const (
	magic      = "QUADSNAP"
	tableMagic = "QUADTABL"
	version    = 1

	uint64Length = 8
	headerLength = len(magic) + 1 + 2*uint64Length
)

// ErrCorrupted is returned when snapshot can't be decoded.
var ErrCorrupted = errors.New("snapshot corrupted")

// Save writes the tree into the snapshot.
func Save[A, B quadrant.Embeddable](w io.Writer, n quadrant.Node[A, B]) error {
	return save(w, header[A, B](magic), func(w io.Writer) error {
		e := encoder[A, B]{w: w}
		return e.encode(n)
	})
}

// Load reads the tree from the snapshot.
func Load[A, B quadrant.Embeddable](r io.Reader) (quadrant.Node[A, B], error) {
	var n quadrant.Node[A, B]
	if err := load(r, header[A, B](magic), func(r io.Reader) error {
		d := decoder[A, B]{r: r}
		var err error
		n, err = d.decode(quadrant.MaxDepth)
		return err
	}); err != nil {
		return quadrant.Node[A, B]{}, err
	}

	if err := quadrant.Validate(n); err != nil {
		return quadrant.Node[A, B]{}, errors.Wrap(ErrCorrupted, err.Error())
	}
	return n, nil
}

// save writes the header followed by zstd stream of records produced by encode and their checksum.
func save(w io.Writer, h []byte, encode func(w io.Writer) error) error {
	if _, err := w.Write(h); err != nil {
		return errors.WithStack(err)
	}

	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return errors.WithStack(err)
	}

	hasher := xxhash.New()
	if err := encode(io.MultiWriter(enc, hasher)); err != nil {
		_ = enc.Close()
		return err
	}

	checksum := hasher.Sum64()
	if _, err := enc.Write(photon.NewFromValue(&checksum).B); err != nil {
		_ = enc.Close()
		return errors.WithStack(err)
	}

	return errors.WithStack(enc.Close())
}

// load verifies the header, passes the records to decode and verifies their checksum.
func load(r io.Reader, h []byte, decode func(r io.Reader) error) error {
	actual := make([]byte, len(h))
	if _, err := io.ReadFull(r, actual); err != nil {
		return errors.Wrap(ErrCorrupted, err.Error())
	}
	if !bytes.Equal(actual, h) {
		return errors.Wrap(ErrCorrupted, "header mismatch")
	}

	dec, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return errors.Wrap(ErrCorrupted, err.Error())
	}
	defer dec.Close()

	hasher := xxhash.New()
	if err := decode(io.TeeReader(dec, hasher)); err != nil {
		return err
	}

	expected := hasher.Sum64()
	var checksum uint64
	if _, err := io.ReadFull(dec, photon.NewFromValue(&checksum).B); err != nil {
		return errors.Wrap(ErrCorrupted, "checksum is missing")
	}
	if checksum != expected {
		return errors.Wrap(ErrCorrupted, "checksum mismatch")
	}
	return nil
}

func header[A, B any](kind string) []byte {
	var a A
	var b B

	h := make([]byte, 0, headerLength)
	h = append(h, kind...)
	h = append(h, version)
	h = binary.LittleEndian.AppendUint64(h, uint64(unsafe.Sizeof(a)))
	h = binary.LittleEndian.AppendUint64(h, uint64(unsafe.Sizeof(b)))
	return h
}

type encoder[A, B quadrant.Embeddable] struct {
	w io.Writer
}

func (e *encoder[A, B]) encode(n quadrant.Node[A, B]) error {
	variant := n.Quad.Variant
	if err := e.write(photon.NewFromValue(&variant).B); err != nil {
		return err
	}
	if err := e.write(photon.NewFromValue(&n.Depth).B); err != nil {
		return err
	}
	if err := e.write(photon.NewFromValue(&n.Embedding).B); err != nil {
		return err
	}

	switch variant {
	case quadrant.VariantBase:
		return e.write(photon.NewFromValue(&n.Quad.Base).B)
	case quadrant.VariantNode:
		for _, child := range n.Quad.Children {
			if err := e.encode(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *encoder[A, B]) write(b []byte) error {
	return write(e.w, b)
}

type decoder[A, B quadrant.Embeddable] struct {
	r io.Reader
}

func (d *decoder[A, B]) decode(maxDepth uint64) (quadrant.Node[A, B], error) {
	var n quadrant.Node[A, B]
	if err := d.read(photon.NewFromValue(&n.Quad.Variant).B); err != nil {
		return n, err
	}
	if err := d.read(photon.NewFromValue(&n.Depth).B); err != nil {
		return n, err
	}
	if n.Depth > maxDepth {
		return n, errors.Wrapf(ErrCorrupted, "depth %d exceeds %d", n.Depth, maxDepth)
	}
	if err := d.read(photon.NewFromValue(&n.Embedding).B); err != nil {
		return n, err
	}

	switch n.Quad.Variant {
	case quadrant.VariantCached:
	case quadrant.VariantBase:
		if err := d.read(photon.NewFromValue(&n.Quad.Base).B); err != nil {
			return n, err
		}
	case quadrant.VariantNode:
		if n.Depth == 0 {
			return n, errors.Wrap(ErrCorrupted, "node at depth 0")
		}
		n.Quad.Children = &[4]quadrant.Node[A, B]{}
		for i := range n.Quad.Children {
			child, err := d.decode(n.Depth - 1)
			if err != nil {
				return n, err
			}
			n.Quad.Children[i] = child
		}
	default:
		return n, errors.Wrapf(ErrCorrupted, "unknown variant %d", n.Quad.Variant)
	}

	return n, nil
}

func (d *decoder[A, B]) read(b []byte) error {
	return read(d.r, b)
}

func write(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return errors.WithStack(err)
}

func read(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return errors.Wrap(ErrCorrupted, err.Error())
	}
	return nil
}
