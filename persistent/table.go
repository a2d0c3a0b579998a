package persistent

import (
	"io"

	"github.com/pkg/errors"

	"github.com/outofforest/photon"
	"github.com/outofforest/quadrant/reference"
)

// SaveTable writes the intern table of the reference backend.
// Embeddings stored in snapshots of reference trees are meaningful only together with their table.
func SaveTable[A reference.Cell](w io.Writer, table *reference.Table[A]) error {
	bases, nodes := table.Values()
	return save(w, header[A, reference.Embedding](tableMagic), func(w io.Writer) error {
		count := uint64(len(bases))
		if err := write(w, photon.NewFromValue(&count).B); err != nil {
			return err
		}
		for i := range bases {
			if err := write(w, photon.NewFromValue(&bases[i]).B); err != nil {
				return err
			}
		}

		count = uint64(len(nodes))
		if err := write(w, photon.NewFromValue(&count).B); err != nil {
			return err
		}
		for i := range nodes {
			if err := write(w, photon.NewFromValue(&nodes[i]).B); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTable reads the intern table of the reference backend.
func LoadTable[A reference.Cell](r io.Reader) (*reference.Table[A], error) {
	var bases []A
	var nodes [][4]reference.Embedding
	if err := load(r, header[A, reference.Embedding](tableMagic), func(r io.Reader) error {
		var count uint64
		if err := read(r, photon.NewFromValue(&count).B); err != nil {
			return err
		}
		for range count {
			var base A
			if err := read(r, photon.NewFromValue(&base).B); err != nil {
				return err
			}
			bases = append(bases, base)
		}

		if err := read(r, photon.NewFromValue(&count).B); err != nil {
			return err
		}
		for range count {
			var children [4]reference.Embedding
			if err := read(r, photon.NewFromValue(&children).B); err != nil {
				return err
			}
			nodes = append(nodes, children)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	table, err := reference.NewTableFromValues(bases, nodes)
	if err != nil {
		return nil, errors.Wrap(ErrCorrupted, err.Error())
	}
	return table, nil
}
