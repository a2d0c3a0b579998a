package persistent

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/outofforest/quadrant"
	"github.com/outofforest/quadrant/reference"
)

// SaveFile stores the tree in the snapshot file.
func SaveFile[A, B quadrant.Embeddable](path string, n quadrant.Node[A, B]) error {
	return saveFile(path, func(w io.Writer) error {
		return Save(w, n)
	})
}

// LoadFile loads the tree from the snapshot file. File is mapped into memory for the time of decoding.
func LoadFile[A, B quadrant.Embeddable](path string) (quadrant.Node[A, B], error) {
	var n quadrant.Node[A, B]
	err := loadFile(path, func(r io.Reader) error {
		var err error
		n, err = Load[A, B](r)
		return err
	})
	return n, err
}

// SaveTableFile stores the intern table of the reference backend in the file.
func SaveTableFile[A reference.Cell](path string, table *reference.Table[A]) error {
	return saveFile(path, func(w io.Writer) error {
		return SaveTable(w, table)
	})
}

// LoadTableFile loads the intern table of the reference backend from the file.
func LoadTableFile[A reference.Cell](path string) (*reference.Table[A], error) {
	var table *reference.Table[A]
	err := loadFile(path, func(r io.Reader) error {
		var err error
		table, err = LoadTable[A](r)
		return err
	})
	return table, err
}

func saveFile(path string, encode func(w io.Writer) error) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	if err := encode(file); err != nil {
		return errors.Wrapf(err, "saving %q failed", path)
	}
	if err := file.Sync(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(file.Close())
}

func loadFile(path string, decode func(r io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return errors.WithStack(err)
	}
	if info.Size() == 0 {
		return errors.Wrapf(ErrCorrupted, "file %q is empty", path)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return errors.Wrapf(err, "mapping %q failed", path)
	}
	defer func() {
		_ = unix.Munmap(data)
	}()

	if err := decode(bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "loading %q failed", path)
	}
	return nil
}
