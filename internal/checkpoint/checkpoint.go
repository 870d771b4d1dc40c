// Package checkpoint persists trained parameters as a snappy-framed gob
// stream.
package checkpoint

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/model"
)

const formatVersion = 1

// ErrEmpty is returned by Save when there are no parameters to write.
var ErrEmpty = errors.New("checkpoint: no parameters")

type tensor struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

type file struct {
	Version int
	Tensors []tensor
}

// Save writes params to w.
func Save(w io.Writer, params []*model.Param) error {
	if len(params) == 0 {
		return ErrEmpty
	}
	f := file{Version: formatVersion}
	for _, p := range params {
		r, c := p.Value.Dims()
		data := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			data = append(data, p.Value.RawRowView(i)...)
		}
		f.Tensors = append(f.Tensors, tensor{Name: p.Name, Rows: r, Cols: c, Data: data})
	}

	sw := snappy.NewBufferedWriter(w)
	if err := gob.NewEncoder(sw).Encode(&f); err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("checkpoint: flush: %w", err)
	}
	return nil
}

// SaveFile writes params to path, replacing any existing file.
func SaveFile(path string, params []*model.Param) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: create: %w", err)
	}
	if err := Save(out, params); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Restore reads a checkpoint from r into params. Names and shapes must
// match exactly.
func Restore(r io.Reader, params []*model.Param) error {
	var f file
	if err := gob.NewDecoder(snappy.NewReader(r)).Decode(&f); err != nil {
		return fmt.Errorf("checkpoint: decode: %w", err)
	}
	if f.Version != formatVersion {
		return fmt.Errorf("checkpoint: unsupported version %d", f.Version)
	}
	if len(f.Tensors) != len(params) {
		return fmt.Errorf("checkpoint: %d tensors for %d parameters", len(f.Tensors), len(params))
	}
	for i, t := range f.Tensors {
		p := params[i]
		r, c := p.Value.Dims()
		if t.Name != p.Name || t.Rows != r || t.Cols != c || len(t.Data) != r*c {
			return fmt.Errorf("checkpoint: tensor %s %dx%d does not match %s %dx%d", t.Name, t.Rows, t.Cols, p.Name, r, c)
		}
	}
	for i, t := range f.Tensors {
		params[i].Value.Copy(mat.NewDense(t.Rows, t.Cols, t.Data))
	}
	return nil
}

// RestoreFile reads the checkpoint at path into params.
func RestoreFile(path string, params []*model.Param) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("checkpoint: open: %w", err)
	}
	defer in.Close()
	return Restore(in, params)
}
