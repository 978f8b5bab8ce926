/*
Copyright © 2026 the cicebry authors.
This file is part of cicebry.

cicebry is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cicebry is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cicebry.  If not, see <http://www.gnu.org/licenses/>.
*/

package cicebry

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// A Source is a read-only NetCDF input dataset (grid, climatology,
// atmosphere or restart file). It is owned by a single generation run; no
// concurrent access.
type Source struct {
	path   string
	ff     *os.File
	f      *cdf.File
	closed bool
}

// OpenSource opens a NetCDF source file read-only.
func OpenSource(path string) (*Source, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cicebry: opening source file: %v", err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("cicebry: reading source file %s: %v", path, err)
	}
	return &Source{path: path, ff: ff, f: f}, nil
}

// Path returns the filesystem path of the source file.
func (s *Source) Path() string { return s.path }

// Close releases the underlying file. It is idempotent and a no-op on a
// nil source.
func (s *Source) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if err := s.ff.Close(); err != nil {
		return fmt.Errorf("cicebry: closing source file %s: %v", s.path, err)
	}
	return nil
}

// readFloats reads n elements from r, converting to float64 regardless of
// the stored element type.
func readFloats(r cdf.Reader, n int) ([]float64, error) {
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	switch vals := buf.(type) {
	case []float64:
		return vals, nil
	case []float32:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	case []uint8:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cicebry: unsupported element type %T", buf)
}

// lengths returns the dimension lengths of a variable, or an error naming
// the variable and file when it is absent.
func (s *Source) lengths(varName string) ([]int, error) {
	dims := s.f.Header.Lengths(varName)
	if len(dims) == 0 {
		return nil, fmt.Errorf("cicebry: variable %s not in file %s", varName, s.path)
	}
	return dims, nil
}

// ReadVar2D reads an entire 2-D (eta, xi) variable, such as a grid
// coordinate or the land mask.
func (s *Source) ReadVar2D(varName string) (*sparse.DenseArray, error) {
	dims, err := s.lengths(varName)
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("cicebry: variable %s in %s has %d dimensions, want 2", varName, s.path, len(dims))
	}
	r := s.f.Reader(varName, nil, nil)
	vals, err := readFloats(r, dims[0]*dims[1])
	if err != nil {
		return nil, fmt.Errorf("cicebry: reading %s from %s: %v", varName, s.path, err)
	}
	data := sparse.ZerosDense(dims...)
	copy(data.Elements, vals)
	return data, nil
}

// ReadSlab reads the (eta, xi) slab of a 3-D (time, eta, xi) variable at
// time index t.
func (s *Source) ReadSlab(varName string, t int) (*sparse.DenseArray, error) {
	dims, err := s.lengths(varName)
	if err != nil {
		return nil, err
	}
	if len(dims) != 3 {
		return nil, fmt.Errorf("cicebry: variable %s in %s has %d dimensions, want 3", varName, s.path, len(dims))
	}
	begin, end := []int{t, 0, 0}, []int{t + 1, 0, 0}
	r := s.f.Reader(varName, begin, end)
	vals, err := readFloats(r, dims[1]*dims[2])
	if err != nil {
		return nil, fmt.Errorf("cicebry: reading %s from %s: %v", varName, s.path, err)
	}
	data := sparse.ZerosDense(dims[1], dims[2])
	copy(data.Elements, vals)
	return data, nil
}

// ReadLevelSlab reads the (eta, xi) slab of a 4-D (time, level, eta, xi)
// variable at time index t and vertical level k. A negative k counts from
// the end, so the surface layer of an ocean field is k = -1.
func (s *Source) ReadLevelSlab(varName string, t, k int) (*sparse.DenseArray, error) {
	dims, err := s.lengths(varName)
	if err != nil {
		return nil, err
	}
	if len(dims) != 4 {
		return nil, fmt.Errorf("cicebry: variable %s in %s has %d dimensions, want 4", varName, s.path, len(dims))
	}
	if k < 0 {
		k += dims[1]
	}
	if k < 0 || k >= dims[1] {
		return nil, fmt.Errorf("cicebry: level %d out of range for variable %s in %s", k, varName, s.path)
	}
	begin, end := []int{t, k, 0, 0}, []int{t, k + 1, 0, 0}
	r := s.f.Reader(varName, begin, end)
	vals, err := readFloats(r, dims[2]*dims[3])
	if err != nil {
		return nil, fmt.Errorf("cicebry: reading %s from %s: %v", varName, s.path, err)
	}
	data := sparse.ZerosDense(dims[2], dims[3])
	copy(data.Elements, vals)
	return data, nil
}

// edgeTransect extracts the 1-D along-boundary values of a 2-D (eta, xi)
// field at the given boundary wall: column 0 for W, the last column for E,
// row 0 for S and the last row for N.
func edgeTransect(a *sparse.DenseArray, direction string) ([]float64, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("cicebry: edge transect requires a 2-d field, got %d dimensions", len(a.Shape))
	}
	ny, nx := a.Shape[0], a.Shape[1]
	switch direction {
	case "W":
		out := make([]float64, ny)
		for j := 0; j < ny; j++ {
			out[j] = a.Get(j, 0)
		}
		return out, nil
	case "E":
		out := make([]float64, ny)
		for j := 0; j < ny; j++ {
			out[j] = a.Get(j, nx-1)
		}
		return out, nil
	case "S":
		out := make([]float64, nx)
		for i := 0; i < nx; i++ {
			out[i] = a.Get(0, i)
		}
		return out, nil
	case "N":
		out := make([]float64, nx)
		for i := 0; i < nx; i++ {
			out[i] = a.Get(ny-1, i)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cicebry: invalid boundary direction %q", direction)
}
