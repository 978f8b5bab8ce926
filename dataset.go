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
	"log"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// Modes for NewBoundaryFile.
const (
	ModeRead  = "r"
	ModeWrite = "w"
)

// defaultTitle is the global title attribute written to every new
// boundary file.
const defaultTitle = "Boundary condition file for CICE for use in METROMS"

// requiredDims is the fixed dimension vocabulary of the boundary file.
// SetDims rejects anything else and requires all of these.
var requiredDims = []string{dimTime, dimCat, dimZ, dimX, dimY}

// A BoundaryFile is the output artifact: a NetCDF boundary file bound to a
// filesystem path. In write mode the NetCDF header is staged in memory
// (dimensions, then variables and attributes from the catalog) and written
// out by Commit; the header is immutable after that, so all metadata
// corrections must happen before the first data write. In read mode the
// existing file is opened for verification only.
type BoundaryFile struct {
	path        string
	vars        []BoundaryVar
	dimSizes    map[string]int
	globalAttrs map[string]string

	ff       *os.File
	f        *cdf.File
	readonly bool
	closed   bool
}

// NewBoundaryFile opens a boundary file for reading (mode "r") or sets one
// up for writing (mode "w"). In write mode the file itself is not created
// until Commit; if the path already exists and overwrite is false, setup
// fails. Any other mode is an error.
func NewBoundaryFile(path, mode string, overwrite bool) (*BoundaryFile, error) {
	b := &BoundaryFile{
		path:        path,
		vars:        Catalog(),
		globalAttrs: map[string]string{"title": defaultTitle},
	}
	switch mode {
	case ModeRead:
		b.readonly = true
		ff, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cicebry: opening boundary file: %v", err)
		}
		f, err := cdf.Open(ff)
		if err != nil {
			ff.Close()
			return nil, fmt.Errorf("cicebry: reading boundary file %s: %v", path, err)
		}
		b.ff, b.f = ff, f
	case ModeWrite:
		if _, err := os.Stat(path); err == nil && !overwrite {
			return nil, fmt.Errorf("cicebry: file %s exists; change the path or allow overwriting", path)
		}
	default:
		return nil, fmt.Errorf("cicebry: invalid mode %q for boundary file: must be %q or %q", mode, ModeRead, ModeWrite)
	}
	return b, nil
}

// Path returns the filesystem path the boundary file is bound to.
func (b *BoundaryFile) Path() string { return b.path }

// SetDims declares the dimension sizes to write to the boundary file.
// Every name must come from the fixed dimension vocabulary, every size
// must be positive, and all required dimensions must be present. Must be
// called before Commit.
func (b *BoundaryFile) SetDims(sizes map[string]int) error {
	for name, size := range sizes {
		valid := false
		for _, d := range requiredDims {
			if name == d {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("cicebry: invalid dimension %q: must be one of %v", name, requiredDims)
		}
		if size <= 0 {
			return fmt.Errorf("cicebry: invalid size %d for dimension %q", size, name)
		}
	}
	for _, d := range requiredDims {
		if _, ok := sizes[d]; !ok {
			return fmt.Errorf("cicebry: missing dimension %q: required dimensions are %v", d, requiredDims)
		}
	}
	b.dimSizes = make(map[string]int, len(sizes))
	for name, size := range sizes {
		b.dimSizes[name] = size
	}
	return nil
}

// DimSize returns a declared dimension size, or zero if SetDims has not
// declared it.
func (b *BoundaryFile) DimSize(name string) int { return b.dimSizes[name] }

// SetGlobalAttr stages a global attribute in addition to the default title.
func (b *BoundaryFile) SetGlobalAttr(name, val string) {
	b.globalAttrs[name] = val
}

// SetVarAttr sets or corrects an attribute of a catalog variable. With
// persist, the new value is guaranteed to reach the file, which requires
// that the header has not been committed yet; without it the update only
// affects the staged catalog.
func (b *BoundaryFile) SetVarAttr(varName, attrName, attrVal string, persist bool) error {
	idx := -1
	for i, v := range b.vars {
		if v.Name == varName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("cicebry: no boundary variable named %q", varName)
	}
	if persist && b.f != nil {
		return fmt.Errorf("cicebry: cannot persist attribute %s:%s: header already written to %s", varName, attrName, b.path)
	}
	b.vars[idx].Attrs[attrName] = attrVal
	return nil
}

// Commit builds the NetCDF header from the staged dimensions, catalog
// variables and attributes, creates the file on disk, and writes the
// header. After Commit the file accepts data writes but no further
// metadata changes.
func (b *BoundaryFile) Commit() error {
	if b.readonly {
		return fmt.Errorf("cicebry: boundary file %s is open read-only", b.path)
	}
	if b.f != nil {
		return fmt.Errorf("cicebry: boundary file %s already committed", b.path)
	}
	if b.dimSizes == nil {
		return fmt.Errorf("cicebry: dimension sizes not set; call SetDims first")
	}

	lengths := make([]int, len(requiredDims))
	for i, d := range requiredDims {
		lengths[i] = b.dimSizes[d]
	}
	h := cdf.NewHeader(requiredDims, lengths)
	for _, name := range sortKeys(b.globalAttrs) {
		h.AddAttribute("", name, b.globalAttrs[name])
	}
	for _, v := range b.vars {
		h.AddVariable(v.Name, v.Dims, v.Type.zero())
		for _, name := range sortKeys(v.Attrs) {
			h.AddAttribute(v.Name, name, v.Attrs[name])
		}
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("cicebry: building boundary file header: %v", err)
	}

	ff, err := os.Create(b.path)
	if err != nil {
		return fmt.Errorf("cicebry: creating boundary file: %v", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("cicebry: writing boundary file header: %v", err)
	}
	b.ff, b.f = ff, f
	return nil
}

// Verify checks that the boundary file contains exactly the catalog
// variables: a missing catalog variable or an extraneous file variable is
// an error naming the variable.
func (b *BoundaryFile) Verify() error {
	if b.f == nil {
		return fmt.Errorf("cicebry: boundary file %s has no readable header", b.path)
	}
	inFile := make(map[string]bool)
	for _, name := range b.f.Header.Variables() {
		inFile[name] = true
	}
	expected := make(map[string]bool)
	for _, v := range Catalog() {
		expected[v.Name] = true
		if !inFile[v.Name] {
			return fmt.Errorf("cicebry: variable %s not in file %s", v.Name, b.path)
		}
	}
	for name := range inFile {
		if !expected[name] {
			return fmt.Errorf("cicebry: variable %s is not needed in a CICE boundary file", name)
		}
	}
	log.Printf("file %s contains all expected boundary variables", b.path)
	return nil
}

// Close releases the underlying file. It is idempotent and safe to call
// after a partially failed setup.
func (b *BoundaryFile) Close() error {
	if b.closed || b.ff == nil {
		b.closed = true
		return nil
	}
	b.closed = true
	if err := b.ff.Close(); err != nil {
		return fmt.Errorf("cicebry: closing boundary file %s: %v", b.path, err)
	}
	return nil
}

// writeFloats writes a float64 slab to a committed variable at the given
// corner indices.
func (b *BoundaryFile) writeFloats(varName string, begin, end []int, vals []float64) error {
	if b.f == nil {
		return fmt.Errorf("cicebry: boundary file %s not committed", b.path)
	}
	w := b.f.Writer(varName, begin, end)
	if w == nil {
		return fmt.Errorf("cicebry: variable %s not in file %s", varName, b.path)
	}
	if _, err := w.Write(vals); err != nil {
		return fmt.Errorf("cicebry: writing %s to %s: %v", varName, b.path, err)
	}
	return nil
}

// writeInt16s writes an int16 slab to a committed variable.
func (b *BoundaryFile) writeInt16s(varName string, begin, end []int, vals []int16) error {
	if b.f == nil {
		return fmt.Errorf("cicebry: boundary file %s not committed", b.path)
	}
	w := b.f.Writer(varName, begin, end)
	if w == nil {
		return fmt.Errorf("cicebry: variable %s not in file %s", varName, b.path)
	}
	if _, err := w.Write(vals); err != nil {
		return fmt.Errorf("cicebry: writing %s to %s: %v", varName, b.path, err)
	}
	return nil
}

// sortKeys returns the keys of m in sorted order.
func sortKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
