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
	"reflect"
	"strings"
	"testing"
)

func TestCatalogDeterministic(t *testing.T) {
	a, b := Catalog(), Catalog()
	if !reflect.DeepEqual(a, b) {
		t.Error("catalog is not deterministic")
	}
	// 2 scalar-coordinate variables plus 16 per-wall families.
	if want := 2 + 16*len(Directions); len(a) != want {
		t.Errorf("catalog has %d variables, want %d", len(a), want)
	}
	if a[0].Name != "Time" || a[1].Name != "Ice_layers" {
		t.Errorf("catalog starts with %s, %s; want Time, Ice_layers", a[0].Name, a[1].Name)
	}
}

func TestCatalogDimensionVocabulary(t *testing.T) {
	allowed := make(map[string]bool)
	for _, d := range requiredDims {
		allowed[d] = true
	}
	for _, v := range Catalog() {
		for _, d := range v.Dims {
			if !allowed[d] {
				t.Errorf("variable %s uses dimension %q outside the fixed vocabulary", v.Name, d)
			}
		}
	}
}

func TestExpandBoundary(t *testing.T) {
	vars := expandBoundary("foo_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "foo at the BRY boundary, BRY wall", "units": "m"})

	if len(vars) != len(Directions) {
		t.Fatalf("got %d specs, want %d", len(vars), len(Directions))
	}
	wantAxis := map[string]string{"W": dimY, "E": dimY, "S": dimX, "N": dimX}
	for i, dir := range Directions {
		v := vars[i]
		if want := "foo_" + dir + "_bry"; v.Name != want {
			t.Errorf("spec %d name = %s, want %s", i, v.Name, want)
		}
		// Every occurrence of the token must be substituted in attribute
		// values, including repeated occurrences.
		if want := "foo at the " + dir + " boundary, " + dir + " wall"; v.Attrs["long_name"] != want {
			t.Errorf("spec %d long_name = %q, want %q", i, v.Attrs["long_name"], want)
		}
		if v.Attrs["units"] != "m" {
			t.Errorf("spec %d units = %q, want m", i, v.Attrs["units"])
		}
		wantDims := []string{dimTime, dimCat, wantAxis[dir]}
		if !reflect.DeepEqual(v.Dims, wantDims) {
			t.Errorf("spec %d dims = %v, want %v", i, v.Dims, wantDims)
		}
		if strings.Contains(v.Name, bryToken) {
			t.Errorf("spec %d name still contains the placeholder token", i)
		}
	}
}

func TestExpandBoundaryLeavesTemplateIntact(t *testing.T) {
	attrs := map[string]string{"long_name": "BRY boundary"}
	dims := []string{bryToken}
	expandBoundary("x_BRY", Float64, dims, attrs)
	if attrs["long_name"] != "BRY boundary" || dims[0] != bryToken {
		t.Error("expansion mutated its template arguments")
	}
}
