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
	"math"
	"testing"
)

const testTolerance = 1e-12

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

func TestCategoryMaskPartition(t *testing.T) {
	c := DefaultCategories
	// Midpoints of the five bins (a large value stands in for the
	// unbounded last bin).
	mids := make([]float64, NumCategories)
	for n := 0; n < NumCategories-1; n++ {
		mids[n] = (c[n] + c[n+1]) / 2
	}
	mids[NumCategories-1] = 10.0

	for n := 0; n < NumCategories; n++ {
		mask := c.mask(mids, n)
		for i := range mids {
			want := i == n
			if mask[i] != want {
				t.Errorf("category %d mask at thickness %v = %v, want %v", n, mids[i], mask[i], want)
			}
		}
	}

	// Both bounds are strict: a thickness exactly on a category bound
	// falls into no category. This documents the current behavior.
	edge := []float64{c[1]}
	for n := 0; n < NumCategories; n++ {
		if c.mask(edge, n)[0] {
			t.Errorf("thickness equal to bound %v unexpectedly matched category %d", c[1], n)
		}
	}
}

func TestCategoryMaskThicknessOne(t *testing.T) {
	mask1 := DefaultCategories.mask([]float64{1.0}, 1)
	if !mask1[0] {
		t.Error("thickness 1.0 should fall in category 1 (0.6445072 < 1.0 < 1.391433)")
	}
	for _, n := range []int{0, 2, 3, 4} {
		if DefaultCategories.mask([]float64{1.0}, n)[0] {
			t.Errorf("thickness 1.0 unexpectedly matched category %d", n)
		}
	}
}

func TestSnowVolumeFromMaskedIceVolume(t *testing.T) {
	// Two points in category 1, one outside it, one on land.
	hice := []float64{1.0, 1.2, 3.0, 1.0}
	aice := []float64{0.9, 0.5, 0.8, 0.7}
	tair := []float64{-10, -12, -8, -9}
	land := []float64{1, 1, 1, 0}
	mask := DefaultCategories.mask(hice, 1)

	aicen, vicen, vsnon, tsfc := categoryFields(mask, aice, hice, tair, land)
	for i := range hice {
		// Snow volume is 20% of the already-masked ice volume at every
		// point, never 20% of the raw thickness*concentration product.
		if absDifferent(vsnon[i], 0.2*vicen[i], testTolerance) {
			t.Errorf("point %d: vsnon = %v, want 0.2*vicen = %v", i, vsnon[i], 0.2*vicen[i])
		}
	}
	if vicen[2] != 0 || vsnon[2] != 0 || aicen[2] != 0 || tsfc[2] != 0 {
		t.Error("fields outside the category mask must be zero")
	}
	if raw := 0.2 * hice[2] * aice[2]; vsnon[2] == raw && raw != 0 {
		t.Error("masked-out snow volume used the unmasked ice volume")
	}
	if vicen[3] != 0 || aicen[3] != 0 {
		t.Error("land points must be zeroed")
	}
	if absDifferent(vicen[0], 1.0*0.9, testTolerance) || absDifferent(aicen[0], 0.9, testTolerance) {
		t.Errorf("in-category point: aicen = %v, vicen = %v", aicen[0], vicen[0])
	}
	if absDifferent(tsfc[1], -12, testTolerance) {
		t.Errorf("surface temperature = %v, want -12", tsfc[1])
	}
}

func TestInterpProfile(t *testing.T) {
	cases := []struct {
		from, to float64
		n        int
	}{
		{30, 6, 7},
		{-1, -10, 5},
		{0, 0, 3},
		{2, 8, 2},
	}
	for _, c := range cases {
		prof := interpProfile(c.from, c.to, c.n)
		if len(prof) != c.n {
			t.Fatalf("profile from %v to %v has %d values, want %d", c.from, c.to, len(prof), c.n)
		}
		if absDifferent(prof[0], c.from, testTolerance) || absDifferent(prof[c.n-1], c.to, testTolerance) {
			t.Errorf("profile endpoints = %v, %v; want %v, %v", prof[0], prof[c.n-1], c.from, c.to)
		}
		for k := 1; k < c.n; k++ {
			step := prof[k] - prof[k-1]
			if c.from <= c.to && step < -testTolerance {
				t.Errorf("profile from %v to %v decreases at level %d", c.from, c.to, k)
			}
			if c.from >= c.to && step > testTolerance {
				t.Errorf("profile from %v to %v increases at level %d", c.from, c.to, k)
			}
		}
	}

	// A single vertical level keeps the surface value.
	if prof := interpProfile(30, 6, 1); len(prof) != 1 || prof[0] != 30 {
		t.Errorf("single-level profile = %v, want [30]", prof)
	}
}

func TestSaltProfile(t *testing.T) {
	mask := []bool{true, false, true}
	salt := []float64{30, 32, 20}
	land := []float64{1, 1, 0}
	const nz = 5

	prof := saltProfile(mask, salt, land, nz)
	if len(prof) != nz*len(mask) {
		t.Fatalf("profile has %d values, want %d", len(prof), nz*len(mask))
	}
	// In-category ocean point: surface salinity down to 20% of it.
	if absDifferent(prof[0*3+0], 30, testTolerance) || absDifferent(prof[(nz-1)*3+0], 6, testTolerance) {
		t.Errorf("profile endpoints at point 0 = %v, %v; want 30, 6", prof[0], prof[(nz-1)*3])
	}
	// Masked-out point: the constant 5.0 at every level.
	for k := 0; k < nz; k++ {
		if prof[k*3+1] != 5.0 {
			t.Errorf("masked-out level %d = %v, want 5.0", k, prof[k*3+1])
		}
	}
	// Land point: zero regardless of mask.
	for k := 0; k < nz; k++ {
		if prof[k*3+2] != 0 {
			t.Errorf("land level %d = %v, want 0", k, prof[k*3+2])
		}
	}
}

func TestTempProfileSnowBranches(t *testing.T) {
	mask := []bool{true, true, false}
	toce := []float64{-1, -1, -1}
	tair := []float64{-10, -10, -10}
	// Point 0 has more snow than the threshold, point 1 has none.
	vsnon := []float64{0.1, 0, 0}
	land := []float64{1, 1, 1}
	const nz = 4

	prof := tempProfile(mask, toce, tair, vsnon, land, nz)

	// Snow-covered: bottom endpoint damped to toce - 0.2*|toce - tair|.
	wantBottom := -1 - 0.2*math.Abs(-1-(-10))
	if absDifferent(prof[0*3+0], -1, testTolerance) {
		t.Errorf("snow-covered surface = %v, want -1", prof[0])
	}
	if absDifferent(prof[(nz-1)*3+0], wantBottom, testTolerance) {
		t.Errorf("snow-covered bottom = %v, want %v", prof[(nz-1)*3], wantBottom)
	}
	// Bare ice: profile runs from the ocean to the air temperature.
	if absDifferent(prof[(nz-1)*3+1], -10, testTolerance) {
		t.Errorf("bare-ice bottom = %v, want -10", prof[(nz-1)*3+1])
	}
	// Masked out: the constant -5.0.
	for k := 0; k < nz; k++ {
		if prof[k*3+2] != -5.0 {
			t.Errorf("masked-out level %d = %v, want -5.0", k, prof[k*3+2])
		}
	}
}
