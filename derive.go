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
	"math"
	"strings"

	"github.com/gonum/floats"
)

// NumCategories is the number of ice thickness categories CICE resolves.
const NumCategories = 5

// snowThreshold is the snow volume [m thickness equivalent] above which
// the vertical temperature profile is damped toward the ocean temperature
// instead of reaching the air temperature.
const snowThreshold = 0.01

// A CategoryTable holds the thickness bounds [m] delimiting the ice
// categories: bound n and n+1 enclose category n. The first entry is zero
// and the last is effectively infinite.
type CategoryTable [NumCategories + 1]float64

// DefaultCategories is the WMO-style thickness category table used by
// METROMS CICE setups.
var DefaultCategories = CategoryTable{0, 0.6445072, 1.391433, 2.470179, 4.567288, 1e8}

// mask reports which points of an ice thickness transect fall in category
// n. Both bounds are strict, so a thickness exactly equal to a category
// bound belongs to no category.
func (c CategoryTable) mask(hice []float64, n int) []bool {
	m := make([]bool, len(hice))
	for i, h := range hice {
		m[i] = h > c[n] && h < c[n+1]
	}
	return m
}

// EngineConfig is the immutable configuration of the derivation engine.
type EngineConfig struct {
	Categories CategoryTable
	IceLayers  int
}

// engine derives per-category boundary fields from climatology and
// atmosphere transects and writes them to the boundary file.
type engine struct {
	cfg EngineConfig
	bry *BoundaryFile
}

// wallData is the set of boundary transects feeding the derivation for one
// (time step, boundary wall) pair. All slices share the along-boundary
// length.
type wallData struct {
	aice []float64 // aggregate ice concentration
	hice []float64 // ice thickness [m]
	tair []float64 // surface air temperature
	toce []float64 // ocean surface temperature
	salt []float64 // ocean surface salinity
	land []float64 // land mask (0 = land, 1 = ocean)
}

// zeroVars3D lists the per-category fields for which no source data
// exists; they are written as zero everywhere.
var zeroVars3D = []string{
	"iage_BRY_bry", "apond_BRY_bry", "hpond_BRY_bry", "ipond_BRY_bry",
	"fbrine_BRY_bry", "hbrine_BRY_bry", "alvln_BRY_bry", "vlvln_BRY_bry",
}

// wallVar resolves a variable name template for one boundary wall.
func wallVar(template, dir string) string {
	return strings.ReplaceAll(template, bryToken, dir)
}

// writeWall computes and writes every per-category variable for one output
// time index and boundary wall.
func (e *engine) writeWall(bryIdx int, dir string, d wallData) error {
	npts := len(d.land)
	nz := e.cfg.IceLayers
	zeros := make([]float64, npts)

	for n := 0; n < NumCategories; n++ {
		mask := e.cfg.Categories.mask(d.hice, n)
		aicen, vicen, vsnon, tsfc := categoryFields(mask, d.aice, d.hice, d.tair, d.land)

		begin, end := []int{bryIdx, n, 0}, []int{bryIdx, n, npts}
		for _, v := range []struct {
			name string
			vals []float64
		}{
			{fmt.Sprintf("aicen_%s_bry", dir), aicen},
			{fmt.Sprintf("vicen_%s_bry", dir), vicen},
			{fmt.Sprintf("vsnon_%s_bry", dir), vsnon},
			{fmt.Sprintf("Tsfc_%s_bry", dir), tsfc},
		} {
			if err := e.bry.writeFloats(v.name, begin, end, v.vals); err != nil {
				return err
			}
		}

		sinz := saltProfile(mask, d.salt, d.land, nz)
		tinz := tempProfile(mask, d.toce, d.tair, vsnon, d.land, nz)
		begin4, end4 := []int{bryIdx, n, 0, 0}, []int{bryIdx, n, nz - 1, npts}
		if err := e.bry.writeFloats(fmt.Sprintf("Sinz_%s_bry", dir), begin4, end4, sinz); err != nil {
			return err
		}
		if err := e.bry.writeFloats(fmt.Sprintf("Tinz_%s_bry", dir), begin4, end4, tinz); err != nil {
			return err
		}

		for _, tmpl := range zeroVars3D {
			if err := e.bry.writeFloats(wallVar(tmpl, dir), begin, end, zeros); err != nil {
				return err
			}
		}
	}
	return nil
}

// categoryFields distributes the aggregate ice state over one category:
// concentration and ice volume go to the points whose thickness falls in
// the category, snow volume is 20% of the already-masked ice volume, and
// the surface temperature is the air temperature. Everything is zeroed
// outside the category mask and on land.
func categoryFields(mask []bool, aice, hice, tair, land []float64) (aicen, vicen, vsnon, tsfc []float64) {
	npts := len(mask)
	aicen = make([]float64, npts)
	vicen = make([]float64, npts)
	vsnon = make([]float64, npts)
	tsfc = make([]float64, npts)
	for i := 0; i < npts; i++ {
		if !mask[i] {
			continue
		}
		aicen[i] = aice[i] * land[i]
		vicen[i] = hice[i] * aice[i] * land[i]
		vsnon[i] = 0.2 * vicen[i] * land[i]
		tsfc[i] = tair[i] * land[i]
	}
	return aicen, vicen, vsnon, tsfc
}

// interpProfile returns n linearly spaced values from a to b inclusive. A
// single-level profile holds the surface value a alone; floats.Span needs
// at least two destination elements.
func interpProfile(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}

// saltProfile builds the flattened (level, point) vertical salinity
// profile for one category: within the category mask the salinity runs
// linearly from the ocean surface salinity down to 20% of it; elsewhere
// the profile is the constant 5.0. The land mask multiplies every level.
func saltProfile(mask []bool, salt, land []float64, nz int) []float64 {
	npts := len(mask)
	out := make([]float64, nz*npts)
	for i := 0; i < npts; i++ {
		if mask[i] {
			prof := interpProfile(salt[i], 0.2*salt[i], nz)
			for k := 0; k < nz; k++ {
				out[k*npts+i] = prof[k] * land[i]
			}
			continue
		}
		for k := 0; k < nz; k++ {
			out[k*npts+i] = 5.0 * land[i]
		}
	}
	return out
}

// tempProfile builds the flattened (level, point) vertical temperature
// profile for one category. With less snow than snowThreshold the profile
// runs from the ocean surface temperature to the air temperature; with
// more, the lower endpoint is damped to toce - 0.2*|toce - tair|. Outside
// the category mask the profile is the constant -5.0. The land mask
// multiplies every level.
func tempProfile(mask []bool, toce, tair, vsnon, land []float64, nz int) []float64 {
	npts := len(mask)
	out := make([]float64, nz*npts)
	for i := 0; i < npts; i++ {
		if mask[i] {
			bottom := tair[i]
			if vsnon[i] > snowThreshold {
				bottom = toce[i] - 0.2*math.Abs(toce[i]-tair[i])
			}
			prof := interpProfile(toce[i], bottom, nz)
			for k := 0; k < nz; k++ {
				out[k*npts+i] = prof[k] * land[i]
			}
			continue
		}
		for k := 0; k < nz; k++ {
			out[k*npts+i] = -5.0 * land[i]
		}
	}
	return out
}
