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

// Package cicebry generates lateral boundary-condition files for the CICE
// sea-ice model from a climatology dataset, an atmospheric forcing dataset
// and a model grid file, for use with Pedro Duarte's boundary method.
//
// The available source fields (aggregate ice concentration and thickness,
// surface temperature and salinity) are far fewer than CICE needs at the
// boundaries, so per-category concentration, volume and vertical profile
// fields are reconstructed by binning ice thickness into fixed categories
// and interpolating linearly in the vertical. These reconstructions are a
// stand-in for missing source data, not a physical model.
package cicebry

import "strings"

// Dimension names of the boundary file. The along-boundary coordinate
// differs by wall: west and east boundaries run along eta_t, south and
// north along xi_t.
const (
	dimTime = "days"
	dimCat  = "ice_types"
	dimZ    = "nkice"
	dimX    = "xi_t"
	dimY    = "eta_t"
)

// bryToken is the placeholder in variable templates that expandBoundary
// substitutes with a direction letter.
const bryToken = "BRY"

// Directions lists the four boundary walls in the order variables are
// generated and boundary data is written.
var Directions = []string{"W", "S", "E", "N"}

// directionAxis maps each boundary wall to the coordinate dimension its
// transect runs along.
var directionAxis = map[string]string{
	"W": dimY,
	"E": dimY,
	"S": dimX,
	"N": dimX,
}

// A VarType is the element type of a boundary variable.
type VarType int

const (
	Int16 VarType = iota
	Float64
)

// zero returns a one-element slice of the corresponding Go type, which is
// how cdf.Header.AddVariable infers the NetCDF element type.
func (t VarType) zero() interface{} {
	switch t {
	case Int16:
		return []int16{0}
	case Float64:
		return []float64{0}
	}
	panic("cicebry: invalid variable type")
}

// A BoundaryVar describes one variable of the boundary file: its name,
// element type, dimension order and descriptive attributes. Instances are
// treated as immutable once returned by Catalog.
type BoundaryVar struct {
	Name  string
	Type  VarType
	Dims  []string
	Attrs map[string]string
}

// Catalog returns a description of every variable a CICE boundary file
// must contain. It is pure and deterministic: the same specs come back in
// the same order on every call. Most variables exist once per boundary
// wall, named <base>_{W,S,E,N}_bry.
func Catalog() []BoundaryVar {
	vars := []BoundaryVar{
		{Name: "Time", Type: Int16, Dims: []string{dimTime},
			Attrs: map[string]string{"long_name": "model time", "units": "days since 2008-01-01 00:00:00"}},
		{Name: "Ice_layers", Type: Int16, Dims: []string{dimZ},
			Attrs: map[string]string{"long_name": "vertical ice levels", "units": "1"}},
	}
	vars = append(vars, expandBoundary("TLON_BRY", Float64, []string{bryToken},
		map[string]string{"long_name": "T grid center longitude - BRY boundary", "units": "degrees_east"})...)
	vars = append(vars, expandBoundary("TLAT_BRY", Float64, []string{bryToken},
		map[string]string{"long_name": "T grid center latitude - BRY boundary", "units": "degrees_north"})...)
	vars = append(vars, expandBoundary("Tsfc_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "snow/ice surface temperature - BRY boundary"})...)
	vars = append(vars, expandBoundary("aicen_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "ice area (aggregate) - BRY boundary"})...)
	vars = append(vars, expandBoundary("vicen_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "grid cell mean ice thickness - BRY boundary", "units": "m"})...)
	vars = append(vars, expandBoundary("vsnon_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "grid cell mean snow thickness - BRY boundary", "units": "m"})...)
	vars = append(vars, expandBoundary("apond_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "melt pond fraction - BRY boundary", "units": "1"})...)
	vars = append(vars, expandBoundary("hpond_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "mean melt pond depth - BRY boundary", "units": "m"})...)
	vars = append(vars, expandBoundary("ipond_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "mean melt pond ice thickness - BRY boundary", "units": "m"})...)
	vars = append(vars, expandBoundary("fbrine_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "ratio of brine tracer height to ice thickness - BRY boundary", "units": "1"})...)
	vars = append(vars, expandBoundary("hbrine_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "brine surface height above sea ice base - BRY boundary", "units": "m"})...)
	vars = append(vars, expandBoundary("iage_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "ice age - BRY boundary"})...)
	vars = append(vars, expandBoundary("alvln_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "concentration of level ice - BRY boundary", "units": "1"})...)
	vars = append(vars, expandBoundary("vlvln_BRY_bry", Float64, []string{dimTime, dimCat, bryToken},
		map[string]string{"long_name": "volume per unit of area of level ice - BRY boundary", "units": "m"})...)
	vars = append(vars, expandBoundary("Tinz_BRY_bry", Float64, []string{dimTime, dimCat, dimZ, bryToken},
		map[string]string{"long_name": "vertical temperature profile - BRY boundary"})...)
	vars = append(vars, expandBoundary("Sinz_BRY_bry", Float64, []string{dimTime, dimCat, dimZ, bryToken},
		map[string]string{"long_name": "vertical salinity profile - BRY boundary"})...)
	return vars
}

// expandBoundary creates one BoundaryVar per boundary wall from a template.
// Every occurrence of the BRY token in the name and in attribute values is
// replaced with the direction letter; a BRY dimension entry is replaced
// with that wall's coordinate axis from directionAxis.
func expandBoundary(name string, typ VarType, dims []string, attrs map[string]string) []BoundaryVar {
	vars := make([]BoundaryVar, 0, len(Directions))
	for _, dir := range Directions {
		a := make(map[string]string, len(attrs))
		for key, val := range attrs {
			a[key] = strings.ReplaceAll(val, bryToken, dir)
		}
		d := make([]string, len(dims))
		for i, dim := range dims {
			if dim == bryToken {
				d[i] = directionAxis[dir]
			} else {
				d[i] = dim
			}
		}
		vars = append(vars, BoundaryVar{
			Name:  strings.ReplaceAll(name, bryToken, dir),
			Type:  typ,
			Dims:  d,
			Attrs: a,
		})
	}
	return vars
}
