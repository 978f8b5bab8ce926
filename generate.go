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
	"math"
	"time"
)

// Time coordinate variable names in the input files.
const (
	climTimeVar = "clim_time"
	atmTimeVar  = "time"
)

// DefaultIceLayers is the number of vertical ice levels in METROMS CICE
// setups.
const DefaultIceLayers = 7

// A Generator drives one boundary-file generation run. It owns the output
// boundary file and the attached input sources for the duration of the
// run; Close releases all of them.
type Generator struct {
	bry *BoundaryFile
	cfg EngineConfig

	grid *Source
	clm  *Source
	atm  *Source
	rst  *Source

	start, end time.Time
	timeUnits  string

	msgChan chan string
}

// NewGenerator prepares a generation run writing to bry. Zero-valued
// config fields fall back to DefaultCategories and DefaultIceLayers. If
// msgChan is not nil, per-date progress messages are sent to it instead of
// the standard logger.
func NewGenerator(bry *BoundaryFile, cfg EngineConfig, msgChan chan string) *Generator {
	if cfg.Categories == (CategoryTable{}) {
		cfg.Categories = DefaultCategories
	}
	if cfg.IceLayers == 0 {
		cfg.IceLayers = DefaultIceLayers
	}
	return &Generator{bry: bry, cfg: cfg, msgChan: msgChan}
}

// SetGrid attaches the grid file (lon_rho, lat_rho, mask_rho).
func (g *Generator) SetGrid(path string) error {
	s, err := OpenSource(path)
	if err != nil {
		return err
	}
	g.grid = s
	return nil
}

// SetClim attaches the climatology file (ice and ocean state time series).
func (g *Generator) SetClim(path string) error {
	s, err := OpenSource(path)
	if err != nil {
		return err
	}
	g.clm = s
	return nil
}

// SetAtmos attaches the atmospheric forcing file (Tair time series).
func (g *Generator) SetAtmos(path string) error {
	s, err := OpenSource(path)
	if err != nil {
		return err
	}
	g.atm = s
	return nil
}

// SetRestart attaches a CICE restart file. The current derivation does not
// read from it, but an attached restart is opened and closed like the
// other sources.
func (g *Generator) SetRestart(path string) error {
	s, err := OpenSource(path)
	if err != nil {
		return err
	}
	g.rst = s
	return nil
}

// SetDates sets the first and last day of boundary data and the time units
// string of the output Time coordinate.
func (g *Generator) SetDates(start, end time.Time, units string) {
	g.start = start
	g.end = end
	g.timeUnits = units
}

// Close releases the boundary file and every attached source. It is safe
// to call regardless of how far setup got, and calling it twice is a
// no-op.
func (g *Generator) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{g.grid, g.clm, g.atm, g.rst, g.bry} {
		switch s := c.(type) {
		case *Source:
			if err := s.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		case *BoundaryFile:
			if s == nil {
				continue
			}
			if err := s.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Generate writes the complete boundary file: header, time-independent
// coordinate variables, and all per-category fields for every day of the
// boundary period and every boundary wall. A failure mid-loop leaves the
// file partially populated; nothing is rolled back.
func (g *Generator) Generate() error {
	switch {
	case g.cfg.IceLayers < 1:
		return fmt.Errorf("cicebry: invalid number of ice layers %d", g.cfg.IceLayers)
	case g.grid == nil:
		return fmt.Errorf("cicebry: no grid file has been set; use SetGrid")
	case g.clm == nil:
		return fmt.Errorf("cicebry: no climatology file has been set; use SetClim")
	case g.atm == nil:
		return fmt.Errorf("cicebry: no atmosphere file has been set; use SetAtmos")
	}
	if g.timeUnits == "" || g.start.IsZero() || g.end.IsZero() {
		return fmt.Errorf("cicebry: boundary dates not set; use SetDates")
	}

	// The catalog carries a placeholder units string for Time; correct it
	// before the header is committed so the file gets the run's units.
	if err := g.bry.SetVarAttr("Time", "units", g.timeUnits, true); err != nil {
		return err
	}

	bryTime, err := g.clm.BoundaryTime(climTimeVar, g.start, g.end, g.timeUnits)
	if err != nil {
		return err
	}
	clmDates, err := g.clm.TimeDates(climTimeVar)
	if err != nil {
		return err
	}
	atmDates, err := g.atm.TimeDates(atmTimeVar)
	if err != nil {
		return err
	}
	t0, t1, err := g.clm.LocateDateRange(climTimeVar, g.start, g.end)
	if err != nil {
		return err
	}

	land, err := g.grid.ReadVar2D("mask_rho")
	if err != nil {
		return err
	}
	ny, nx := land.Shape[0], land.Shape[1]
	if err := g.bry.SetDims(map[string]int{
		dimTime: t1 - t0 + 1,
		dimCat:  NumCategories,
		dimZ:    g.cfg.IceLayers,
		dimX:    nx,
		dimY:    ny,
	}); err != nil {
		return err
	}
	if err := g.bry.Commit(); err != nil {
		return err
	}

	if err := g.writeStatic(); err != nil {
		return err
	}

	landT := make(map[string][]float64, len(Directions))
	for _, dir := range Directions {
		t, err := edgeTransect(land, dir)
		if err != nil {
			return err
		}
		landT[dir] = t
	}

	e := &engine{cfg: g.cfg, bry: g.bry}
	for clmIdx := t0; clmIdx <= t1; clmIdx++ {
		g.logf("computing boundary data for %s", clmDates[clmIdx].Format("2006-01-02"))
		bryIdx := clmIdx - t0
		atmIdx := nearestIndex(atmDates, clmDates[clmIdx])

		if err := g.bry.writeInt16s("Time", []int{bryIdx}, []int{bryIdx + 1},
			[]int16{int16(math.Round(bryTime[bryIdx]))}); err != nil {
			return err
		}

		aice, err := g.clm.ReadSlab("aice", clmIdx)
		if err != nil {
			return err
		}
		hice, err := g.clm.ReadSlab("hice", clmIdx)
		if err != nil {
			return err
		}
		// The climatology snow thickness is zero everywhere in known
		// inputs and is not used in the derivation, but the read stays so
		// a schema mismatch surfaces on the first step.
		if _, err := g.clm.ReadSlab("snow_thick", clmIdx); err != nil {
			return err
		}
		tair, err := g.atm.ReadSlab("Tair", atmIdx)
		if err != nil {
			return err
		}
		toce, err := g.clm.ReadLevelSlab("temp", clmIdx, -1)
		if err != nil {
			return err
		}
		salt, err := g.clm.ReadLevelSlab("salt", clmIdx, -1)
		if err != nil {
			return err
		}

		for _, dir := range Directions {
			d := wallData{land: landT[dir]}
			if d.aice, err = edgeTransect(aice, dir); err != nil {
				return err
			}
			if d.hice, err = edgeTransect(hice, dir); err != nil {
				return err
			}
			if d.tair, err = edgeTransect(tair, dir); err != nil {
				return err
			}
			if d.toce, err = edgeTransect(toce, dir); err != nil {
				return err
			}
			if d.salt, err = edgeTransect(salt, dir); err != nil {
				return err
			}
			if err := e.writeWall(bryIdx, dir, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeStatic writes the time-independent variables: the vertical level
// index array and the boundary longitude/latitude transects.
func (g *Generator) writeStatic() error {
	layers := make([]int16, g.cfg.IceLayers)
	for i := range layers {
		layers[i] = int16(i)
	}
	if err := g.bry.writeInt16s("Ice_layers", []int{0}, []int{len(layers)}, layers); err != nil {
		return err
	}

	lon, err := g.grid.ReadVar2D("lon_rho")
	if err != nil {
		return err
	}
	lat, err := g.grid.ReadVar2D("lat_rho")
	if err != nil {
		return err
	}
	for _, dir := range Directions {
		lonT, err := edgeTransect(lon, dir)
		if err != nil {
			return err
		}
		if err := g.bry.writeFloats("TLON_"+dir, []int{0}, []int{len(lonT)}, lonT); err != nil {
			return err
		}
		latT, err := edgeTransect(lat, dir)
		if err != nil {
			return err
		}
		if err := g.bry.writeFloats("TLAT_"+dir, []int{0}, []int{len(latT)}, latT); err != nil {
			return err
		}
	}
	return nil
}

// logf emits a progress line either to the message channel or to the
// standard logger.
func (g *Generator) logf(format string, args ...interface{}) {
	if g.msgChan != nil {
		g.msgChan <- fmt.Sprintf(format, args...)
		return
	}
	log.Printf(format, args...)
}
