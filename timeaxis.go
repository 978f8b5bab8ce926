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
	"time"
)

// timeUnitsPrefix is the only supported CF time encoding; both input and
// output time coordinates count days from a reference date.
const timeUnitsPrefix = "days since "

// parseTimeUnits extracts the reference date from a CF-style
// "days since YYYY-MM-DD[ hh:mm:ss]" units string.
func parseTimeUnits(units string) (time.Time, error) {
	if !strings.HasPrefix(units, timeUnitsPrefix) {
		return time.Time{}, fmt.Errorf("cicebry: unsupported time units %q: must start with %q", units, timeUnitsPrefix)
	}
	ref := strings.TrimSpace(strings.TrimPrefix(units, timeUnitsPrefix))
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ref); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cicebry: cannot parse reference date in time units %q", units)
}

// numToDate converts a day offset into a calendar date. Offsets are
// rounded to the nearest second so that integral day values decode to
// exact dates.
func numToDate(ref time.Time, days float64) time.Time {
	return ref.Add(time.Duration(math.Round(days*86400)) * time.Second)
}

// dateToNum converts a calendar date into a day offset from ref.
func dateToNum(ref time.Time, date time.Time) float64 {
	return date.Sub(ref).Hours() / 24
}

// timeUnits returns the units attribute string of a time variable.
func (s *Source) timeUnits(varName string) (string, error) {
	if _, err := s.lengths(varName); err != nil {
		return "", err
	}
	attr := s.f.Header.GetAttribute(varName, "units")
	if attr == nil {
		return "", fmt.Errorf("cicebry: time variable %s in %s has no units attribute", varName, s.path)
	}
	units, ok := attr.(string)
	if !ok {
		return "", fmt.Errorf("cicebry: units attribute of %s in %s is not textual", varName, s.path)
	}
	return units, nil
}

// TimeNums reads a time coordinate as raw numeric day offsets.
func (s *Source) TimeNums(varName string) ([]float64, error) {
	dims, err := s.lengths(varName)
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("cicebry: time variable %s in %s has %d dimensions, want 1", varName, s.path, len(dims))
	}
	r := s.f.Reader(varName, nil, nil)
	vals, err := readFloats(r, dims[0])
	if err != nil {
		return nil, fmt.Errorf("cicebry: reading %s from %s: %v", varName, s.path, err)
	}
	return vals, nil
}

// TimeDates reads a time coordinate decoded into calendar dates using the
// variable's stored units string.
func (s *Source) TimeDates(varName string) ([]time.Time, error) {
	nums, err := s.TimeNums(varName)
	if err != nil {
		return nil, err
	}
	units, err := s.timeUnits(varName)
	if err != nil {
		return nil, err
	}
	ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(nums))
	for i, v := range nums {
		dates[i] = numToDate(ref, v)
	}
	return dates, nil
}

// LocateDateRange finds the indices of the start and end dates in the
// decoded time coordinate of the source. The lookup requires exact
// equality; an absent endpoint is an error naming the date and the file.
func (s *Source) LocateDateRange(varName string, start, end time.Time) (int, int, error) {
	dates, err := s.TimeDates(varName)
	if err != nil {
		return 0, 0, err
	}
	startIdx, endIdx := -1, -1
	for i, d := range dates {
		if startIdx < 0 && d.Equal(start) {
			startIdx = i
		}
		if endIdx < 0 && d.Equal(end) {
			endIdx = i
		}
	}
	if startIdx < 0 {
		return 0, 0, fmt.Errorf("cicebry: start date %s not in %s", start.Format("2006-01-02 15:04:05"), s.path)
	}
	if endIdx < 0 {
		return 0, 0, fmt.Errorf("cicebry: end date %s not in %s", end.Format("2006-01-02 15:04:05"), s.path)
	}
	return startIdx, endIdx, nil
}

// BoundaryTime re-encodes the [start, end] portion of the source's time
// coordinate into the output units, producing the time values to write to
// the boundary file.
func (s *Source) BoundaryTime(varName string, start, end time.Time, outUnits string) ([]float64, error) {
	dates, err := s.TimeDates(varName)
	if err != nil {
		return nil, err
	}
	startIdx, endIdx, err := s.LocateDateRange(varName, start, end)
	if err != nil {
		return nil, err
	}
	ref, err := parseTimeUnits(outUnits)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, endIdx-startIdx+1)
	for _, d := range dates[startIdx : endIdx+1] {
		out = append(out, dateToNum(ref, d))
	}
	return out, nil
}

// nearestIndex returns the index of the date in dates closest in absolute
// difference to want, taking the first index when two are equally close.
func nearestIndex(dates []time.Time, want time.Time) int {
	best := 0
	bestDiff := absDuration(dates[0].Sub(want))
	for i := 1; i < len(dates); i++ {
		if d := absDuration(dates[i].Sub(want)); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
