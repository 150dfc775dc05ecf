// services/clean_service.go
package services

import (
	"math"
	"sort"

	"github.com/gewnthar/airquality/models"
)

// Interpolation methods accepted by CleanTable.
const (
	InterpolateTime  = "time"  // weight by distance between timestamps
	InterpolateIndex = "index" // weight by row position
)

// CleanTable returns a copy of t sorted by DatetimeBegin with Concentration
// gaps filled. The sort happens first and is stable; rows with a missing
// timestamp go last. Interior gaps are interpolated linearly, gaps after the
// last known value take that value, and gaps before the first known value
// stay missing.
func CleanTable(t *models.Table, method string) *models.Table {
	out := &models.Table{}
	if t == nil {
		return out
	}
	out.Name = t.Name
	out.Rows = append([]models.Measurement(nil), t.Rows...)

	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].DatetimeBegin.Before(out.Rows[j].DatetimeBegin)
	})

	for i := range out.Rows {
		c := out.Rows[i].Concentration
		if c.Valid && (math.IsNaN(c.Float64) || math.IsInf(c.Float64, 0)) {
			out.Rows[i].Concentration = models.NullFloat{}
		}
	}

	interpolate(out.Rows, method)
	return out
}

func interpolate(rows []models.Measurement, method string) {
	prev := -1
	for i := range rows {
		if !rows[i].Concentration.Valid {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			fillBetween(rows, prev, i, method)
		}
		prev = i
	}
	if prev < 0 {
		return
	}
	for i := prev + 1; i < len(rows); i++ {
		rows[i].Concentration = rows[prev].Concentration
	}
}

// fillBetween fills rows strictly between lo and hi, both of which are known.
func fillBetween(rows []models.Measurement, lo, hi int, method string) {
	y0 := rows[lo].Concentration.Float64
	y1 := rows[hi].Concentration.Float64

	useTime := method != InterpolateIndex && timesUsable(rows, lo, hi)
	t0 := rows[lo].DatetimeBegin.Time
	span := rows[hi].DatetimeBegin.Time.Sub(t0).Seconds()

	for k := lo + 1; k < hi; k++ {
		var frac float64
		if useTime {
			frac = rows[k].DatetimeBegin.Time.Sub(t0).Seconds() / span
		} else {
			frac = float64(k-lo) / float64(hi-lo)
		}
		rows[k].Concentration = models.Float(y0 + (y1-y0)*frac)
	}
}

// timesUsable is true when every timestamp in [lo, hi] is present and the
// range spans a positive duration.
func timesUsable(rows []models.Measurement, lo, hi int) bool {
	for k := lo; k <= hi; k++ {
		if !rows[k].DatetimeBegin.Valid {
			return false
		}
	}
	return rows[hi].DatetimeBegin.Time.After(rows[lo].DatetimeBegin.Time)
}
