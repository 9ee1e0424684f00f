package engine

import "math"

// PointsMismatch records one completion whose stored points drifted from
// the formula-derived value. The pre-sync value survives only in this
// report; the stored field is overwritten in place.
type PointsMismatch struct {
	ID            string             `json:"id" yaml:"id"`
	Title         string             `json:"title" yaml:"title"`
	StoredPoints  float64            `json:"storedPoints" yaml:"storedPoints"`
	DerivedPoints float64            `json:"derivedPoints" yaml:"derivedPoints"`
	Delta         float64            `json:"delta" yaml:"delta"`
	Formula       string             `json:"formula" yaml:"formula"`
	Inputs        map[string]float64 `json:"inputs" yaml:"inputs"`
}

// syncTolerance is the drift below which stored points are left alone.
const syncTolerance = 0.01

// SyncDerivedPoints re-derives every completion's points and overwrites
// stored values that drifted beyond tolerance, so retroactive settings
// changes propagate to historical entries. Returns the mismatch report.
// When dryRun is set the state is left untouched and only the report is
// produced.
func SyncDerivedPoints(state *AppState, src SettingsSource, dryRun bool) []PointsMismatch {
	if state == nil {
		return nil
	}
	var mismatches []PointsMismatch
	for i := range state.Completions {
		c := state.Completions[i]
		d, ok := DeriveCompletionPoints(c, src)
		if !ok {
			continue
		}
		delta := d.Points - c.Points
		if math.Abs(delta) <= syncTolerance {
			continue
		}
		mismatches = append(mismatches, PointsMismatch{
			ID:            c.ID,
			Title:         c.Title,
			StoredPoints:  c.Points,
			DerivedPoints: d.Points,
			Delta:         delta,
			Formula:       d.Formula,
			Inputs:        d.Inputs,
		})
		if !dryRun {
			state.Completions[i].Points = d.Points
		}
	}
	return mismatches
}
