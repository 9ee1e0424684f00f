package engine

import (
	"math"
)

// Formula names reported by DeriveCompletionPoints.
const (
	FormulaSleep          = "sleep"
	FormulaWork           = "work"
	FormulaCalories       = "calories"
	FormulaCaloriesLegacy = "caloriesLegacy"
	FormulaMood           = "mood"
)

// Legacy calorie completions stored the raw calorie count in the points
// field. A stored value in this open interval is treated as a calorie
// count, not a point value.
const (
	legacyCalorieMin = 50
	legacyCalorieMax = 10000
)

// Derivation is the result of applying a scoring formula to a completion.
type Derivation struct {
	Points  float64
	Formula string
	Inputs  map[string]float64
}

// RoundPoints rounds to the given number of decimals. All point
// arithmetic goes through this to keep float drift from accumulating
// across repeated additions.
func RoundPoints(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Round2 is the standard 2-decimal rounding applied to point values.
func Round2(v float64) float64 {
	return RoundPoints(v, 2)
}

// SleepBonus returns the bonus of the first tier whose Min is at or below
// the score. Tiers must already be sorted descending by Min.
func SleepBonus(score float64, tiers []SleepTier) float64 {
	for _, t := range tiers {
		if score >= t.Min {
			return t.Bonus
		}
	}
	return 0
}

// SleepPoints applies the sleep formula.
func SleepPoints(score, rested float64, s SleepSettings) float64 {
	if math.IsNaN(rested) || math.IsInf(rested, 0) {
		rested = 0
	}
	base := (score / s.BaseDivisor) * s.BaseMultiplier
	return base + s.BaseOffset + SleepBonus(score, s.Tiers) + rested*s.RestedMultiplier
}

// WorkPoints applies the work formula; hours are clamped to the
// configured range before the hourly bonus is applied.
func WorkPoints(score, hours float64, s WorkSettings) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}
	if hours < s.HoursMin {
		hours = s.HoursMin
	}
	if s.HoursMax != nil && hours > *s.HoursMax {
		hours = *s.HoursMax
	}
	return score*s.BaseMultiplier + s.BaseOffset + hours*s.HoursMultiplier + s.HoursOffset
}

// CaloriesToPoints maps a calorie count to points: one point per 100
// calories under target, clamped to the configured range and rounded to
// one decimal.
func CaloriesToPoints(calories float64, s CalorieSettings) float64 {
	pts := ((s.Target - calories) / 100) * s.PointsPer100
	if pts < s.MinPoints {
		pts = s.MinPoints
	}
	if pts > s.MaxPoints {
		pts = s.MaxPoints
	}
	return RoundPoints(pts, 1)
}

// MoodPoints applies the mood formula with optional clamping.
func MoodPoints(score float64, s MoodSettings) float64 {
	pts := score*s.Multiplier + s.Offset
	if s.Min != nil && pts < *s.Min {
		pts = *s.Min
	}
	if s.Max != nil && pts > *s.Max {
		pts = *s.Max
	}
	return pts
}

// DeriveCompletionPoints tries the scoring formulas in fixed priority
// order and returns the first match. The second return is false when the
// entry matches no formula; callers then fall back to the stored points.
func DeriveCompletionPoints(c Completion, src SettingsSource) (Derivation, bool) {
	s := ResolveSettings(src)
	parsed := ParseTitle(c.Title)

	switch parsed.Kind {
	case TitleSleep:
		pts := SleepPoints(parsed.Score, c.SleepRested, s.Sleep)
		return Derivation{
			Points:  Round2(pts),
			Formula: FormulaSleep,
			Inputs:  map[string]float64{"score": parsed.Score, "rested": c.SleepRested},
		}, true
	case TitleWork:
		pts := WorkPoints(parsed.Score, c.WorkHours, s.Work)
		return Derivation{
			Points:  Round2(pts),
			Formula: FormulaWork,
			Inputs:  map[string]float64{"score": parsed.Score, "hours": c.WorkHours},
		}, true
	case TitleCalories:
		pts := CaloriesToPoints(parsed.Amount, s.Calories)
		return Derivation{
			Points:  pts,
			Formula: FormulaCalories,
			Inputs:  map[string]float64{"calories": parsed.Amount},
		}, true
	}

	// Legacy calorie entries: "Calories" prefix with no parseable amount,
	// calorie count smuggled through the stored points field.
	if HasCaloriesPrefix(c.Title) && c.Points > legacyCalorieMin && c.Points < legacyCalorieMax {
		pts := CaloriesToPoints(c.Points, s.Calories)
		return Derivation{
			Points:  pts,
			Formula: FormulaCaloriesLegacy,
			Inputs:  map[string]float64{"calories": c.Points},
		}, true
	}

	if parsed.Kind == TitleMood {
		pts := MoodPoints(parsed.Score, s.Mood)
		return Derivation{
			Points:  Round2(pts),
			Formula: FormulaMood,
			Inputs:  map[string]float64{"score": parsed.Score},
		}, true
	}

	return Derivation{}, false
}

// PointsForCompletion returns the derived point value for a completion,
// falling back to its stored points when no formula matches.
func PointsForCompletion(c Completion, src SettingsSource) float64 {
	if d, ok := DeriveCompletionPoints(c, src); ok {
		return d.Points
	}
	return Round2(c.Points)
}
