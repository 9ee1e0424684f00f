package engine

import (
	"math"
	"sort"
)

// Rollup maps bucket keys to summed point totals.
type Rollup struct {
	Daily   map[string]float64
	Weekly  map[string]float64
	Monthly map[string]float64
}

// CalorieLogBonusPoints is the flat daily bonus for logging calories.
// Logging at all is the habit being rewarded, so any nonzero count on a
// day earns it; a day of only zero entries does not.
const CalorieLogBonusPoints = 2.0

// CalorieLogBonus returns the bonus earned by a single day's completions.
func CalorieLogBonus(comps []Completion) float64 {
	for _, c := range comps {
		if c.Calories != 0 && !math.IsNaN(c.Calories) && !math.IsInf(c.Calories, 0) {
			return CalorieLogBonusPoints
		}
	}
	return 0
}

// AggregateCompletionsByDate rolls per-completion points into daily,
// weekly and monthly totals. Completions with missing or unparseable
// timestamps are skipped. The daily calorie-log bonus is folded into all
// three buckets, so re-aggregating after an edit is idempotent.
func AggregateCompletionsByDate(comps []Completion, src SettingsSource) Rollup {
	r := Rollup{
		Daily:   map[string]float64{},
		Weekly:  map[string]float64{},
		Monthly: map[string]float64{},
	}
	byDay := map[string][]Completion{}

	for _, c := range comps {
		t, ok := CompletionTime(c)
		if !ok {
			continue
		}
		pts := PointsForCompletion(c, src)
		dk := DateKey(t)
		r.Daily[dk] += pts
		r.Weekly[ISOWeekKey(t)] += pts
		r.Monthly[MonthKey(t)] += pts
		byDay[dk] = append(byDay[dk], c)
	}

	for dk, dayComps := range byDay {
		bonus := CalorieLogBonus(dayComps)
		if bonus == 0 {
			continue
		}
		r.Daily[dk] += bonus
		if t, ok := FromKey(dk); ok {
			r.Weekly[ISOWeekKey(t)] += bonus
			r.Monthly[MonthKey(t)] += bonus
		}
	}

	return r
}

// InertiaResult is the momentum bonus for a single day and the trailing
// average it was derived from.
type InertiaResult struct {
	Inertia float64
	Average float64
}

// ComputeInertia computes the momentum bonus for targetKey from daily
// totals. Inertia is a sequential recurrence: each day's bonus feeds the
// inertia-inclusive total that later days average over, so the walk must
// visit days in ascending chronological order. Days absent from the
// lookback window are excluded from both sum and count. Pure and
// idempotent for a given dailyTotals input.
func ComputeInertia(dailyTotals map[string]float64, targetKey string, src SettingsSource) InertiaResult {
	if _, ok := FromKey(targetKey); !ok {
		return InertiaResult{}
	}
	return inertiaWalk(dailyTotals, targetKey, ResolveSettings(src))[targetKey]
}

// inertiaWalk runs the recurrence over every valid day key (plus an
// optional extra key) in ascending order and returns the per-day results.
// One walk covers all days, so computing a whole range stays
// O(days x windowDays).
func inertiaWalk(dailyTotals map[string]float64, extraKey string, s Settings) map[string]InertiaResult {
	keys := make([]string, 0, len(dailyTotals)+1)
	seen := map[string]bool{}
	for k := range dailyTotals {
		if _, ok := FromKey(k); ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if extraKey != "" && !seen[extraKey] {
		keys = append(keys, extraKey)
	}
	// Day keys are zero-padded, so lexicographic order is chronological.
	sort.Strings(keys)

	totalsWithInertia := make(map[string]float64, len(keys))
	results := make(map[string]InertiaResult, len(keys))

	for _, k := range keys {
		cur, _ := FromKey(k)

		sum := 0.0
		count := 0
		for i := 1; i <= s.Inertia.WindowDays; i++ {
			prev := DateKey(cur.AddDate(0, 0, -i))
			if total, ok := totalsWithInertia[prev]; ok {
				sum += total
				count++
			}
		}

		var res InertiaResult
		if count > 0 {
			res.Average = sum / float64(count)
			res.Inertia = res.Average * s.Inertia.Multiplier
		}
		results[k] = res
		totalsWithInertia[k] = dailyTotals[k] + res.Inertia
	}

	return results
}

// TodayScore is a day's score with its momentum bonus applied.
type TodayScore struct {
	TodayPoints float64
	Base        float64
	Inertia     float64
	Average     float64
}

// DeriveTodayWithInertia combines a day's base total with its inertia,
// rounded to two decimals.
func DeriveTodayWithInertia(dailyTotals map[string]float64, todayKey string, src SettingsSource) TodayScore {
	res := ComputeInertia(dailyTotals, todayKey, src)
	base := dailyTotals[todayKey]
	return TodayScore{
		TodayPoints: Round2(base + res.Inertia),
		Base:        base,
		Inertia:     res.Inertia,
		Average:     res.Average,
	}
}

// Rollups carries the raw daily totals plus the inertia-inclusive totals
// per bucket. Weekly and monthly values are sums of the inertia-inclusive
// daily totals, not independently computed.
type Rollups struct {
	Daily              map[string]float64
	DailyWithInertia   map[string]float64
	WeeklyWithInertia  map[string]float64
	MonthlyWithInertia map[string]float64
}

// BuildRollups produces the full rollup set for a document.
func BuildRollups(state *AppState) Rollups {
	normalized := NormalizeState(state)
	base := AggregateCompletionsByDate(normalized.Completions, &normalized)

	out := Rollups{
		Daily:              base.Daily,
		DailyWithInertia:   map[string]float64{},
		WeeklyWithInertia:  map[string]float64{},
		MonthlyWithInertia: map[string]float64{},
	}

	walk := inertiaWalk(base.Daily, "", ResolveSettings(&normalized))
	for k, b := range base.Daily {
		total := b + walk[k].Inertia
		out.DailyWithInertia[k] = total

		t, ok := FromKey(k)
		if !ok {
			continue
		}
		out.WeeklyWithInertia[ISOWeekKey(t)] += total
		out.MonthlyWithInertia[MonthKey(t)] += total
	}

	return out
}
