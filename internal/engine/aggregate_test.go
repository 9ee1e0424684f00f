package engine

import (
	"fmt"
	"math"
	"testing"
	"time"
)

func dayKeys(n int, start time.Time) []string {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = DateKey(start.AddDate(0, 0, i))
	}
	return keys
}

func TestComputeInertiaUsesRunningTotals(t *testing.T) {
	// Seven tracked days of 10 points each, then an untracked day 8.
	// Because inertia compounds (each day's bonus feeds the totals later
	// days average over), day 8's average must exceed the naive average
	// of the raw daily totals.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	keys := dayKeys(8, start)

	daily := map[string]float64{}
	for _, k := range keys[:7] {
		daily[k] = 10
	}

	res := ComputeInertia(daily, keys[7], nil)
	if res.Inertia == 0 {
		t.Fatalf("expected nonzero inertia for day 8")
	}
	if res.Average <= 10 {
		t.Fatalf("average=%v, want > 10 (raw average); inertia must compound", res.Average)
	}
	if res.Inertia != res.Average*0.25 {
		t.Fatalf("inertia=%v, want average*0.25=%v", res.Inertia, res.Average*0.25)
	}

	// Day 1 has no history, so no inertia; day 2 averages only day 1.
	d1 := ComputeInertia(daily, keys[0], nil)
	if d1.Inertia != 0 || d1.Average != 0 {
		t.Fatalf("day 1 inertia=%+v, want zero", d1)
	}
	d2 := ComputeInertia(daily, keys[1], nil)
	if d2.Average != 10 {
		t.Fatalf("day 2 average=%v, want 10", d2.Average)
	}
}

func TestComputeInertiaSkipsUntrackedDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	keys := dayKeys(9, start)

	// Only days 1 and 4 tracked; the rest must not count as zeros.
	daily := map[string]float64{keys[0]: 20, keys[3]: 10}
	res := ComputeInertia(daily, keys[8], nil)

	// day1: avg none -> total 20. day4: avg {20} -> inertia 5, total 15.
	// day9: lookback covers days 2..8, only day4 present -> avg 15.
	if res.Average != 15 {
		t.Fatalf("average=%v, want 15 (missing days excluded, not zero)", res.Average)
	}
	if res.Inertia != 15*0.25 {
		t.Fatalf("inertia=%v, want %v", res.Inertia, 15*0.25)
	}
}

func TestComputeInertiaIdempotent(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	keys := dayKeys(10, start)
	daily := map[string]float64{}
	for i, k := range keys {
		daily[k] = float64(i + 1)
	}
	target := keys[9]
	first := ComputeInertia(daily, target, nil)
	for i := 0; i < 5; i++ {
		if got := ComputeInertia(daily, target, nil); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestComputeInertiaInvalidTarget(t *testing.T) {
	if got := ComputeInertia(map[string]float64{"2024-01-01": 5}, "garbage", nil); got != (InertiaResult{}) {
		t.Fatalf("invalid target should yield zero result, got %+v", got)
	}
}

func TestDeriveTodayWithInertia(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	keys := dayKeys(2, start)
	daily := map[string]float64{keys[0]: 12}

	score := DeriveTodayWithInertia(daily, keys[1], nil)
	if score.Base != 0 {
		t.Fatalf("base=%v, want 0", score.Base)
	}
	if score.Average != 12 {
		t.Fatalf("average=%v, want 12", score.Average)
	}
	if score.TodayPoints != 3 {
		t.Fatalf("todayPoints=%v, want 3 (12*0.25 rounded)", score.TodayPoints)
	}
}

func TestAggregateCompletionsByDate(t *testing.T) {
	day := time.Date(2024, 5, 6, 12, 0, 0, 0, time.Local) // a Monday
	iso := day.Format(time.RFC3339)
	comps := []Completion{
		{ID: "a", Title: "Sleep Score (100)", SleepRested: 2, CompletedAtISO: iso},
		{ID: "b", Title: "Chores", Points: 5, CompletedAtISO: iso},
		{ID: "c", Title: "skipped", Points: 99},                                  // no timestamp
		{ID: "d", Title: "also skipped", Points: 99, CompletedAtISO: "not-a-ts"}, // bad timestamp
	}

	r := AggregateCompletionsByDate(comps, nil)
	dk := DateKey(day)
	if got := r.Daily[dk]; got != 20 {
		t.Fatalf("daily[%s]=%v, want 20", dk, got)
	}
	if got := r.Weekly[ISOWeekKey(day)]; got != 20 {
		t.Fatalf("weekly=%v, want 20", got)
	}
	if got := r.Monthly[MonthKey(day)]; got != 20 {
		t.Fatalf("monthly=%v, want 20", got)
	}
	if len(r.Daily) != 1 {
		t.Fatalf("expected exactly one tracked day, got %v", r.Daily)
	}
}

func TestCalorieLogBonus(t *testing.T) {
	cases := []struct {
		comps []Completion
		want  float64
	}{
		{nil, 0},
		{[]Completion{{Calories: 0}}, 0},
		{[]Completion{{Calories: 10}}, 2},
		{[]Completion{{Calories: 0}, {Calories: 10}}, 2},
		{[]Completion{{Calories: math.NaN()}, {Calories: 0}}, 0},
		{[]Completion{{Calories: -10}}, 2},
	}
	for i, tc := range cases {
		if got := CalorieLogBonus(tc.comps); got != tc.want {
			t.Fatalf("case %d: bonus=%v, want %v", i, got, tc.want)
		}
	}
}

func TestAggregateAppliesCalorieLogBonusIdempotently(t *testing.T) {
	iso := time.Date(2026, 2, 1, 12, 0, 0, 0, time.Local).Format(time.RFC3339)
	entry := Completion{ID: "cal-1", Title: "Calories (100)", CompletedAtISO: iso, Calories: 100}

	dk := DateKey(time.Date(2026, 2, 1, 12, 0, 0, 0, time.Local))
	r := AggregateCompletionsByDate([]Completion{entry}, nil)
	// (2400-100)/100 clamps to 10 points, plus the +2 logging bonus.
	if got := r.Daily[dk]; got != 12 {
		t.Fatalf("daily=%v, want 12", got)
	}

	// Editing the entry to zero calories drops the bonus on re-aggregation.
	edited := entry
	edited.Title = "Calories (0)"
	edited.Calories = 0
	r = AggregateCompletionsByDate([]Completion{edited}, nil)
	if got := r.Daily[dk]; got != 10 {
		t.Fatalf("daily after edit=%v, want 10", got)
	}
}

func TestBuildRollupsWeeklyIsInertiaInclusive(t *testing.T) {
	// Two consecutive days in one ISO week; day 2 carries inertia from
	// day 1, and the weekly total must be the sum of the
	// inertia-inclusive dailies, not the raw ones.
	d1 := time.Date(2024, 5, 6, 9, 0, 0, 0, time.Local)
	d2 := d1.AddDate(0, 0, 1)
	state := &AppState{Completions: []Completion{
		{ID: "a", Title: "Chores", Points: 8, CompletedAtISO: d1.Format(time.RFC3339)},
		{ID: "b", Title: "Chores", Points: 8, CompletedAtISO: d2.Format(time.RFC3339)},
	}}

	r := BuildRollups(state)
	k1, k2 := DateKey(d1), DateKey(d2)
	if r.Daily[k1] != 8 || r.Daily[k2] != 8 {
		t.Fatalf("daily=%v", r.Daily)
	}
	if r.DailyWithInertia[k1] != 8 {
		t.Fatalf("day1 with inertia=%v, want 8", r.DailyWithInertia[k1])
	}
	if r.DailyWithInertia[k2] != 10 {
		t.Fatalf("day2 with inertia=%v, want 10 (8 + 8*0.25)", r.DailyWithInertia[k2])
	}
	wk := ISOWeekKey(d1)
	if ISOWeekKey(d2) != wk {
		t.Fatalf("test days must share a week: %s vs %s", wk, ISOWeekKey(d2))
	}
	if r.WeeklyWithInertia[wk] != 18 {
		t.Fatalf("weekly=%v, want 18", r.WeeklyWithInertia[wk])
	}
}

func TestISOWeekKeyThursdayAnchor(t *testing.T) {
	// 2021-01-01 is a Friday and belongs to ISO week 2020-W53.
	k := ISOWeekKey(time.Date(2021, 1, 1, 12, 0, 0, 0, time.Local))
	if k != "2020-W53" {
		t.Fatalf("week key=%q, want 2020-W53", k)
	}
	// 2024-12-30 is a Monday in 2025-W01.
	k = ISOWeekKey(time.Date(2024, 12, 30, 12, 0, 0, 0, time.Local))
	if k != "2025-W01" {
		t.Fatalf("week key=%q, want 2025-W01", k)
	}
}

func TestISOWeekRange(t *testing.T) {
	start, end, ok := ISOWeekRange("2024-W19")
	if !ok {
		t.Fatalf("expected valid range")
	}
	if DateKey(start) != "2024-05-06" || DateKey(end) != "2024-05-12" {
		t.Fatalf("range=%s..%s", DateKey(start), DateKey(end))
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if ISOWeekKey(d) != "2024-W19" {
			t.Fatalf("day %s maps to %s", DateKey(d), ISOWeekKey(d))
		}
	}
	if _, _, ok := ISOWeekRange("garbage"); ok {
		t.Fatalf("expected invalid range")
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	for _, k := range []string{"2024-01-01", "1999-12-31", "2026-02-28"} {
		d, ok := FromKey(k)
		if !ok {
			t.Fatalf("FromKey(%q) failed", k)
		}
		if got := DateKey(d); got != k {
			t.Fatalf("round trip %q -> %q", k, got)
		}
	}
	if _, ok := FromKey("2024-13-40"); ok {
		t.Fatalf("expected invalid key to fail")
	}
}

func TestFormatMonthKey(t *testing.T) {
	if got := FormatMonthKey("2024-05"); got != "May 2024" {
		t.Fatalf("FormatMonthKey=%q", got)
	}
	if got := FormatMonthKey("junk"); got != "Invalid month" {
		t.Fatalf("FormatMonthKey junk=%q", got)
	}
}

func ExampleComputeInertia() {
	daily := map[string]float64{"2024-01-01": 10}
	res := ComputeInertia(daily, "2024-01-02", nil)
	fmt.Println(res.Inertia)
	// Output: 2.5
}
