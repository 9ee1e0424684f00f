package engine

import (
	"fmt"
	"math"
	"strings"
)

// CategoryDef is one tagged predicate in the categorization cascade.
type CategoryDef struct {
	Key   string
	Label string
	Match func(Completion) bool
}

// CategoryDefs is evaluated strictly in order with "tasks" as the
// mandatory catch-all. The order is a semantic contract: the first
// matching rule wins, and reordering changes categorization results.
var CategoryDefs = []CategoryDef{
	{Key: "sleep", Label: "Sleep", Match: func(c Completion) bool {
		return strings.HasPrefix(c.Title, "Sleep Score (")
	}},
	{Key: "calories", Label: "Calories", Match: func(c Completion) bool {
		return strings.HasPrefix(c.Title, "Calories (")
	}},
	{Key: "mood", Label: "Mood", Match: func(c Completion) bool {
		return strings.HasPrefix(c.Title, "Mood Score (")
	}},
	{Key: "habits", Label: "Habits", Match: func(c Completion) bool { return c.Source == SourceHabit }},
	{Key: "vices", Label: "Vices", Match: func(c Completion) bool { return c.Source == SourceVice }},
	{Key: "flex", Label: "Flex", Match: func(c Completion) bool { return c.Source == SourceFlex }},
	{Key: "work", Label: "Work", Match: func(c Completion) bool {
		return c.Source == SourceWork || strings.HasPrefix(c.Title, "Work Score")
	}},
	{Key: "game", Label: "Game", Match: func(c Completion) bool { return c.Source == SourceGame }},
	{Key: "tasks", Label: "Tasks", Match: func(Completion) bool { return true }},
}

// InertiaCategoryLabel is the pseudo-category for the momentum bonus in
// day totals.
const InertiaCategoryLabel = "Inertia"

// CategorizeCompletion returns the key of the first matching category.
func CategorizeCompletion(c Completion) string {
	for _, def := range CategoryDefs {
		if def.Match(c) {
			return def.Key
		}
	}
	return "tasks"
}

// CategoryLabel maps a category key to its display label.
func CategoryLabel(key string) string {
	for _, def := range CategoryDefs {
		if def.Key == key {
			return def.Label
		}
	}
	return CategoryDefs[len(CategoryDefs)-1].Label
}

// SnapshotItem is one itemized completion inside a day snapshot.
type SnapshotItem struct {
	Source   Source
	ID       string
	Label    string
	Category string
	Points   float64
	Details  SnapshotDetails
}

type SnapshotDetails struct {
	CompletedAtISO string
	TaskID         string
}

// DaySnapshot is a single day's itemized breakdown with its momentum
// bonus attached.
type DaySnapshot struct {
	DateKey        string
	Items          []SnapshotItem
	BaseTotal      float64
	Inertia        float64
	InertiaAverage float64
	DailyTotals    map[string]float64
}

// BuildDaySnapshot assembles the itemized breakdown for one local
// calendar day. The key is normalized first so loosely formatted dates
// ("2024-1-2") hit the same bucket as their canonical form.
func BuildDaySnapshot(dateKey string, state *AppState) DaySnapshot {
	if t, ok := FromKey(dateKey); ok {
		dateKey = DateKey(t)
	}
	normalized := NormalizeState(state)

	snap := DaySnapshot{DateKey: dateKey, Items: []SnapshotItem{}}

	for _, c := range normalized.Completions {
		t, ok := CompletionTime(c)
		if !ok || DateKey(t) != dateKey {
			continue
		}
		label := c.Title
		if label == "" {
			label = "Untitled"
		}
		id := c.ID
		if id == "" {
			if c.TaskID != "" {
				id = c.TaskID
			} else {
				id = label
			}
		}
		src := c.Source
		if src == "" {
			src = DefaultSource
		}
		pts := PointsForCompletion(c, &normalized)
		snap.Items = append(snap.Items, SnapshotItem{
			Source:   src,
			ID:       id,
			Label:    label,
			Category: CategorizeCompletion(c),
			Points:   pts,
			Details: SnapshotDetails{
				CompletedAtISO: c.CompletedAtISO,
				TaskID:         c.TaskID,
			},
		})
		snap.BaseTotal += pts
	}

	rollup := AggregateCompletionsByDate(normalized.Completions, &normalized)
	res := ComputeInertia(rollup.Daily, dateKey, &normalized)
	snap.Inertia = res.Inertia
	snap.InertiaAverage = res.Average
	snap.DailyTotals = rollup.Daily

	return snap
}

// DayTotals is the categorized summary of a day snapshot.
type DayTotals struct {
	Total         float64
	RawTotal      float64
	ByCategory    map[string]float64
	RoundingNotes []string
}

// ComputeDayTotals sums a snapshot per category, adds the inertia
// pseudo-category and rounds the grand total. A rounding note is emitted
// when rounding moved the value, for auditability.
func ComputeDayTotals(snap DaySnapshot) DayTotals {
	byCategory := make(map[string]float64, len(CategoryDefs)+1)
	for _, def := range CategoryDefs {
		byCategory[def.Label] = 0
	}
	byCategory[InertiaCategoryLabel] = 0

	for _, item := range snap.Items {
		byCategory[CategoryLabel(item.Category)] += item.Points
	}
	if snap.Inertia != 0 {
		byCategory[InertiaCategoryLabel] += snap.Inertia
	}

	raw := snap.BaseTotal + snap.Inertia
	total := Round2(raw)

	var notes []string
	if math.Abs(raw-total) > 1e-9 {
		notes = append(notes, fmt.Sprintf("rounded to two decimal places from %v", raw))
	}

	return DayTotals{
		Total:         total,
		RawTotal:      raw,
		ByCategory:    byCategory,
		RoundingNotes: notes,
	}
}
