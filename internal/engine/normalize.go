package engine

import (
	"encoding/json"
	"fmt"
)

// NormalizeState is the single gate every externally-sourced document
// passes through before being trusted: storage reads, imports and merge
// inputs. It is total (never panics), returns a fully-typed structure
// with non-nil arrays and maps, and is idempotent.
func NormalizeState(s *AppState) AppState {
	var out AppState
	if s != nil {
		out = *s
	}

	if out.Tasks == nil {
		out.Tasks = []Task{}
	}
	for i := range out.Tasks {
		out.Tasks[i] = NormalizeTask(out.Tasks[i])
	}

	if out.Completions == nil {
		out.Completions = []Completion{}
	}
	for i := range out.Completions {
		out.Completions[i] = NormalizeCompletion(out.Completions[i])
	}

	if out.Players == nil {
		out.Players = []Player{}
	}
	if out.Habits == nil {
		out.Habits = []Habit{}
	}
	for i := range out.Habits {
		out.Habits[i] = NormalizeHabit(out.Habits[i])
	}
	if out.FlexActions == nil {
		out.FlexActions = []FlexAction{}
	}
	if out.GameHistory == nil {
		out.GameHistory = []GameEntry{}
	}
	if out.Matchups == nil {
		out.Matchups = []Matchup{}
	}
	if out.Schedule == nil {
		out.Schedule = []ScheduleEntry{}
	}
	if out.OpponentDripSchedules == nil {
		out.OpponentDripSchedules = []DripSchedule{}
	}
	if out.WorkHistory == nil {
		out.WorkHistory = []WorkEntry{}
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}

	out.HabitTagColors = NormalizeHabitTagColors(out.HabitTagColors)
	out.ScoringSettings = NormalizeSettings(out.ScoringSettings)

	return out
}

// NormalizeTask backfills the postpone counter and pins the original due
// date: OriginalDueDateISO is set from DueDateISO once and never cleared
// afterwards, even as the due date moves.
func NormalizeTask(t Task) Task {
	if t.PostponedDays < 0 {
		t.PostponedDays = 0
	}
	if t.OriginalDueDateISO == "" && t.DueDateISO != "" {
		t.OriginalDueDateISO = t.DueDateISO
	}
	return t
}

// NormalizeCompletion guarantees a valid source and finite numeric
// fields. Missing ids are left empty; ids are assigned at creation time,
// not during normalization, so normalizing is deterministic.
func NormalizeCompletion(c Completion) Completion {
	if !c.Source.IsValid() {
		c.Source = DefaultSource
	}
	c.Points = finiteOr(c.Points, 0)
	c.SleepRested = finiteOr(c.SleepRested, 0)
	c.WorkHours = finiteOr(c.WorkHours, 0)
	c.Calories = finiteOr(c.Calories, 0)
	return c
}

func NormalizeHabit(h Habit) Habit {
	h.Points = finiteOr(h.Points, 0)
	return h
}

func NormalizeHabitTagColors(colors map[string]string) map[string]string {
	if colors == nil {
		return map[string]string{}
	}
	return colors
}

// DecodeState parses a stored JSON document into a normalized AppState.
// Each top-level field is decoded independently, so one malformed field
// loses only that field, not the whole document. A document that is not
// a JSON object at all yields an empty normalized state and an error the
// caller may log.
func DecodeState(data []byte) (AppState, error) {
	empty := NormalizeState(nil)
	if len(data) == 0 {
		return empty, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return empty, fmt.Errorf("decode state: %w", err)
	}

	var s AppState
	decodeField(raw, "tasks", &s.Tasks)
	decodeField(raw, "completions", &s.Completions)
	decodeField(raw, "players", &s.Players)
	decodeField(raw, "habits", &s.Habits)
	decodeField(raw, "flexActions", &s.FlexActions)
	decodeField(raw, "gameHistory", &s.GameHistory)
	decodeField(raw, "matchups", &s.Matchups)
	decodeField(raw, "schedule", &s.Schedule)
	decodeField(raw, "opponentDripSchedules", &s.OpponentDripSchedules)
	decodeField(raw, "workHistory", &s.WorkHistory)
	decodeField(raw, "projects", &s.Projects)
	decodeField(raw, "youImageId", &s.YouImageID)
	decodeField(raw, "habitTagColors", &s.HabitTagColors)
	decodeField(raw, "scoringSettings", &s.ScoringSettings)

	return NormalizeState(&s), nil
}

func decodeField(raw map[string]json.RawMessage, key string, dst any) {
	b, ok := raw[key]
	if !ok {
		return
	}
	// Best effort: a malformed field keeps its zero value and
	// normalization fills in the default.
	_ = json.Unmarshal(b, dst)
}

// EncodeState marshals a document for persistence after normalizing it.
func EncodeState(s *AppState) ([]byte, error) {
	normalized := NormalizeState(s)
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}
