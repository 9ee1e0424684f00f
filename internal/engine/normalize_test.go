package engine

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeStateNil(t *testing.T) {
	s := NormalizeState(nil)
	if s.Tasks == nil || s.Completions == nil || s.Players == nil || s.Habits == nil ||
		s.FlexActions == nil || s.GameHistory == nil || s.Matchups == nil || s.Schedule == nil ||
		s.OpponentDripSchedules == nil || s.WorkHistory == nil || s.Projects == nil {
		t.Fatalf("expected all arrays non-nil: %+v", s)
	}
	if s.HabitTagColors == nil {
		t.Fatalf("expected non-nil tag colors")
	}
	if !s.ScoringSettings.IsDefault() {
		t.Fatalf("expected default settings, got %+v", s.ScoringSettings)
	}
}

func TestNormalizeStateIdempotent(t *testing.T) {
	in := AppState{
		Tasks:       []Task{{ID: "t1", DueDateISO: "2024-01-05"}},
		Completions: []Completion{{ID: "c1", Title: "x", Source: "bogus"}},
	}
	once := NormalizeState(&in)
	twice := NormalizeState(&once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalization not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestNormalizeTaskBackfillsOriginalDueDate(t *testing.T) {
	task := NormalizeTask(Task{ID: "t1", DueDateISO: "2024-02-01"})
	if task.OriginalDueDateISO != "2024-02-01" {
		t.Fatalf("originalDueDateISO=%q, want backfilled", task.OriginalDueDateISO)
	}
	if task.PostponedDays != 0 {
		t.Fatalf("postponedDays=%d, want 0", task.PostponedDays)
	}

	// Once set it is never overwritten, even as the due date moves.
	task.DueDateISO = "2024-02-10"
	task = NormalizeTask(task)
	if task.OriginalDueDateISO != "2024-02-01" {
		t.Fatalf("originalDueDateISO=%q, must stay pinned", task.OriginalDueDateISO)
	}
}

func TestNormalizeCompletionSource(t *testing.T) {
	c := NormalizeCompletion(Completion{Title: "x", Source: "???"})
	if c.Source != SourceTask {
		t.Fatalf("source=%q, want task default", c.Source)
	}
	c = NormalizeCompletion(Completion{Title: "x", Source: SourceVice})
	if c.Source != SourceVice {
		t.Fatalf("source=%q, want vice preserved", c.Source)
	}
}

func TestDecodeStateMalformedDocument(t *testing.T) {
	s, err := DecodeState([]byte("{not json"))
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if len(s.Completions) != 0 || s.Tasks == nil {
		t.Fatalf("malformed document must yield empty normalized state, got %+v", s)
	}
}

func TestDecodeStateMalformedFieldLosesOnlyThatField(t *testing.T) {
	doc := `{"tasks": 42, "completions": [{"id":"c1","title":"Chores","points":5}], "youImageId": "img-9"}`
	s, err := DecodeState([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if len(s.Tasks) != 0 {
		t.Fatalf("tasks=%+v, want empty", s.Tasks)
	}
	if len(s.Completions) != 1 || s.Completions[0].ID != "c1" {
		t.Fatalf("completions=%+v", s.Completions)
	}
	if s.YouImageID != "img-9" {
		t.Fatalf("youImageId=%q", s.YouImageID)
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	in := AppState{
		Tasks:       []Task{{ID: "t1", Title: "Taxes", DueDateISO: "2024-04-01"}},
		Completions: []Completion{{ID: "c1", Title: "Sleep Score (96)", CompletedAtISO: "2024-01-01T08:00:00Z", SleepRested: 1}},
		Players:     []Player{{ID: "p1", Name: "Sam", ImageID: "img-1"}},
		Matchups:    []Matchup{{ID: "m1", DateKey: "2024-01-01", PlayerAID: PlayerYou, PlayerBID: "p1", ScoreA: 10, ScoreB: 8}},
		HabitTagColors: map[string]string{
			"health": "#00ff00",
		},
	}
	first := NormalizeState(&in)

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := DecodeState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("round trip drifted:\nbefore: %+v\nafter:  %+v", first, second)
	}
}

func TestSettingsUnmarshalFiniteOrDefault(t *testing.T) {
	var s Settings
	doc := `{"sleep": {"baseDivisor": 5}, "calories": {"target": 2000}, "inertia": {"windowDays": -3}}`
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Sleep.BaseDivisor != 5 {
		t.Fatalf("baseDivisor=%v, want 5", s.Sleep.BaseDivisor)
	}
	if s.Sleep.BaseMultiplier != 1 || s.Sleep.RestedMultiplier != 1 {
		t.Fatalf("absent sleep fields must default: %+v", s.Sleep)
	}
	if s.Calories.Target != 2000 || s.Calories.MaxPoints != 10 {
		t.Fatalf("calories=%+v", s.Calories)
	}
	if s.Inertia.WindowDays != 7 {
		t.Fatalf("windowDays=%d, want default 7 for invalid input", s.Inertia.WindowDays)
	}
	if len(s.Sleep.Tiers) != 3 {
		t.Fatalf("tiers=%+v, want defaults", s.Sleep.Tiers)
	}
}

func TestSettingsUnmarshalMalformedFamily(t *testing.T) {
	var s Settings
	doc := `{"sleep": "oops", "work": {"hoursMultiplier": 20}}`
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Sleep.BaseDivisor != 10 {
		t.Fatalf("malformed sleep family must fall back to defaults: %+v", s.Sleep)
	}
	if s.Work.HoursMultiplier != 20 {
		t.Fatalf("work=%+v", s.Work)
	}
}

func TestSettingsTiersFilteredAndSorted(t *testing.T) {
	var s Settings
	doc := `{"sleep": {"tiers": [{"min": 90, "bonus": 1}, {"min": "bad"}, {"min": 99, "bonus": 4}]}}`
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []SleepTier{{Min: 99, Bonus: 4}, {Min: 90, Bonus: 1}}
	if !reflect.DeepEqual(s.Sleep.Tiers, want) {
		t.Fatalf("tiers=%+v, want %+v", s.Sleep.Tiers, want)
	}
}

func TestResolveSettings(t *testing.T) {
	if got := ResolveSettings(nil); !got.IsDefault() {
		t.Fatalf("nil source must resolve to defaults")
	}

	custom := DefaultSettings()
	custom.Calories.Target = 1800
	if got := ResolveSettings(custom); got.Calories.Target != 1800 {
		t.Fatalf("settings source must pass through: %+v", got.Calories)
	}

	state := &AppState{ScoringSettings: custom}
	if got := ResolveSettings(state); got.Calories.Target != 1800 {
		t.Fatalf("state source must unwrap scoringSettings: %+v", got.Calories)
	}

	var nilState *AppState
	if got := ResolveSettings(nilState); !got.IsDefault() {
		t.Fatalf("nil state must resolve to defaults")
	}
}
