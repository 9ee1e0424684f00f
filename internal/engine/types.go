package engine

// Source identifies where a completion came from. It drives category
// assignment (see CategoryDefs) together with title parsing.
type Source string

const (
	SourceTask   Source = "task"
	SourceHabit  Source = "habit"
	SourceVice   Source = "vice"
	SourceFlex   Source = "flex"
	SourceWork   Source = "work"
	SourceGame   Source = "game"
	SourceMetric Source = "metric"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceTask, SourceHabit, SourceVice, SourceFlex, SourceWork, SourceGame, SourceMetric:
		return true
	default:
		return false
	}
}

// DefaultSource is used when a completion carries no source or an
// unrecognized one.
const DefaultSource = SourceTask

// PlayerYou is the sentinel participant id for the local user. Matchup
// scores for this id are derived from completions, never entered by hand.
const PlayerYou = "YOU"

// Completion is a logged event, the atomic unit of scoring input.
// Points are derived at read time from the title and fields; the stored
// Points value is the fallback when no formula matches.
type Completion struct {
	ID             string  `json:"id"`
	TaskID         string  `json:"taskId,omitempty"`
	Title          string  `json:"title"`
	Source         Source  `json:"source"`
	CompletedAtISO string  `json:"completedAtISO"`
	Points         float64 `json:"points"`
	SleepRested    float64 `json:"sleepRested,omitempty"`
	WorkHours      float64 `json:"workHours,omitempty"`
	Calories       float64 `json:"calories,omitempty"`
}

// Task is a to-do item. OriginalDueDateISO is set once by normalization
// and never cleared, even as DueDateISO moves.
type Task struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	ProjectID          string `json:"projectId,omitempty"`
	DueDateISO         string `json:"dueDateISO,omitempty"`
	OriginalDueDateISO string `json:"originalDueDateISO,omitempty"`
	PostponedDays      int    `json:"postponedDays"`
	Done               bool   `json:"done"`
	CompletedAtISO     string `json:"completedAtISO,omitempty"`
}

// Player is a leaderboard participant. ImageID is a weak reference into
// the blob store; deleting the player does not delete the blob.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ImageID string `json:"imageId,omitempty"`
}

type Habit struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Tag          string  `json:"tag,omitempty"`
	Points       float64 `json:"points"`
	CreatedAtISO string  `json:"createdAtISO,omitempty"`
}

type FlexAction struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Points float64 `json:"points"`
}

// Matchup is a day-keyed pairwise comparison between two participants.
// The result is derived from the scores, never stored authoritatively.
type Matchup struct {
	ID        string  `json:"id"`
	DateKey   string  `json:"dateKey"`
	PlayerAID string  `json:"playerAId"`
	PlayerBID string  `json:"playerBId"`
	ScoreA    float64 `json:"scoreA"`
	ScoreB    float64 `json:"scoreB"`
}

// MatchupResult is the outcome of a matchup from player A's side.
type MatchupResult string

const (
	MatchupWinA MatchupResult = "A"
	MatchupWinB MatchupResult = "B"
	MatchupTie  MatchupResult = "tie"
)

func (m Matchup) Result() MatchupResult {
	switch {
	case m.ScoreA > m.ScoreB:
		return MatchupWinA
	case m.ScoreB > m.ScoreA:
		return MatchupWinB
	default:
		return MatchupTie
	}
}

type GameEntry struct {
	ID       string  `json:"id"`
	DateISO  string  `json:"dateISO"`
	PlayerID string  `json:"playerId"`
	Game     string  `json:"game,omitempty"`
	Score    float64 `json:"score"`
}

type WorkEntry struct {
	ID      string  `json:"id"`
	DateISO string  `json:"dateISO"`
	Hours   float64 `json:"hours"`
	Score   float64 `json:"score"`
}

type ScheduleEntry struct {
	ID      string `json:"id"`
	DateKey string `json:"dateKey"`
	Title   string `json:"title"`
}

// DripSchedule feeds an opponent a fixed number of points per day,
// starting at StartDateISO. Used to simulate steady competitors.
type DripSchedule struct {
	PlayerID     string  `json:"playerId"`
	StartDateISO string  `json:"startDateISO"`
	PointsPerDay float64 `json:"pointsPerDay"`
}

type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// AppState is the root persisted document, the unit of persistence.
// Normalization guarantees every array field is non-nil and every scalar
// has a type-correct value before any other code touches it.
type AppState struct {
	Tasks                 []Task            `json:"tasks"`
	Completions           []Completion      `json:"completions"`
	Players               []Player          `json:"players"`
	Habits                []Habit           `json:"habits"`
	FlexActions           []FlexAction      `json:"flexActions"`
	GameHistory           []GameEntry       `json:"gameHistory"`
	Matchups              []Matchup         `json:"matchups"`
	Schedule              []ScheduleEntry   `json:"schedule"`
	OpponentDripSchedules []DripSchedule    `json:"opponentDripSchedules"`
	WorkHistory           []WorkEntry       `json:"workHistory"`
	Projects              []Project         `json:"projects"`
	YouImageID            string            `json:"youImageId"`
	HabitTagColors        map[string]string `json:"habitTagColors"`
	ScoringSettings       Settings          `json:"scoringSettings"`
}
