package engine

import (
	"math"
	"time"
)

// Record is a participant's win/loss/tie tally.
type Record struct {
	Wins   int
	Losses int
	Ties   int
	// Basis names the data source the record was derived from:
	// "matchups", "days", or "games".
	Basis string
}

// IsMatchupRevealed reports whether a matchup counts toward records.
// A matchup dated today is provisional until the day is over and stays
// hidden unless the caller explicitly includes it.
func IsMatchupRevealed(m Matchup, now time.Time, includeToday bool) bool {
	if m.DateKey == DateKey(now) {
		return includeToday
	}
	return true
}

// ComputeRecord derives a participant's record from the best available
// data source: recorded matchups first, then day-by-day completion
// totals against the participant's own mean (for the local user), then
// game history against the player's mean score.
func ComputeRecord(state *AppState, playerID string, includeToday bool) Record {
	normalized := NormalizeState(state)
	now := time.Now()

	var matchups []Matchup
	for _, m := range normalized.Matchups {
		if m.PlayerAID != playerID && m.PlayerBID != playerID {
			continue
		}
		if !IsMatchupRevealed(m, now, includeToday) {
			continue
		}
		matchups = append(matchups, m)
	}
	if len(matchups) > 0 {
		rec := Record{Basis: "matchups"}
		for _, m := range matchups {
			switch m.Result() {
			case MatchupTie:
				rec.Ties++
			case MatchupWinA:
				if m.PlayerAID == playerID {
					rec.Wins++
				} else {
					rec.Losses++
				}
			case MatchupWinB:
				if m.PlayerBID == playerID {
					rec.Wins++
				} else {
					rec.Losses++
				}
			}
		}
		return rec
	}

	if playerID == PlayerYou {
		return recordFromTotals(dayTotalsList(&normalized, now, includeToday), "days")
	}

	var scores []float64
	for _, g := range normalized.GameHistory {
		if g.PlayerID == playerID {
			scores = append(scores, g.Score)
		}
	}
	return recordFromTotals(scores, "games")
}

func dayTotalsList(state *AppState, now time.Time, includeToday bool) []float64 {
	rollups := BuildRollups(state)
	today := DateKey(now)
	var totals []float64
	for k, total := range rollups.DailyWithInertia {
		if k == today && !includeToday {
			continue
		}
		totals = append(totals, total)
	}
	return totals
}

// recordFromTotals scores each value against the series mean: above is a
// win, below a loss, equal (within rounding noise) a tie.
func recordFromTotals(values []float64, basis string) Record {
	rec := Record{Basis: basis}
	if len(values) == 0 {
		return rec
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	for _, v := range values {
		switch {
		case math.Abs(v-mean) <= 1e-9:
			rec.Ties++
		case v > mean:
			rec.Wins++
		default:
			rec.Losses++
		}
	}
	return rec
}

// SyncYouMatchups re-derives the local user's side of every matchup from
// that day's inertia-inclusive completion total. The opposing side is
// never touched. Returns the number of matchups whose score changed.
func SyncYouMatchups(state *AppState) int {
	if state == nil {
		return 0
	}
	rollups := BuildRollups(state)
	changed := 0
	for i := range state.Matchups {
		m := &state.Matchups[i]
		total := Round2(rollups.DailyWithInertia[m.DateKey])
		if m.PlayerAID == PlayerYou && m.ScoreA != total {
			m.ScoreA = total
			changed++
		}
		if m.PlayerBID == PlayerYou && m.ScoreB != total {
			m.ScoreB = total
			changed++
		}
	}
	return changed
}
