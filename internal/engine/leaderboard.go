package engine

import (
	"sort"
	"time"
)

// LeaderboardEntry is one ranked bucket. Start/End are populated for
// week entries only.
type LeaderboardEntry struct {
	Key   string
	Total float64
	Start time.Time
	End   time.Time
}

type Leaderboards struct {
	BestDays   []LeaderboardEntry
	BestWeeks  []LeaderboardEntry
	BestMonths []LeaderboardEntry
	Rollups    Rollups
}

// ComputeLeaderboards ranks days, weeks and months by inertia-inclusive
// total, descending. Ties keep chronological order (stable sort over
// chronologically ordered input).
func ComputeLeaderboards(state *AppState) Leaderboards {
	rollups := BuildRollups(state)

	days := rankedEntries(rollups.DailyWithInertia)
	months := rankedEntries(rollups.MonthlyWithInertia)

	weeks := rankedEntries(rollups.WeeklyWithInertia)
	for i := range weeks {
		if start, end, ok := ISOWeekRange(weeks[i].Key); ok {
			weeks[i].Start = start
			weeks[i].End = end
		}
	}

	return Leaderboards{
		BestDays:   days,
		BestWeeks:  weeks,
		BestMonths: months,
		Rollups:    rollups,
	}
}

func rankedEntries(totals map[string]float64) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(totals))
	for k, total := range totals {
		entries = append(entries, LeaderboardEntry{Key: k, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Total > entries[j].Total })
	return entries
}
