package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Legacy metric completions encode their measurement inside the display
// title ("Sleep Score (92)"). ParseTitle is the single place that pattern
// matching lives; downstream code switches on the tagged result instead
// of re-parsing strings.

// TitleKind tags a parsed completion title.
type TitleKind int

const (
	TitleUnrecognized TitleKind = iota
	TitleSleep
	TitleWork
	TitleCalories
	TitleMood
)

func (k TitleKind) String() string {
	switch k {
	case TitleSleep:
		return "sleep"
	case TitleWork:
		return "work"
	case TitleCalories:
		return "calories"
	case TitleMood:
		return "mood"
	default:
		return "unrecognized"
	}
}

// ParsedTitle is the tagged result of parsing a completion title.
// Score carries the sleep/work/mood score; Amount carries a calorie count.
type ParsedTitle struct {
	Kind   TitleKind
	Score  float64
	Amount float64
}

var (
	sleepTitleRe   = regexp.MustCompile(`^Sleep Score\s*\((\d+(\.\d+)?)\)`)
	workTitleRe    = regexp.MustCompile(`^Work Score\s*\((\d+(\.\d+)?)\)`)
	moodTitleRe    = regexp.MustCompile(`^Mood Score\s*\(([-0-9.]+)\)`)
	caloriesFreeRe = regexp.MustCompile(`(?i)calories[^0-9]*([0-9.]+)`)
)

// ParseTitle classifies a completion title. Priority order matters and is
// part of the scoring contract: sleep, work, calories, mood.
func ParseTitle(title string) ParsedTitle {
	if m := sleepTitleRe.FindStringSubmatch(title); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ParsedTitle{Kind: TitleSleep, Score: score}
		}
	}
	if m := workTitleRe.FindStringSubmatch(title); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ParsedTitle{Kind: TitleWork, Score: score}
		}
	}
	if m := caloriesFreeRe.FindStringSubmatch(title); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ParsedTitle{Kind: TitleCalories, Amount: amount}
		}
	}
	if m := moodTitleRe.FindStringSubmatch(title); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ParsedTitle{Kind: TitleMood, Score: score}
		}
	}
	return ParsedTitle{Kind: TitleUnrecognized}
}

// HasCaloriesPrefix reports whether a title starts with "calories",
// case-insensitively. Used by the legacy calorie formula, which stores
// the calorie count in the points field with no amount in the title.
func HasCaloriesPrefix(title string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(title)), "calories")
}
