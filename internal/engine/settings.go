package engine

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
)

// SleepTier awards Bonus points when a sleep score is at least Min.
// Tiers are kept sorted descending by Min so evaluation can stop at the
// first matching tier.
type SleepTier struct {
	Min   float64 `json:"min"`
	Bonus float64 `json:"bonus"`
}

type SleepSettings struct {
	BaseDivisor      float64     `json:"baseDivisor"`
	BaseMultiplier   float64     `json:"baseMultiplier"`
	BaseOffset       float64     `json:"baseOffset"`
	RestedMultiplier float64     `json:"restedMultiplier"`
	Tiers            []SleepTier `json:"tiers"`
}

// WorkSettings controls the work formula. HoursMax nil means unbounded.
type WorkSettings struct {
	BaseMultiplier  float64  `json:"baseMultiplier"`
	BaseOffset      float64  `json:"baseOffset"`
	HoursMultiplier float64  `json:"hoursMultiplier"`
	HoursOffset     float64  `json:"hoursOffset"`
	HoursMin        float64  `json:"hoursMin"`
	HoursMax        *float64 `json:"hoursMax,omitempty"`
}

type CalorieSettings struct {
	Target       float64 `json:"target"`
	PointsPer100 float64 `json:"pointsPer100"`
	MinPoints    float64 `json:"minPoints"`
	MaxPoints    float64 `json:"maxPoints"`
}

// MoodSettings controls the mood formula. Nil bounds leave it unclamped.
type MoodSettings struct {
	Multiplier float64  `json:"multiplier"`
	Offset     float64  `json:"offset"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
}

type InertiaSettings struct {
	WindowDays int     `json:"windowDays"`
	Multiplier float64 `json:"multiplier"`
}

// Settings holds every user-configurable scoring coefficient, one
// sub-object per formula family.
type Settings struct {
	Sleep    SleepSettings   `json:"sleep"`
	Work     WorkSettings    `json:"work"`
	Calories CalorieSettings `json:"calories"`
	Mood     MoodSettings    `json:"mood"`
	Inertia  InertiaSettings `json:"inertia"`
}

// DefaultSettings returns the documented default coefficients.
func DefaultSettings() Settings {
	return Settings{
		Sleep: SleepSettings{
			BaseDivisor:      10,
			BaseMultiplier:   1,
			BaseOffset:       0,
			RestedMultiplier: 1,
			Tiers: []SleepTier{
				{Min: 100, Bonus: 3},
				{Min: 98, Bonus: 2},
				{Min: 95, Bonus: 1},
			},
		},
		Work: WorkSettings{
			BaseMultiplier:  1,
			BaseOffset:      0,
			HoursMultiplier: 10,
			HoursOffset:     0,
			HoursMin:        0,
			HoursMax:        nil,
		},
		Calories: CalorieSettings{
			Target:       2400,
			PointsPer100: 1,
			MinPoints:    0,
			MaxPoints:    10,
		},
		Mood: MoodSettings{
			Multiplier: 1,
			Offset:     0,
		},
		Inertia: InertiaSettings{
			WindowDays: 7,
			Multiplier: 0.25,
		},
	}
}

// IsZero reports whether s is the uninitialized zero value (as opposed to
// a deliberately configured all-zeros document, which cannot be produced
// by UnmarshalJSON).
func (s Settings) IsZero() bool {
	return reflect.DeepEqual(s, Settings{})
}

// Equal reports structural equality.
func (s Settings) Equal(o Settings) bool {
	return reflect.DeepEqual(s, o)
}

// IsDefault reports whether s is structurally equal to DefaultSettings.
func (s Settings) IsDefault() bool {
	return s.Equal(DefaultSettings())
}

// NormalizeSettings returns a fully-populated settings value. The zero
// value becomes the defaults; otherwise every numeric field is kept only
// if finite, tiers are filtered and re-sorted, and the inertia window is
// forced positive. Idempotent.
func NormalizeSettings(s Settings) Settings {
	if s.IsZero() {
		return DefaultSettings()
	}
	def := DefaultSettings()

	s.Sleep.BaseDivisor = finiteOr(s.Sleep.BaseDivisor, def.Sleep.BaseDivisor)
	if s.Sleep.BaseDivisor == 0 {
		// A zero divisor would blow the formula up; fall back.
		s.Sleep.BaseDivisor = def.Sleep.BaseDivisor
	}
	s.Sleep.BaseMultiplier = finiteOr(s.Sleep.BaseMultiplier, def.Sleep.BaseMultiplier)
	s.Sleep.BaseOffset = finiteOr(s.Sleep.BaseOffset, def.Sleep.BaseOffset)
	s.Sleep.RestedMultiplier = finiteOr(s.Sleep.RestedMultiplier, def.Sleep.RestedMultiplier)
	s.Sleep.Tiers = normalizeTiers(s.Sleep.Tiers, def.Sleep.Tiers)

	s.Work.BaseMultiplier = finiteOr(s.Work.BaseMultiplier, def.Work.BaseMultiplier)
	s.Work.BaseOffset = finiteOr(s.Work.BaseOffset, def.Work.BaseOffset)
	s.Work.HoursMultiplier = finiteOr(s.Work.HoursMultiplier, def.Work.HoursMultiplier)
	s.Work.HoursOffset = finiteOr(s.Work.HoursOffset, def.Work.HoursOffset)
	s.Work.HoursMin = finiteOr(s.Work.HoursMin, def.Work.HoursMin)
	s.Work.HoursMax = finitePtr(s.Work.HoursMax)

	s.Calories.Target = finiteOr(s.Calories.Target, def.Calories.Target)
	s.Calories.PointsPer100 = finiteOr(s.Calories.PointsPer100, def.Calories.PointsPer100)
	s.Calories.MinPoints = finiteOr(s.Calories.MinPoints, def.Calories.MinPoints)
	s.Calories.MaxPoints = finiteOr(s.Calories.MaxPoints, def.Calories.MaxPoints)

	s.Mood.Multiplier = finiteOr(s.Mood.Multiplier, def.Mood.Multiplier)
	s.Mood.Offset = finiteOr(s.Mood.Offset, def.Mood.Offset)
	s.Mood.Min = finitePtr(s.Mood.Min)
	s.Mood.Max = finitePtr(s.Mood.Max)

	if s.Inertia.WindowDays <= 0 {
		s.Inertia.WindowDays = def.Inertia.WindowDays
	}
	s.Inertia.Multiplier = finiteOr(s.Inertia.Multiplier, def.Inertia.Multiplier)

	return s
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func finitePtr(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func normalizeTiers(tiers, def []SleepTier) []SleepTier {
	out := make([]SleepTier, 0, len(tiers))
	for _, t := range tiers {
		if math.IsNaN(t.Min) || math.IsInf(t.Min, 0) || math.IsNaN(t.Bonus) || math.IsInf(t.Bonus, 0) {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		out = append(out, def...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min > out[j].Min })
	return out
}

// UnmarshalJSON decodes each formula family independently so a malformed
// family degrades to its defaults instead of poisoning the whole
// document. Absent numeric fields take their defaults (finite-or-default).
func (s *Settings) UnmarshalJSON(data []byte) error {
	*s = DefaultSettings()
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if b, ok := raw["sleep"]; ok {
		s.Sleep = decodeSleep(b, s.Sleep)
	}
	if b, ok := raw["work"]; ok {
		s.Work = decodeWork(b, s.Work)
	}
	if b, ok := raw["calories"]; ok {
		s.Calories = decodeCalories(b, s.Calories)
	}
	if b, ok := raw["mood"]; ok {
		s.Mood = decodeMood(b, s.Mood)
	}
	if b, ok := raw["inertia"]; ok {
		s.Inertia = decodeInertia(b, s.Inertia)
	}
	*s = NormalizeSettings(*s)
	return nil
}

func decodeSleep(data []byte, def SleepSettings) SleepSettings {
	var raw struct {
		BaseDivisor      *float64          `json:"baseDivisor"`
		BaseMultiplier   *float64          `json:"baseMultiplier"`
		BaseOffset       *float64          `json:"baseOffset"`
		RestedMultiplier *float64          `json:"restedMultiplier"`
		Tiers            []json.RawMessage `json:"tiers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return def
	}
	out := def
	out.BaseDivisor = overlay(raw.BaseDivisor, def.BaseDivisor)
	out.BaseMultiplier = overlay(raw.BaseMultiplier, def.BaseMultiplier)
	out.BaseOffset = overlay(raw.BaseOffset, def.BaseOffset)
	out.RestedMultiplier = overlay(raw.RestedMultiplier, def.RestedMultiplier)
	if raw.Tiers != nil {
		tiers := make([]SleepTier, 0, len(raw.Tiers))
		for _, tb := range raw.Tiers {
			var t struct {
				Min   *float64 `json:"min"`
				Bonus *float64 `json:"bonus"`
			}
			if err := json.Unmarshal(tb, &t); err != nil || t.Min == nil || t.Bonus == nil {
				continue
			}
			tiers = append(tiers, SleepTier{Min: *t.Min, Bonus: *t.Bonus})
		}
		out.Tiers = tiers
	}
	return out
}

func decodeWork(data []byte, def WorkSettings) WorkSettings {
	var raw struct {
		BaseMultiplier  *float64 `json:"baseMultiplier"`
		BaseOffset      *float64 `json:"baseOffset"`
		HoursMultiplier *float64 `json:"hoursMultiplier"`
		HoursOffset     *float64 `json:"hoursOffset"`
		HoursMin        *float64 `json:"hoursMin"`
		HoursMax        *float64 `json:"hoursMax"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return def
	}
	out := def
	out.BaseMultiplier = overlay(raw.BaseMultiplier, def.BaseMultiplier)
	out.BaseOffset = overlay(raw.BaseOffset, def.BaseOffset)
	out.HoursMultiplier = overlay(raw.HoursMultiplier, def.HoursMultiplier)
	out.HoursOffset = overlay(raw.HoursOffset, def.HoursOffset)
	out.HoursMin = overlay(raw.HoursMin, def.HoursMin)
	out.HoursMax = raw.HoursMax
	return out
}

func decodeCalories(data []byte, def CalorieSettings) CalorieSettings {
	var raw struct {
		Target       *float64 `json:"target"`
		PointsPer100 *float64 `json:"pointsPer100"`
		MinPoints    *float64 `json:"minPoints"`
		MaxPoints    *float64 `json:"maxPoints"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return def
	}
	out := def
	out.Target = overlay(raw.Target, def.Target)
	out.PointsPer100 = overlay(raw.PointsPer100, def.PointsPer100)
	out.MinPoints = overlay(raw.MinPoints, def.MinPoints)
	out.MaxPoints = overlay(raw.MaxPoints, def.MaxPoints)
	return out
}

func decodeMood(data []byte, def MoodSettings) MoodSettings {
	var raw struct {
		Multiplier *float64 `json:"multiplier"`
		Offset     *float64 `json:"offset"`
		Min        *float64 `json:"min"`
		Max        *float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return def
	}
	out := def
	out.Multiplier = overlay(raw.Multiplier, def.Multiplier)
	out.Offset = overlay(raw.Offset, def.Offset)
	out.Min = raw.Min
	out.Max = raw.Max
	return out
}

func decodeInertia(data []byte, def InertiaSettings) InertiaSettings {
	var raw struct {
		WindowDays *int     `json:"windowDays"`
		Multiplier *float64 `json:"multiplier"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return def
	}
	out := def
	if raw.WindowDays != nil && *raw.WindowDays > 0 {
		out.WindowDays = *raw.WindowDays
	}
	out.Multiplier = overlay(raw.Multiplier, def.Multiplier)
	return out
}

func overlay(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

// SettingsSource is the explicit three-variant input accepted everywhere
// a formula needs coefficients: a Settings value, a document that carries
// one, or nil for pure defaults.
type SettingsSource interface {
	scoringSettings() (Settings, bool)
}

func (s Settings) scoringSettings() (Settings, bool) { return s, true }

func (st *AppState) scoringSettings() (Settings, bool) {
	if st == nil {
		return Settings{}, false
	}
	return st.ScoringSettings, true
}

// ResolveSettings resolves a SettingsSource to normalized settings,
// falling back to defaults when the source is nil or empty.
func ResolveSettings(src SettingsSource) Settings {
	if src == nil {
		return DefaultSettings()
	}
	s, ok := src.scoringSettings()
	if !ok {
		return DefaultSettings()
	}
	return NormalizeSettings(s)
}
