package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
)

// TrimLimits caps the lengths of the four history arrays during a
// quota-constrained save. Zero means "no limit" for that array.
type TrimLimits struct {
	Completions int
	GameHistory int
	Matchups    int
	WorkHistory int
}

// DefaultTrimLimits is the first trimming rung of the save ladder.
var DefaultTrimLimits = TrimLimits{
	Completions: 10000,
	GameHistory: 2500,
	Matchups:    2500,
	WorkHistory: 2500,
}

// emergencyCompletions is how much history the terminal save keeps.
const emergencyCompletions = 50

// saveAttempt is one rung of the declarative save ladder.
type saveAttempt struct {
	limits      *TrimLimits
	stripImages bool
	emergency   bool
}

// saveLadder returns the fixed attempt sequence: save as-is, trim to the
// caller's (or default) limits, six progressively smaller
// image-preserving limit sets, strip images, aggressive limits without
// images, four smaller fallbacks, then the emergency floor.
func saveLadder(first TrimLimits) []saveAttempt {
	attempts := []saveAttempt{
		{},
		{limits: &first},
	}
	for _, c := range []int{8000, 6000, 4000, 2000, 1000, 500} {
		attempts = append(attempts, saveAttempt{limits: scaledLimits(c)})
	}
	attempts = append(attempts,
		saveAttempt{limits: scaledLimits(500), stripImages: true},
		saveAttempt{limits: &TrimLimits{Completions: 2000, GameHistory: 1000, Matchups: 1000, WorkHistory: 1000}, stripImages: true},
	)
	for _, c := range []int{1000, 500, 250, 100} {
		attempts = append(attempts, saveAttempt{limits: scaledLimits(c), stripImages: true})
	}
	attempts = append(attempts, saveAttempt{stripImages: true, emergency: true})
	return attempts
}

// scaledLimits derives proportional limits from a completion cap, with
// the other arrays at a quarter of it.
func scaledLimits(completions int) *TrimLimits {
	quarter := completions / 4
	if quarter < 1 {
		quarter = 1
	}
	return &TrimLimits{
		Completions: completions,
		GameHistory: quarter,
		Matchups:    quarter,
		WorkHistory: quarter,
	}
}

// SaveOptions tune a single save call.
type SaveOptions struct {
	// Limits replaces DefaultTrimLimits for the first trimming rung.
	Limits *TrimLimits
	// Immediate bypasses write batching and flushes synchronously.
	Immediate bool
	// OverrideSticky lets an empty or default-looking incoming value
	// overwrite a protected field during a merge.
	OverrideSticky bool
}

// Service is the process-wide persistence singleton: it owns the KV
// document store, the image blob store and the debounced writer.
// Construct one at startup and inject it everywhere; Close flushes any
// pending write.
type Service struct {
	kv     KVStore
	blobs  BlobStore
	log    *slog.Logger
	writer *DebouncedWriter
}

// NewService wires a persistence service over the given stores. A nil
// logger disables logging; a non-positive debounce falls back to
// DefaultDebounceInterval.
func NewService(kv KVStore, blobs BlobStore, logger *slog.Logger, debounce time.Duration) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	s := &Service{kv: kv, blobs: blobs, log: logger}
	s.writer = NewDebouncedWriter(debounce, s.writeDocument, logger)
	return s
}

// Close flushes any pending write and releases the writer. The
// underlying stores are owned by the caller and stay open.
func (s *Service) Close() error {
	return s.writer.Close()
}

// Flush forces any pending debounced write to the store immediately.
// Call it on shutdown paths the same way the browser original flushed on
// page-hide.
func (s *Service) Flush() error {
	return s.writer.Flush()
}

// LoadState reads and normalizes the stored document. A missing document
// yields an empty state; a corrupt one is logged and treated as empty so
// load never fails on parse errors.
func (s *Service) LoadState() (engine.AppState, error) {
	raw, found, err := s.kv.Get(StateKey)
	if err != nil {
		return engine.NormalizeState(nil), fmt.Errorf("load state: %w", err)
	}
	if !found {
		return engine.NormalizeState(nil), nil
	}
	state, err := engine.DecodeState([]byte(raw))
	if err != nil {
		s.log.Warn("stored document is corrupt, starting empty", "key", StateKey, "err", err)
	}
	return state, nil
}

// SaveStateSnapshot persists a full document. Batched by default;
// Immediate flushes through the quota ladder synchronously and reports
// its error.
func (s *Service) SaveStateSnapshot(state engine.AppState, opts SaveOptions) error {
	normalized := engine.NormalizeState(&state)
	if opts.Immediate {
		return s.writeDocument(normalized, opts)
	}
	s.writer.Write(normalized, opts)
	return nil
}

// MergeAndSaveState merges an incoming partial document over the stored
// one and persists the result. Returns the merged document.
func (s *Service) MergeAndSaveState(incoming engine.AppState, opts SaveOptions) (engine.AppState, error) {
	existing, err := s.LoadState()
	if err != nil {
		return engine.AppState{}, err
	}
	merged := MergeState(existing, incoming, opts)
	if err := s.SaveStateSnapshot(merged, opts); err != nil {
		return engine.AppState{}, err
	}
	return merged, nil
}

// writeDocument runs the save ladder until an attempt fits. Only
// quota-class errors advance the ladder; anything else (store disabled,
// closed handle) propagates immediately since trimming cannot fix it.
func (s *Service) writeDocument(state engine.AppState, opts SaveOptions) error {
	first := DefaultTrimLimits
	if opts.Limits != nil {
		first = *opts.Limits
	}

	var lastErr error
	for i, attempt := range saveLadder(first) {
		candidate := applyAttempt(state, attempt)
		data, err := engine.EncodeState(&candidate)
		if err != nil {
			return err
		}
		err = s.kv.Set(StateKey, string(data))
		if err == nil {
			if i > 0 {
				s.log.Warn("saved with degraded document", "attempt", i, "bytes", len(data))
			}
			return nil
		}
		if !IsQuotaError(err) {
			return fmt.Errorf("save state: %w", err)
		}
		s.log.Debug("quota exceeded, trimming further", "attempt", i, "err", err)
		lastErr = err
	}
	// Even the emergency floor failed; nothing smaller is worth saving.
	return fmt.Errorf("save state: emergency save failed: %w", lastErr)
}

// applyAttempt produces the candidate document for one ladder rung
// without mutating the caller's state.
func applyAttempt(state engine.AppState, attempt saveAttempt) engine.AppState {
	out := engine.NormalizeState(&state)

	if attempt.emergency {
		out.Completions = recentCompletions(out.Completions, emergencyCompletions)
		out.GameHistory = []engine.GameEntry{}
		out.Matchups = []engine.Matchup{}
		out.WorkHistory = []engine.WorkEntry{}
		out.Schedule = []engine.ScheduleEntry{}
	} else if attempt.limits != nil {
		l := *attempt.limits
		out.Completions = recentCompletions(out.Completions, l.Completions)
		out.GameHistory = tail(out.GameHistory, l.GameHistory)
		out.Matchups = tail(out.Matchups, l.Matchups)
		out.WorkHistory = tail(out.WorkHistory, l.WorkHistory)
	}

	if attempt.stripImages {
		out.YouImageID = ""
		for i := range out.Players {
			out.Players[i].ImageID = ""
		}
	}

	return out
}

// recentCompletions keeps the n most recent completions by timestamp.
// Entries without a parseable timestamp sort first and are dropped
// before dated history.
func recentCompletions(comps []engine.Completion, n int) []engine.Completion {
	if n <= 0 || len(comps) <= n {
		return comps
	}
	sorted := make([]engine.Completion, len(comps))
	copy(sorted, comps)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, oki := engine.CompletionTime(sorted[i])
		tj, okj := engine.CompletionTime(sorted[j])
		if oki != okj {
			return !oki
		}
		return ti.Before(tj)
	})
	return sorted[len(sorted)-n:]
}

func tail[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// MergeState merges an incoming partial document into the existing one.
// Array fields are whole replacements when present (nil means absent,
// keep existing); nested maps deep-merge key-wise with incoming winning;
// sticky fields resist being wiped by empty-looking incoming values
// unless OverrideSticky is set.
func MergeState(existing, incoming engine.AppState, opts SaveOptions) engine.AppState {
	out := engine.NormalizeState(&existing)

	out.Tasks = mergeSlice(out.Tasks, incoming.Tasks)
	out.Completions = mergeSlice(out.Completions, incoming.Completions)
	out.Players = mergeSlice(out.Players, incoming.Players)
	out.Habits = mergeSlice(out.Habits, incoming.Habits)
	out.FlexActions = mergeSlice(out.FlexActions, incoming.FlexActions)
	out.GameHistory = mergeSlice(out.GameHistory, incoming.GameHistory)
	out.Matchups = mergeSlice(out.Matchups, incoming.Matchups)
	out.Schedule = mergeSlice(out.Schedule, incoming.Schedule)
	out.OpponentDripSchedules = mergeSlice(out.OpponentDripSchedules, incoming.OpponentDripSchedules)
	out.WorkHistory = mergeSlice(out.WorkHistory, incoming.WorkHistory)
	out.Projects = mergeSlice(out.Projects, incoming.Projects)

	// Sticky: an empty incoming image reference never wipes the stored one.
	if incoming.YouImageID != "" || opts.OverrideSticky {
		out.YouImageID = incoming.YouImageID
	}

	// Sticky: tag colors deep-merge; an empty incoming map is a no-op
	// unless explicitly overridden.
	if len(incoming.HabitTagColors) > 0 {
		merged := make(map[string]string, len(out.HabitTagColors)+len(incoming.HabitTagColors))
		for k, v := range out.HabitTagColors {
			merged[k] = v
		}
		for k, v := range incoming.HabitTagColors {
			merged[k] = v
		}
		out.HabitTagColors = merged
	} else if opts.OverrideSticky && incoming.HabitTagColors != nil {
		out.HabitTagColors = engine.NormalizeHabitTagColors(incoming.HabitTagColors)
	}

	out.ScoringSettings = mergeScoringSettings(out.ScoringSettings, incoming.ScoringSettings, opts.OverrideSticky)

	return engine.NormalizeState(&out)
}

// mergeScoringSettings guards the settings sticky key. An incoming value
// that is unset, or that looks like pure defaults while the existing
// settings carry customizations, is treated as "the caller never touched
// settings" and preserved. An explicit override distinguishes a genuine
// reset to defaults from a merely incomplete payload.
func mergeScoringSettings(existing, incoming engine.Settings, override bool) engine.Settings {
	if incoming.IsZero() {
		if override {
			return engine.DefaultSettings()
		}
		return existing
	}
	normalized := engine.NormalizeSettings(incoming)
	if normalized.IsDefault() && !existing.IsDefault() && !override {
		return existing
	}
	return normalized
}

func mergeSlice[T any](existing, incoming []T) []T {
	if incoming == nil {
		return existing
	}
	return incoming
}

// SaveImageBlob stores image bytes under a fresh generated id and
// returns the id for the document to reference.
func (s *Service) SaveImageBlob(ctx context.Context, data []byte, mime string) (string, error) {
	id := uuid.NewString()
	if err := s.blobs.PutBlob(ctx, Blob{ID: id, MIME: mime, Data: data}); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return id, nil
}

// GetImageBlob fetches image bytes by id.
func (s *Service) GetImageBlob(ctx context.Context, id string) (Blob, error) {
	return s.blobs.GetBlob(ctx, id)
}

// DeleteImageBlob removes image bytes by id. Missing blobs are not an
// error; the document's references are weak.
func (s *Service) DeleteImageBlob(ctx context.Context, id string) error {
	err := s.blobs.DeleteBlob(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// NewCompletionID returns a fresh completion id.
func NewCompletionID() string {
	return uuid.NewString()
}

// Now is the timestamp format completions are recorded with.
func Now() string {
	return time.Now().Format(time.RFC3339)
}
