package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/2beens/gymlog/internal/dates"
	"github.com/2beens/gymlog/internal/kvstore"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// NameResolver returns the display name of a catalog or custom exercise.
type NameResolver func(ctx context.Context, exerciseID string) (string, bool)

// Store is the append-only workout log. Entries live under one key per
// calendar day (workout_<YYYY-MM-DD>) as a JSON array in insertion order.
type Store struct {
	kv             kvstore.Store
	metricsManager *metrics.Manager
	nameOf         NameResolver
	now            func() time.Time
	newID          func() (string, error)

	// serializes read-modify-write of day keys
	mutex sync.Mutex
}

type StoreOption func(*Store)

func WithMetrics(m *metrics.Manager) StoreOption {
	return func(s *Store) {
		s.metricsManager = m
	}
}

// WithExerciseNames fills in ExerciseName on added entries that lack one.
func WithExerciseNames(nameOf NameResolver) StoreOption {
	return func(s *Store) {
		s.nameOf = nameOf
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func WithIDGenerator(newID func() (string, error)) StoreOption {
	return func(s *Store) {
		s.newID = newID
	}
}

func NewStore(kv kvstore.Store, opts ...StoreOption) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: newEntryID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newEntryID returns a time-ordered UUIDv7; ids stay unique and sortable
// even when several entries are added within the same millisecond.
func newEntryID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func dayKey(date string) string {
	return DayKeyPrefix + dates.Normalize(date)
}

func (s *Store) AddEntry(ctx context.Context, in EntryInput) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("date", in.Date),
		attribute.String("exercise.id", in.ExerciseID),
	)

	if err := validateStructure(in); err != nil {
		return nil, err
	}

	if in.ExerciseName == "" && s.nameOf != nil {
		if name, ok := s.nameOf(ctx, in.ExerciseID); ok {
			in.ExerciseName = name
		}
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate entry id: %w", err)
	}

	entry := Entry{
		ID:           id,
		Date:         in.Date,
		ExerciseID:   in.ExerciseID,
		ExerciseName: in.ExerciseName,
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       in.Weight,
		Notes:        in.Notes,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := dayKey(in.Date)
	dayEntries, err := s.readDay(ctx, key)
	if err != nil {
		// never overwrite a day we cannot read
		return nil, err
	}

	dayEntries = append(dayEntries, entry)
	if err := s.writeDay(ctx, key, dayEntries); err != nil {
		return nil, err
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterEntriesAdded.Inc()
	}
	span.SetAttributes(attribute.String("entry.id", entry.ID))
	log.Debugf("workout entry added: [%s] [%s] %dx%d @ %.1f", entry.Date, entry.ExerciseID, entry.Sets, entry.Reps, entry.Weight)

	return &entry, nil
}

// EntriesByDate returns the entries whose date equals date byte for byte.
// A day without entries yields an empty slice and no error.
func (s *Store) EntriesByDate(ctx context.Context, date string) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.by_date")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date))

	dayEntries, err := s.readDay(ctx, dayKey(date))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dayEntries))
	for _, e := range dayEntries {
		if e.Date == date {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// AllEntries returns every logged entry, days ascending, each day in insertion order.
// When some day keys hold undecodable data, the readable entries are returned
// together with a *CorruptDataError naming the bad keys.
func (s *Store) AllEntries(ctx context.Context) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	keys, err := s.kv.Keys(ctx, DayKeyPrefix)
	if err != nil {
		s.countReadFailure("backend")
		return nil, fmt.Errorf("list day keys: %w", err)
	}
	span.SetAttributes(attribute.Int("days", len(keys)))

	entries := make([]Entry, 0, len(keys))
	var corrupt *CorruptDataError
	for _, key := range keys {
		dayEntries, err := s.readDay(ctx, key)
		if err != nil {
			var cdErr *CorruptDataError
			if !errors.As(err, &cdErr) {
				return nil, err
			}
			if corrupt == nil {
				corrupt = &CorruptDataError{}
			}
			corrupt.Keys = append(corrupt.Keys, cdErr.Keys...)
			corrupt.Err = multierr.Append(corrupt.Err, cdErr.Err)
			continue
		}
		entries = append(entries, dayEntries...)
	}

	if corrupt != nil {
		return entries, corrupt
	}

	return entries, nil
}

func (s *Store) Export(ctx context.Context) (*Export, error) {
	entries, err := s.AllEntries(ctx)
	if entries == nil {
		return nil, err
	}
	return &Export{
		SchemaVersion: CurrentSchemaVersion,
		ExportedAt:    s.now().UTC(),
		Entries:       entries,
	}, err
}

// Migrate moves entries from the legacy single-collection key into per-day keys
// and records the schema version. Running it again is a no-op.
func (s *Store) Migrate(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.migrate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err = s.kv.Get(ctx, SchemaVersionKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return fmt.Errorf("read schema version: %w", err)
	}

	legacyRaw, err := s.kv.Get(ctx, LegacyCollectionKey)
	switch {
	case errors.Is(err, kvstore.ErrKeyNotFound):
		legacyRaw = nil
	case err != nil:
		return fmt.Errorf("read legacy collection: %w", err)
	}

	if legacyRaw != nil {
		var legacy []Entry
		if err := json.Unmarshal(legacyRaw, &legacy); err != nil {
			return &CorruptDataError{Keys: []string{LegacyCollectionKey}, Err: err}
		}
		if err := s.importLegacy(ctx, legacy); err != nil {
			return err
		}
		log.Infof("migrated %d legacy workout entries", len(legacy))
	}

	if err := s.kv.Set(ctx, SchemaVersionKey, []byte(strconv.Itoa(CurrentSchemaVersion))); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	return nil
}

func (s *Store) importLegacy(ctx context.Context, legacy []Entry) error {
	byDay := make(map[string][]Entry)
	var order []string
	for _, e := range legacy {
		if !dates.IsDayKey(dates.Normalize(e.Date)) {
			log.Warnf("migrate: skipping legacy entry [%s] with invalid date [%s]", e.ID, e.Date)
			continue
		}
		if e.ID == "" {
			id, err := s.newID()
			if err != nil {
				return fmt.Errorf("generate entry id: %w", err)
			}
			e.ID = id
		}
		key := dayKey(e.Date)
		if _, ok := byDay[key]; !ok {
			order = append(order, key)
		}
		byDay[key] = append(byDay[key], e)
	}

	for _, key := range order {
		existing, err := s.readDay(ctx, key)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, e := range existing {
			seen[e.ID] = true
		}
		for _, e := range byDay[key] {
			if !seen[e.ID] {
				existing = append(existing, e)
				seen[e.ID] = true
			}
		}
		if err := s.writeDay(ctx, key, existing); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) readDay(ctx context.Context, key string) ([]Entry, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []Entry{}, nil
		}
		s.countReadFailure("backend")
		log.Errorf("read day entries [%s]: %s", key, err)
		return nil, fmt.Errorf("read [%s]: %w", key, err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.countReadFailure("corrupt")
		log.Errorf("decode day entries [%s]: %s", key, err)
		return nil, &CorruptDataError{Keys: []string{key}, Err: err}
	}
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

func (s *Store) writeDay(ctx context.Context, key string, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal day entries: %w", err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		log.Errorf("write day entries [%s]: %s", key, err)
		return fmt.Errorf("write [%s]: %w", key, err)
	}
	return nil
}

func (s *Store) countReadFailure(kind string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterStorageReadFailures.WithLabelValues(kind).Inc()
	}
}
