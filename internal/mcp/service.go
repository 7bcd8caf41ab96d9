package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/catalog"
	"github.com/2beens/gymlog/internal/dates"
	"github.com/2beens/gymlog/internal/stats"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/workouts"

	log "github.com/sirupsen/logrus"
)

// statsReporter provides the computed statistics (for dependency injection and testing).
type statsReporter interface {
	Report(ctx context.Context) (*stats.Report, error)
	Week(ctx context.Context) (*stats.WeekReport, error)
}

// entryReader provides the entries of a single day.
type entryReader interface {
	EntriesByDate(ctx context.Context, date string) ([]workouts.Entry, error)
}

// catalogViewer provides the exercise catalog including custom exercises.
type catalogViewer interface {
	View(ctx context.Context) (*catalog.Catalog, error)
}

// contextService provides workout log context data (stats, entries, exercises).
// Used by Handler for testability.
type contextService interface {
	WorkoutStats(ctx context.Context) (*stats.Report, error)
	EntriesForDate(ctx context.Context, date string) (*workouts.DayEntriesResponse, error)
	WeekSummary(ctx context.Context) (*stats.WeekReport, error)
	ListExercises(ctx context.Context, groupID, query string) ([]catalog.Exercise, error)
}

// ContextService holds dependencies and implements the workout log context logic.
type ContextService struct {
	stats   statsReporter
	entries entryReader
	catalog catalogViewer
}

// NewContextService builds a ContextService with the given dependencies.
func NewContextService(statsReporter statsReporter, entries entryReader, catalogView catalogViewer) *ContextService {
	return &ContextService{
		stats:   statsReporter,
		entries: entries,
		catalog: catalogView,
	}
}

func (s *ContextService) WorkoutStats(ctx context.Context) (*stats.Report, error) {
	return s.stats.Report(ctx)
}

func (s *ContextService) WeekSummary(ctx context.Context) (*stats.WeekReport, error) {
	return s.stats.Week(ctx)
}

// EntriesForDate returns the entries logged on date (YYYY-MM-DD) with the day summary.
func (s *ContextService) EntriesForDate(ctx context.Context, date string) (_ *workouts.DayEntriesResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mcp.entries_for_date")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !dates.IsDayKey(date) {
		return nil, fmt.Errorf("%w [%s]", dates.ErrInvalidDayKey, date)
	}

	entries, err := s.entries.EntriesByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return &workouts.DayEntriesResponse{
		Date:    date,
		Entries: entries,
		Summary: workouts.SummarizeDay(entries),
	}, nil
}

// ListExercises searches the catalog. Empty groupID and query list everything.
func (s *ContextService) ListExercises(ctx context.Context, groupID, query string) ([]catalog.Exercise, error) {
	c, err := s.catalog.View(ctx)
	if err != nil {
		if c == nil {
			return nil, err
		}
		log.Warnf("mcp: custom exercises unavailable: %s", err)
	}

	if groupID != "" {
		if _, ok := c.Group(groupID); !ok {
			return nil, fmt.Errorf("%w [%s]", catalog.ErrUnknownMuscleGroup, groupID)
		}
	}

	return c.Search(query, groupID), nil
}

// IsInputError reports whether err was caused by bad tool arguments rather than storage.
func IsInputError(err error) bool {
	return errors.Is(err, dates.ErrInvalidDayKey) || errors.Is(err, catalog.ErrUnknownMuscleGroup)
}
