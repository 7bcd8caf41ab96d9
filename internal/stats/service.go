package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/catalog"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type entrySource interface {
	AllEntries(ctx context.Context) ([]workouts.Entry, error)
}

type catalogSource interface {
	View(ctx context.Context) (*catalog.Catalog, error)
}

type Report struct {
	Snapshot
	// computed over the readable days only
	Partial bool `json:"partial"`
	// display info for the groups in MuscleGroupDistribution
	Groups []catalog.MuscleGroup `json:"groups"`
}

type Service struct {
	entries        entrySource
	catalog        catalogSource
	location       *time.Location
	now            func() time.Time
	metricsManager *metrics.Manager
}

func NewService(
	entries entrySource,
	catalog catalogSource,
	location *time.Location,
	metricsManager *metrics.Manager,
) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		entries:        entries,
		catalog:        catalog,
		location:       location,
		now:            time.Now,
		metricsManager: metricsManager,
	}
}

// SetClock is used by tests to pin "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() time.Time {
	return s.now().In(s.location)
}

// loadEntries returns the entry log; partial is set when some days were unreadable.
// A total read failure is returned as an error, never as an empty log.
func (s *Service) loadEntries(ctx context.Context) (_ []workouts.Entry, partial bool, err error) {
	entries, err := s.entries.AllEntries(ctx)
	if err != nil {
		if errors.Is(err, workouts.ErrCorruptData) && entries != nil {
			log.Warnf("stats over readable days only: %s", err)
			return entries, true, nil
		}
		return nil, false, fmt.Errorf("load entries: %w", err)
	}
	return entries, false, nil
}

func (s *Service) Report(ctx context.Context) (_ *Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.report")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	begin := time.Now()
	defer func() {
		if s.metricsManager != nil && err == nil {
			s.metricsManager.HistStatsComputeDuration.Observe(time.Since(begin).Seconds())
		}
	}()

	entries, partial, err := s.loadEntries(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.catalog.View(ctx)
	if err != nil {
		log.Errorf("stats: custom exercises unavailable, using static catalog: %s", err)
	}

	var groupOf GroupLookup
	if c != nil {
		groupOf = c.LookupGroup
	}

	snapshot := Compute(entries, groupOf, s.today())
	span.SetAttributes(
		attribute.Int("entries", len(entries)),
		attribute.Bool("partial", partial),
	)

	groups := make([]catalog.MuscleGroup, 0, len(snapshot.MuscleGroupDistribution))
	if c != nil {
		for _, mg := range snapshot.MuscleGroupDistribution {
			if g, ok := c.Group(mg.GroupID); ok {
				groups = append(groups, g)
			}
		}
	}

	return &Report{
		Snapshot: snapshot,
		Partial:  partial,
		Groups:   groups,
	}, nil
}

type WeekReport struct {
	WeekSummary
	Partial bool `json:"partial"`
}

func (s *Service) Week(ctx context.Context) (_ *WeekReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.week")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entries, partial, err := s.loadEntries(ctx)
	if err != nil {
		return nil, err
	}

	return &WeekReport{
		WeekSummary: SummarizeWeek(entries, s.today()),
		Partial:     partial,
	}, nil
}
