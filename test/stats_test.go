package test

import (
	"context"
	"time"

	"github.com/2beens/gymlog/internal/dates"
	"github.com/2beens/gymlog/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestStats_Report() {
	t := s.T()
	ctx := context.Background()

	var before stats.Report
	s.getJSON(ctx, "/stats", &before)

	// two consecutive days ending today, in the server's calendar (UTC)
	today := dates.Today(time.Now(), time.UTC)
	yesterday, err := dates.AddDays(today, -1)
	require.NoError(t, err)

	s.addEntry(ctx, s.newEntryRequest(yesterday, "ex_pecto_1", 3, 10, 50))
	s.addEntry(ctx, s.newEntryRequest(today, "ex_pecto_1", 3, 10, 50))

	var after stats.Report
	s.getJSON(ctx, "/stats", &after)

	assert.InDelta(t, before.TotalVolume+3000, after.TotalVolume, 0.001)
	assert.GreaterOrEqual(t, after.CurrentStreak, 2)
	assert.GreaterOrEqual(t, after.BestStreak, 2)
	assert.Greater(t, after.AvgWorkoutsPerWeek, 0.0)
	require.NotEmpty(t, after.TopExercises)
	assert.Equal(t, 100.0, after.TopExercises[0].Percentage)

	total := 0.0
	for _, g := range after.MuscleGroupDistribution {
		assert.Greater(t, g.Percentage, 0.0)
		total += g.Percentage
	}
	assert.InDelta(t, 100, total, 0.01)

	// unchanged data, unchanged report
	var again stats.Report
	s.getJSON(ctx, "/stats", &again)
	assert.Equal(t, after, again)
}

func (s *IntegrationTestSuite) TestStats_Week() {
	t := s.T()
	ctx := context.Background()

	today := dates.Today(time.Now(), time.UTC)
	s.addEntry(ctx, s.newEntryRequest(today, "ex_dos_1", 4, 12, 20))

	var week stats.WeekReport
	s.getJSON(ctx, "/stats/week", &week)
	assert.Contains(t, week.Days, today)
	assert.GreaterOrEqual(t, week.WorkoutDays, 1)
	assert.GreaterOrEqual(t, week.Volume, 960.0)
	assert.LessOrEqual(t, week.WeekStart, today)
	assert.GreaterOrEqual(t, week.WeekEnd, today)
}
