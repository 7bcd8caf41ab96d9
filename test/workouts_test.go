package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/gymlog/internal/workouts"
	"github.com/2beens/gymlog/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) newEntryRequest(date, exerciseID string, sets, reps int, weight float64) workouts.AddEntryRequest {
	weighted := weight > 0
	return workouts.AddEntryRequest{
		EntryInput: workouts.EntryInput{
			Date:       date,
			ExerciseID: exerciseID,
			Sets:       sets,
			Reps:       reps,
			Weight:     weight,
		},
		Weighted: &weighted,
	}
}

func (s *IntegrationTestSuite) addEntry(ctx context.Context, req workouts.AddEntryRequest) workouts.Entry {
	status, body := s.doRequest(ctx, "POST", "/workouts", req)
	require.Equal(s.T(), http.StatusCreated, status, string(body))

	var entry workouts.Entry
	require.NoError(s.T(), json.Unmarshal(body, &entry))
	return entry
}

func (s *IntegrationTestSuite) TestWorkouts_AddAndGetByDate() {
	t := s.T()
	ctx := context.Background()
	date := "2025-02-03"

	first := s.addEntry(ctx, s.newEntryRequest(date, "ex_pecto_1", 3, 10, 50))
	second := s.addEntry(ctx, s.newEntryRequest(date, "ex_pecto_1", 4, 8, 0))
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, date, first.Date)
	// name comes from the catalog when the request leaves it empty
	assert.Equal(t, "Développé couché", first.ExerciseName)

	var resp workouts.DayEntriesResponse
	s.getJSON(ctx, "/workouts/date/"+date, &resp)
	assert.Equal(t, date, resp.Date)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 2, resp.Summary.ExerciseCount)
	assert.Equal(t, 7, resp.Summary.TotalSets)
	assert.Equal(t, 62, resp.Summary.TotalReps)
	assert.Equal(t, 1500.0, resp.Summary.TotalVolume)

	var other workouts.DayEntriesResponse
	s.getJSON(ctx, "/workouts/date/2025-02-04", &other)
	assert.Empty(t, other.Entries)

	// the day is persisted as one row holding the whole day
	var raw []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM gymlog_kv WHERE key = $1;`, workouts.DayKeyPrefix+date,
	).Scan(&raw)
	require.NoError(t, err)

	var stored []workouts.Entry
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, first.ID, stored[0].ID)
	assert.Equal(t, second.ID, stored[1].ID)
}

func (s *IntegrationTestSuite) TestWorkouts_AddInvalid() {
	t := s.T()
	ctx := context.Background()

	status, body := s.doRequest(ctx, "POST", "/workouts", s.newEntryRequest("2025-02-10", "ex_pecto_1", 0, 10, 50))
	require.Equal(t, http.StatusBadRequest, status)
	var errResp pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, workouts.MsgInvalidSets, errResp.Error)

	status, body = s.doRequest(ctx, "POST", "/workouts", s.newEntryRequest("2025-02-10", "", 3, 10, 50))
	require.Equal(t, http.StatusBadRequest, status)
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, workouts.MsgNoExercise, errResp.Error)

	// nothing was written
	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM gymlog_kv WHERE key = $1;`, workouts.DayKeyPrefix+"2025-02-10",
	).Scan(&count))
	assert.Zero(t, count)

	status, _ = s.doRequest(ctx, "GET", "/workouts/date/03-02-2025", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func (s *IntegrationTestSuite) TestWorkouts_ListAndExport() {
	t := s.T()
	ctx := context.Background()

	added := s.addEntry(ctx, s.newEntryRequest("2025-03-01", "ex_dos_1", 5, 5, 100))

	var list workouts.EntriesResponse
	s.getJSON(ctx, "/workouts", &list)
	assert.False(t, list.Partial)
	assert.Contains(t, list.Entries, added)

	var export workouts.Export
	s.getJSON(ctx, "/workouts/export", &export)
	assert.Equal(t, workouts.CurrentSchemaVersion, export.SchemaVersion)
	assert.Contains(t, export.Entries, added)
}
