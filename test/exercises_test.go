package test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/2beens/gymlog/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestExercises_ListAndSearch() {
	t := s.T()
	ctx := context.Background()

	var all catalog.ExercisesResponse
	s.getJSON(ctx, "/exercises", &all)
	assert.Equal(t, len(all.Exercises), all.Total)
	assert.GreaterOrEqual(t, all.Total, 98)

	var chest catalog.ExercisesResponse
	s.getJSON(ctx, "/exercises?group=pectoraux", &chest)
	require.NotEmpty(t, chest.Exercises)
	for _, ex := range chest.Exercises {
		assert.Equal(t, "Pectoraux", ex.Group)
	}

	var found catalog.ExercisesResponse
	s.getJSON(ctx, "/exercises?q=developpe%20couche", &found)
	require.NotEmpty(t, found.Exercises)
	assert.Equal(t, "ex_pecto_1", found.Exercises[0].ID)

	status, _ := s.doRequest(ctx, "GET", "/exercises?group=nope", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.doRequest(ctx, "GET", "/exercises/ex_missing_404", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestExercises_AddCustom() {
	t := s.T()
	ctx := context.Background()

	in := catalog.ExerciseInput{
		Name:    "Tirage landmine",
		GroupID: "dos",
	}
	status, body := s.doRequest(ctx, "POST", "/exercises", in)
	require.Equal(t, http.StatusCreated, status, string(body))

	var added catalog.Exercise
	require.NoError(t, json.Unmarshal(body, &added))
	require.NotEmpty(t, added.ID)

	var got catalog.Exercise
	s.getJSON(ctx, "/exercises/"+added.ID, &got)
	assert.Equal(t, added, got)

	// custom exercises can be logged like catalog ones
	entry := s.addEntry(ctx, s.newEntryRequest("2025-04-01", added.ID, 3, 12, 30))
	assert.Equal(t, "Tirage landmine", entry.ExerciseName)
}

func (s *IntegrationTestSuite) TestWorkouts_RateLimit() {
	t := s.T()
	ctx := context.Background()

	// the limiter counts per client IP, so a burst over the limit gets some 429s
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	raw, err := json.Marshal(s.newEntryRequest("2025-05-01", "ex_abdos_1", 1, 1, 0))
	require.NoError(t, err)
	for i := 0; i < writesPerMinute+20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := s.postStatus(ctx, "/workouts", raw)
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Greater(t, statuses[http.StatusTooManyRequests], 0, statuses)
}
