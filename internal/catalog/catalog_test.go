package catalog_test

import (
	"strings"
	"testing"

	"github.com/2beens/gymlog/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustLoad(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	c := mustLoad(t)

	groups := c.Groups()
	require.Len(t, groups, 10)
	assert.Equal(t, "epaules", groups[0].ID)
	assert.Equal(t, "Épaules", groups[0].Name)

	assert.Len(t, c.Exercises(), 98)

	sizes := c.GroupSizes()
	assert.Equal(t, 10, sizes["pectoraux"])
	assert.Equal(t, 14, sizes["epaules"])
	total := 0
	for _, n := range sizes {
		total += n
	}
	assert.Equal(t, 98, total)
}

func TestCatalog_Lookups(t *testing.T) {
	c := mustLoad(t)

	ex, ok := c.Exercise("ex_pecto_1")
	require.True(t, ok)
	assert.Equal(t, "Développé couché", ex.Name)
	assert.Equal(t, "Pectoraux", ex.Group)
	assert.Equal(t, "barre", ex.Equipment)
	assert.NotEmpty(t, ex.InfoURL)

	name, ok := c.ExerciseName("ex_dos_1")
	require.True(t, ok)
	assert.Equal(t, "Tractions", name)

	groupID, ok := c.LookupGroup("ex_pecto_1")
	require.True(t, ok)
	assert.Equal(t, "pectoraux", groupID)

	groupID, ok = c.LookupGroup("ex_ischios_1")
	require.True(t, ok)
	assert.Equal(t, "ischios", groupID)

	_, ok = c.LookupGroup("ex_removed_42")
	assert.False(t, ok)

	g, ok := c.Group("mollets")
	require.True(t, ok)
	assert.Equal(t, "#FDCB6E", g.Color)

	_, ok = c.Group("neck")
	assert.False(t, ok)
}

func TestCatalog_ByGroup(t *testing.T) {
	c := mustLoad(t)

	biceps := c.ByGroup("biceps")
	require.Len(t, biceps, 8)
	for _, ex := range biceps {
		assert.Equal(t, "Biceps", ex.Group)
	}

	unknown := c.ByGroup("neck")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestCatalog_Search(t *testing.T) {
	c := mustLoad(t)

	results := c.Search("developpe", "")
	require.NotEmpty(t, results)
	for _, ex := range results {
		assert.True(t, strings.HasPrefix(ex.Name, "Développé"), ex.Name)
	}

	results = c.Search("DÉVELOPPÉ COUCHÉ", "pectoraux")
	require.NotEmpty(t, results)
	assert.Equal(t, "ex_pecto_1", results[0].ID)

	results = c.Search("soulevé de terre", "")
	ids := make([]string, 0, len(results))
	for _, ex := range results {
		ids = append(ids, ex.ID)
	}
	assert.Contains(t, ids, "ex_dos_2")
	assert.Contains(t, ids, "ex_ischios_1")

	// prefix matches come first
	results = c.Search("squat", "")
	require.NotEmpty(t, results)
	assert.Equal(t, "ex_quadri_1", results[0].ID)

	assert.Empty(t, c.Search("zumba", ""))
	assert.Len(t, c.Search("  ", "triceps"), 8)
}

func TestCatalog_WithCustom(t *testing.T) {
	c := mustLoad(t)

	view := c.WithCustom([]catalog.Exercise{
		{ID: "custom_1", Name: "Rowing landmine", Group: "Dos", Category: "strength"},
		{ID: "ex_pecto_1", Name: "Shadowed", Group: "Dos", Category: "strength"},
		{ID: "custom_2", Name: "Neck curl", Group: "Cou", Category: "strength"},
	})

	groupID, ok := view.LookupGroup("custom_1")
	require.True(t, ok)
	assert.Equal(t, "dos", groupID)

	ex, ok := view.Exercise("custom_1")
	require.True(t, ok)
	assert.True(t, ex.Custom)

	ex, ok = view.Exercise("ex_pecto_1")
	require.True(t, ok)
	assert.Equal(t, "Développé couché", ex.Name)

	_, ok = view.Exercise("custom_2")
	assert.False(t, ok)

	assert.Len(t, view.Exercises(), 99)
	assert.Equal(t, 11, view.GroupSizes()["dos"])

	// the base catalog is untouched
	_, ok = c.Exercise("custom_1")
	assert.False(t, ok)
	assert.Len(t, c.Exercises(), 98)
}

func TestParse_Errors(t *testing.T) {
	_, err := catalog.Parse([]byte(`{`))
	require.Error(t, err)

	_, err = catalog.Parse([]byte(`{"muscleGroups":[{"id":"dos","name":"Dos"}],"exercises":[{"id":"a","name":"A","group":"Cou"}]}`))
	require.ErrorIs(t, err, catalog.ErrUnknownMuscleGroup)

	_, err = catalog.Parse([]byte(`{"muscleGroups":[{"id":"dos","name":"Dos"}],"exercises":[{"id":"a","name":"A","group":"Dos"},{"id":"a","name":"B","group":"Dos"}]}`))
	require.Error(t, err)
}
