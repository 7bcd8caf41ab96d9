// Package catalog is the static exercise library (muscle groups and exercises)
// plus the user's custom exercises.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed exercises.json
var exercisesJSON []byte

var (
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrUnknownMuscleGroup = errors.New("unknown muscle group")
)

type MuscleGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type Exercise struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// display name of the muscle group, e.g. "Pectoraux"
	Group     string `json:"group"`
	Category  string `json:"category"`
	Equipment string `json:"equipment,omitempty"`
	InfoURL   string `json:"infoUrl,omitempty"`
	Custom    bool   `json:"custom,omitempty"`
}

type catalogFile struct {
	MuscleGroups []MuscleGroup `json:"muscleGroups"`
	Exercises    []Exercise    `json:"exercises"`
}

type Catalog struct {
	groups        []MuscleGroup
	groupByID     map[string]MuscleGroup
	groupIDByName map[string]string
	exercises     []Exercise
	exerciseByID  map[string]Exercise
}

// Load parses the embedded exercise library.
func Load() (*Catalog, error) {
	return Parse(exercisesJSON)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		groups:        f.MuscleGroups,
		groupByID:     make(map[string]MuscleGroup, len(f.MuscleGroups)),
		groupIDByName: make(map[string]string, len(f.MuscleGroups)),
	}
	for _, g := range f.MuscleGroups {
		c.groupByID[g.ID] = g
		c.groupIDByName[g.Name] = g.ID
	}

	c.exercises = make([]Exercise, 0, len(f.Exercises))
	c.exerciseByID = make(map[string]Exercise, len(f.Exercises))
	for _, ex := range f.Exercises {
		if _, ok := c.groupIDByName[ex.Group]; !ok {
			return nil, fmt.Errorf("exercise [%s]: %w [%s]", ex.ID, ErrUnknownMuscleGroup, ex.Group)
		}
		if _, dup := c.exerciseByID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id [%s]", ex.ID)
		}
		c.exercises = append(c.exercises, ex)
		c.exerciseByID[ex.ID] = ex
	}

	return c, nil
}

// WithCustom returns a view of the catalog that also knows the given custom
// exercises. Static exercises win on id clashes; custom ones with an unknown
// group are skipped.
func (c *Catalog) WithCustom(custom []Exercise) *Catalog {
	view := &Catalog{
		groups:        c.groups,
		groupByID:     c.groupByID,
		groupIDByName: c.groupIDByName,
		exercises:     make([]Exercise, len(c.exercises), len(c.exercises)+len(custom)),
		exerciseByID:  make(map[string]Exercise, len(c.exerciseByID)+len(custom)),
	}
	copy(view.exercises, c.exercises)
	for id, ex := range c.exerciseByID {
		view.exerciseByID[id] = ex
	}

	for _, ex := range custom {
		if _, clash := view.exerciseByID[ex.ID]; clash {
			continue
		}
		if _, ok := view.groupIDByName[ex.Group]; !ok {
			continue
		}
		ex.Custom = true
		view.exercises = append(view.exercises, ex)
		view.exerciseByID[ex.ID] = ex
	}

	return view
}

func (c *Catalog) Groups() []MuscleGroup {
	return append([]MuscleGroup(nil), c.groups...)
}

func (c *Catalog) Group(id string) (MuscleGroup, bool) {
	g, ok := c.groupByID[id]
	return g, ok
}

func (c *Catalog) Exercises() []Exercise {
	return append([]Exercise(nil), c.exercises...)
}

func (c *Catalog) Exercise(id string) (Exercise, bool) {
	ex, ok := c.exerciseByID[id]
	return ex, ok
}

// ExerciseName resolves the display name of an exercise id.
func (c *Catalog) ExerciseName(id string) (string, bool) {
	ex, ok := c.exerciseByID[id]
	if !ok {
		return "", false
	}
	return ex.Name, true
}

// LookupGroup resolves an exercise id to its muscle group id (e.g. "pectoraux").
// The join is done at read time, so it always reflects the current catalog.
func (c *Catalog) LookupGroup(exerciseID string) (string, bool) {
	ex, ok := c.exerciseByID[exerciseID]
	if !ok {
		return "", false
	}
	groupID, ok := c.groupIDByName[ex.Group]
	return groupID, ok
}

func (c *Catalog) ByGroup(groupID string) []Exercise {
	g, ok := c.groupByID[groupID]
	if !ok {
		return []Exercise{}
	}
	exercises := make([]Exercise, 0)
	for _, ex := range c.exercises {
		if ex.Group == g.Name {
			exercises = append(exercises, ex)
		}
	}
	return exercises
}

// GroupSizes counts exercises per muscle group id.
func (c *Catalog) GroupSizes() map[string]int {
	sizes := make(map[string]int, len(c.groups))
	for _, g := range c.groups {
		sizes[g.ID] = 0
	}
	for _, ex := range c.exercises {
		sizes[c.groupIDByName[ex.Group]]++
	}
	return sizes
}

// Search matches query against exercise names, ignoring case and accents
// ("developpe" finds "Développé couché"). An empty groupID searches all groups.
// Results keep catalog order, prefix matches first.
func (c *Catalog) Search(query, groupID string) []Exercise {
	candidates := c.exercises
	if groupID != "" {
		candidates = c.ByGroup(groupID)
	}

	q := fold(strings.TrimSpace(query))
	if q == "" {
		return append([]Exercise{}, candidates...)
	}

	var prefixed, contained []Exercise
	for _, ex := range candidates {
		name := fold(ex.Name)
		switch {
		case strings.HasPrefix(name, q):
			prefixed = append(prefixed, ex)
		case strings.Contains(name, q):
			contained = append(contained, ex)
		}
	}

	results := make([]Exercise, 0, len(prefixed)+len(contained))
	results = append(results, prefixed...)
	results = append(results, contained...)
	return results
}

// fold lowercases s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
