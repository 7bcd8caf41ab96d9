package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/2beens/gymlog/internal/kvstore"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	CustomExercisesKey = "exercises_custom"
	CategoryStrength   = "strength"
	CategoryCardio     = "cardio"

	MsgMissingFields = "Veuillez remplir tous les champs"
)

var ErrInvalidExercise = errors.New("invalid exercise")

type ExerciseInput struct {
	Name string `json:"name"`
	// muscle group id, e.g. "dos"
	GroupID   string `json:"groupId"`
	Category  string `json:"category,omitempty"`
	Equipment string `json:"equipment,omitempty"`
}

// CustomStore persists user-defined exercises as one JSON array.
type CustomStore struct {
	kv      kvstore.Store
	catalog *Catalog
	mutex   sync.Mutex
}

func NewCustomStore(kv kvstore.Store, catalog *Catalog) *CustomStore {
	return &CustomStore{
		kv:      kv,
		catalog: catalog,
	}
}

func (s *CustomStore) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.catalog.custom.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.read(ctx)
}

func (s *CustomStore) read(ctx context.Context) ([]Exercise, error) {
	raw, err := s.kv.Get(ctx, CustomExercisesKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []Exercise{}, nil
		}
		return nil, fmt.Errorf("read custom exercises: %w", err)
	}

	var exercises []Exercise
	if err := json.Unmarshal(raw, &exercises); err != nil {
		return nil, fmt.Errorf("decode custom exercises: %w", err)
	}
	for i := range exercises {
		exercises[i].Custom = true
	}

	return exercises, nil
}

func (s *CustomStore) Add(ctx context.Context, in ExerciseInput) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.catalog.custom.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("group.id", in.GroupID))

	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.GroupID) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExercise, MsgMissingFields)
	}
	group, ok := s.catalog.Group(in.GroupID)
	if !ok {
		return nil, fmt.Errorf("%w [%s]", ErrUnknownMuscleGroup, in.GroupID)
	}
	category := in.Category
	switch category {
	case "":
		category = CategoryStrength
	case CategoryStrength, CategoryCardio:
	default:
		return nil, fmt.Errorf("%w: unknown category [%s]", ErrInvalidExercise, in.Category)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate exercise id: %w", err)
	}

	exercise := Exercise{
		ID:        "custom_" + id.String(),
		Name:      name,
		Group:     group.Name,
		Category:  category,
		Equipment: in.Equipment,
		Custom:    true,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	exercises, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	exercises = append(exercises, exercise)

	raw, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal custom exercises: %w", err)
	}
	if err := s.kv.Set(ctx, CustomExercisesKey, raw); err != nil {
		return nil, fmt.Errorf("write custom exercises: %w", err)
	}

	log.Debugf("custom exercise added: [%s] [%s] %s", exercise.ID, group.ID, exercise.Name)
	return &exercise, nil
}

// ExerciseName resolves the display name of a static or custom exercise id.
// When the custom exercises cannot be read, only static ids resolve.
func (s *CustomStore) ExerciseName(ctx context.Context, id string) (string, bool) {
	c, err := s.View(ctx)
	if err != nil {
		log.Errorf("resolve exercise name [%s]: %s", id, err)
	}
	return c.ExerciseName(id)
}

// View returns the static catalog extended with the stored custom exercises.
// If the custom exercises cannot be read, the static catalog is returned with the error.
func (s *CustomStore) View(ctx context.Context) (*Catalog, error) {
	custom, err := s.List(ctx)
	if err != nil {
		return s.catalog, err
	}
	return s.catalog.WithCustom(custom), nil
}
