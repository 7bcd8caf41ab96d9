package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=catalog_test

type customExercises interface {
	Add(ctx context.Context, in ExerciseInput) (*Exercise, error)
	View(ctx context.Context) (*Catalog, error)
}

type GroupInfo struct {
	MuscleGroup
	ExerciseCount int `json:"exerciseCount"`
}

type ExercisesResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

type Handler struct {
	custom customExercises
}

func NewHandler(custom customExercises) *Handler {
	return &Handler{
		custom: custom,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/exercises", handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-exercise")
	r.HandleFunc("/exercises/groups", handler.HandleGroups).Methods("GET", "OPTIONS").Name("list-muscle-groups")
	r.HandleFunc("/exercises/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
}

func (handler *Handler) view(ctx context.Context) *Catalog {
	c, err := handler.custom.View(ctx)
	if err != nil {
		log.Errorf("load custom exercises, serving static catalog: %s", err)
	}
	return c
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	groupID := r.URL.Query().Get("group")
	c := handler.view(ctx)
	if groupID != "" {
		if _, ok := c.Group(groupID); !ok {
			pkg.WriteJSONError(w, "unknown muscle group", http.StatusBadRequest)
			return
		}
	}

	exercises := c.Search(r.URL.Query().Get("q"), groupID)
	pkg.WriteJSONOK(w, ExercisesResponse{
		Exercises: exercises,
		Total:     len(exercises),
	})
}

func (handler *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.groups")
	defer span.End()

	c := handler.view(ctx)
	sizes := c.GroupSizes()
	groups := c.Groups()
	resp := make([]GroupInfo, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, GroupInfo{
			MuscleGroup:   g,
			ExerciseCount: sizes[g.ID],
		})
	}

	pkg.WriteJSONOK(w, resp)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	ex, ok := handler.view(ctx).Exercise(id)
	if !ok {
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
		return
	}

	pkg.WriteJSONOK(w, ex)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var in ExerciseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Errorf("add exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ex, err := handler.custom.Add(ctx, in)
	switch {
	case errors.Is(err, ErrInvalidExercise):
		pkg.WriteJSONError(w, MsgMissingFields, http.StatusBadRequest)
		return
	case errors.Is(err, ErrUnknownMuscleGroup):
		pkg.WriteJSONError(w, "unknown muscle group", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("add exercise [%s]: %s", in.Name, err)
		pkg.WriteJSONError(w, "Impossible d'ajouter l'exercice", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ex, http.StatusCreated)
}
