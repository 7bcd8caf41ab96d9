package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/dates"
	"github.com/2beens/gymlog/internal/middleware"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type entryStore interface {
	AddEntry(ctx context.Context, in EntryInput) (*Entry, error)
	AllEntries(ctx context.Context) ([]Entry, error)
	EntriesByDate(ctx context.Context, date string) ([]Entry, error)
	Export(ctx context.Context) (*Export, error)
}

type AddEntryRequest struct {
	EntryInput
	// nil skips the form rules and only checks the stored invariants
	Weighted *bool `json:"weighted,omitempty"`
}

type EntriesResponse struct {
	Entries []Entry `json:"entries"`
	Partial bool    `json:"partial"`
}

type DayEntriesResponse struct {
	Date    string     `json:"date"`
	Entries []Entry    `json:"entries"`
	Summary DaySummary `json:"summary"`
}

type Handler struct {
	store          entryStore
	metricsManager *metrics.Manager
}

func NewHandler(store entryStore, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		store:          store,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router, rateLimiter middleware.RequestRateLimiter, allowedPerMin int) {
	var addHandler http.Handler = http.HandlerFunc(handler.HandleAdd)
	if rateLimiter != nil && allowedPerMin > 0 {
		addHandler = middleware.RateLimit(rateLimiter, handler.metricsManager, "add-workout", allowedPerMin)(addHandler)
	}
	r.Handle("/workouts", addHandler).Methods("POST", "OPTIONS").Name("add-workout")
	r.HandleFunc("/workouts", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("export-workouts")
	r.HandleFunc("/workouts/date/{date}", handler.HandleByDate).Methods("GET", "OPTIONS").Name("workouts-by-date")
	r.HandleFunc("/workouts/date/{date}/summary", handler.HandleDaySummary).Methods("GET", "OPTIONS").Name("workouts-day-summary")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add workout entry, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	in := req.EntryInput
	if req.Weighted != nil {
		if !*req.Weighted {
			in.Weight = 0
		}
		if err := ValidateInput(in, *req.Weighted); err != nil {
			handler.writeValidationError(w, err)
			return
		}
	}

	entry, err := handler.store.AddEntry(ctx, in)
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			handler.writeValidationError(w, err)
			return
		}
		log.Errorf("add workout entry [%s] [%s]: %s", in.Date, in.ExerciseID, err)
		pkg.WriteJSONError(w, MsgAddFailed, http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, entry, http.StatusCreated)
}

func (handler *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Tracef("workout entry rejected: %s", vErr)
	if handler.metricsManager != nil {
		handler.metricsManager.CounterRejectedEntries.WithLabelValues(vErr.Field).Inc()
	}
	pkg.WriteJSON(w, pkg.ErrorResponse{Error: vErr.Message, Field: vErr.Field}, http.StatusBadRequest)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	entries, err := handler.store.AllEntries(ctx)
	partial := false
	if err != nil {
		if !errors.Is(err, ErrCorruptData) || entries == nil {
			log.Errorf("list workout entries: %s", err)
			pkg.WriteJSONError(w, MsgLoadFailed, http.StatusInternalServerError)
			return
		}
		log.Warnf("list workout entries, serving readable days only: %s", err)
		partial = true
	}

	pkg.WriteJSONOK(w, EntriesResponse{
		Entries: entries,
		Partial: partial,
	})
}

func (handler *Handler) dayEntries(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, []Entry, bool) {
	date := mux.Vars(r)["date"]
	if !dates.IsDayKey(date) {
		pkg.WriteJSONError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return "", nil, false
	}

	entries, err := handler.store.EntriesByDate(ctx, date)
	if err != nil {
		log.Errorf("get workout entries for [%s]: %s", date, err)
		pkg.WriteJSONError(w, MsgLoadFailed, http.StatusInternalServerError)
		return "", nil, false
	}

	return date, entries, true
}

func (handler *Handler) HandleByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.by_date")
	defer span.End()

	date, entries, ok := handler.dayEntries(ctx, w, r)
	if !ok {
		return
	}

	pkg.WriteJSONOK(w, DayEntriesResponse{
		Date:    date,
		Entries: entries,
		Summary: SummarizeDay(entries),
	})
}

func (handler *Handler) HandleDaySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.day_summary")
	defer span.End()

	_, entries, ok := handler.dayEntries(ctx, w, r)
	if !ok {
		return
	}

	pkg.WriteJSONOK(w, SummarizeDay(entries))
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.export")
	defer span.End()

	export, err := handler.store.Export(ctx)
	if err != nil {
		if export == nil {
			log.Errorf("export workout entries: %s", err)
			pkg.WriteJSONError(w, MsgLoadFailed, http.StatusInternalServerError)
			return
		}
		log.Warnf("export workout entries, readable days only: %s", err)
	}

	w.Header().Set("Content-Disposition", `attachment; filename="gymlog-export.json"`)
	pkg.WriteJSONOK(w, export)
}
