package stats

import (
	"context"
	"net/http"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/workouts"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=stats_test

type statsService interface {
	Report(ctx context.Context) (*Report, error)
	Week(ctx context.Context) (*WeekReport, error)
}

type Handler struct {
	service statsService
}

func NewHandler(service statsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/stats", handler.HandleStats).Methods("GET", "OPTIONS").Name("get-stats")
	r.HandleFunc("/stats/week", handler.HandleWeek).Methods("GET", "OPTIONS").Name("get-week-stats")
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.get")
	defer span.End()

	report, err := handler.service.Report(ctx)
	if err != nil {
		log.Errorf("get stats: %s", err)
		pkg.WriteJSONError(w, workouts.MsgLoadFailed, http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, report)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.week")
	defer span.End()

	week, err := handler.service.Week(ctx)
	if err != nil {
		log.Errorf("get week stats: %s", err)
		pkg.WriteJSONError(w, workouts.MsgLoadFailed, http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, week)
}
