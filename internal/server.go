package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/gymlog/internal/backup"
	"github.com/2beens/gymlog/internal/catalog"
	"github.com/2beens/gymlog/internal/config"
	gymlogmcp "github.com/2beens/gymlog/internal/mcp"
	"github.com/2beens/gymlog/internal/middleware"
	"github.com/2beens/gymlog/internal/stats"
	"github.com/2beens/gymlog/internal/storage"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/workouts"
	"github.com/2beens/gymlog/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config          *config.Config
	backend         *storage.Backend
	workoutsStore   *workouts.Store
	customExercises *catalog.CustomStore
	statsService    *stats.Service
	mcpServer       *sdkmcp.Server

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	DBUser                  string
	DBPassword              string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	backend, err := storage.Open(ctx, storage.OpenParams{
		Config:         params.Config,
		RedisPassword:  params.RedisPassword,
		DBUser:         params.DBUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	promRegistry := metrics.SetupPrometheus(backend.Collectors()...)
	metricsManager := metrics.NewManager("gymlog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymlog-backend")
	if err != nil {
		backend.Close()
		return nil, err
	}

	exerciseCatalog, err := catalog.Load()
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("load exercise catalog: %w", err)
	}
	customExercises := catalog.NewCustomStore(backend.Store, exerciseCatalog)

	workoutsStore := workouts.NewStore(
		backend.Store,
		workouts.WithMetrics(metricsManager),
		workouts.WithExerciseNames(customExercises.ExerciseName),
	)
	if err := workoutsStore.Migrate(ctx); err != nil {
		// old data stays under the legacy key; the new layout still works
		log.Errorf("migrate workouts: %s", err)
	}

	statsService := stats.NewService(workoutsStore, customExercises, params.Config.Location(), metricsManager)

	return &Server{
		config:          params.Config,
		versionInfo:     params.VersionInfo,
		backend:         backend,
		workoutsStore:   workoutsStore,
		customExercises: customExercises,
		statsService:    statsService,
		mcpServer:       gymlogmcp.NewServer(statsService, workoutsStore, customExercises),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	var rateLimiter middleware.RequestRateLimiter
	if s.backend.RedisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.backend.RedisClient)
	} else {
		log.Warnln("redis not configured, write routes are not rate limited")
	}

	workoutsHandler := workouts.NewHandler(s.workoutsStore, s.metricsManager)
	workoutsHandler.SetupRoutes(r, rateLimiter, s.config.WriteRateLimitPerMinute)

	catalogHandler := catalog.NewHandler(s.customExercises)
	catalogHandler.SetupRoutes(r)

	statsHandler := stats.NewHandler(s.statsService)
	statsHandler.SetupRoutes(r)

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")
	r.PathPrefix("/mcp").Handler(gymlogmcp.HTTPHandler(s.mcpServer)).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.versionInfo != "" {
		pkg.WriteTextResponseOK(w, "ok "+s.versionInfo)
		return
	}
	pkg.WriteTextResponseOK(w, "ok")
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.MetricsHost, strconv.Itoa(s.config.MetricsPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)

	s.setBackupReportSocket(ctx)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	// storage goes last, in-flight requests may still write
	s.backend.Close()

	if s.config.BackupUnixSocketAddrDir != "" {
		log.Debugln("removing backup report unix socket ...")
		socket := filepath.Join(s.config.BackupUnixSocketAddrDir, s.config.BackupUnixSocketFileName)
		if err := os.RemoveAll(socket); err != nil {
			log.Errorf("failed to cleanup backup report unix socket dir: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) setBackupReportSocket(ctx context.Context) {
	if s.config.BackupUnixSocketAddrDir == "" {
		log.Debugln("backup report unix socket disabled")
		return
	}

	if err := os.MkdirAll(s.config.BackupUnixSocketAddrDir, os.ModePerm); err != nil {
		log.Errorf("failed to create backup report unix socket dir: %s", err)
		return
	}

	if addr, err := backup.ReportListenerSetup(
		ctx,
		s.config.BackupUnixSocketAddrDir,
		s.config.BackupUnixSocketFileName,
		s.metricsManager,
	); err != nil {
		log.Errorf("failed to create backup report unix socket: %s", err)
	} else {
		log.Debugf("backup report unix socket: %s", addr)
	}
}
