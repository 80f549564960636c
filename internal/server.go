package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/NateM03/gym/internal/auth"
	"github.com/NateM03/gym/internal/catalog"
	"github.com/NateM03/gym/internal/config"
	"github.com/NateM03/gym/internal/db"
	"github.com/NateM03/gym/internal/middleware"
	"github.com/NateM03/gym/internal/planner"
	"github.com/NateM03/gym/internal/progression"
	"github.com/NateM03/gym/internal/telemetry/metrics"
	"github.com/NateM03/gym/internal/users"
	"github.com/NateM03/gym/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config    *config.Config
	dbPool    *pgxpool.Pool
	planCache *freecache.Cache

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config        *config.Config
	VersionInfo   string
	RedisPassword string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		MaxConns:       params.Config.PostgresMaxConns,
		TracingEnabled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": "gym_service_db"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("gym", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	planCacheSizeMb := params.Config.PlanCacheSizeMegabytes
	if planCacheSizeMb <= 0 {
		planCacheSizeMb = 1
	}

	return &Server{
		versionInfo: params.VersionInfo,
		config:      params.Config,
		dbPool:      dbPool,
		planCache:   freecache.NewCache(planCacheSizeMb * 1024 * 1024),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(rdb),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm the gym service, relax 💪")
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	usersRepo := users.NewRepo(s.dbPool)
	catalogRepo := catalog.NewRepo(s.dbPool)
	plansRepo := planner.NewRepo(s.dbPool)

	progressionService := progression.NewService(
		progression.NewStatsRepo(s.dbPool),
		progression.NewLogsRepo(s.dbPool),
		progression.NewRewardsRepo(s.dbPool),
		s.metricsManager,
	)
	plannerService := planner.NewService(
		plansRepo,
		catalogRepo,
		progressionService,
		s.planCache,
		s.metricsManager,
	)

	usersHandler := users.NewHandler(usersRepo, progressionService, s.authService)
	r.HandleFunc("/auth/register", usersHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	r.HandleFunc("/auth/logout", usersHandler.HandleLogout).Methods("GET", "POST", "OPTIONS").Name("logout")
	r.HandleFunc("/me/profile", usersHandler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")
	r.HandleFunc("/me/profile", usersHandler.HandleGetProfile).Methods("GET", "OPTIONS").Name("get-profile")

	// login gets brute force protection
	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	rateLimit := middleware.RateLimit(
		reqRateLimiter, "login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	)
	r.Handle("/auth/login", rateLimit(http.HandlerFunc(usersHandler.HandleLogin))).
		Methods("POST", "OPTIONS").Name("login")

	catalogHandler := catalog.NewHandler(catalogRepo)
	r.HandleFunc("/exercises", catalogHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")

	plannerHandler := planner.NewHandler(plannerService, usersRepo)
	r.HandleFunc("/plans/generate", plannerHandler.HandleGenerate).Methods("POST", "OPTIONS").Name("generate-plan")
	r.HandleFunc("/plans", plannerHandler.HandleList).Methods("GET", "OPTIONS").Name("list-plans")
	r.HandleFunc("/plans/active", plannerHandler.HandleGetActive).Methods("GET", "OPTIONS").Name("active-plan")
	r.HandleFunc("/plans/{id}/activate", plannerHandler.HandleActivate).Methods("POST", "OPTIONS").Name("activate-plan")
	r.HandleFunc("/plans/{id}", plannerHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-plan")
	r.HandleFunc("/workouts/today", plannerHandler.HandleToday).Methods("GET", "OPTIONS").Name("todays-workout")
	r.HandleFunc("/workouts/day/{dayId}", plannerHandler.HandleGetDay).Methods("GET", "OPTIONS").Name("get-workout-day")

	progressionHandler := progression.NewHandler(progressionService, plansRepo)
	r.HandleFunc("/workouts/day/{dayId}/log", progressionHandler.HandleLogWorkout).Methods("POST", "OPTIONS").Name("log-workout")
	r.HandleFunc("/me/stats", progressionHandler.HandleGetStats).Methods("GET", "OPTIONS").Name("get-stats")
	r.HandleFunc("/rewards", progressionHandler.HandleListRewards).Methods("GET", "OPTIONS").Name("list-rewards")
	r.HandleFunc("/rewards/{id}/equip", progressionHandler.HandleEquipReward).Methods("POST", "OPTIONS").Name("equip-reward")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
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
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
