package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	api "github.com/mind-engage/mindengage-taxexam/internal/api/http"
	"github.com/mind-engage/mindengage-taxexam/internal/attempt"
	"github.com/mind-engage/mindengage-taxexam/internal/auth"
	authmw "github.com/mind-engage/mindengage-taxexam/internal/auth/middleware"
	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/config"
	"github.com/mind-engage/mindengage-taxexam/internal/dashboard"
	"github.com/mind-engage/mindengage-taxexam/internal/db"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
	"github.com/mind-engage/mindengage-taxexam/internal/logging"
	"github.com/mind-engage/mindengage-taxexam/internal/notes"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		logger.Fatal().Err(err).Msg("db driver")
	}
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open failed")
	}
	defer dbh.Close()

	// --- Core ---
	userStore := users.NewStore()
	bankStore := bank.NewSQLStore(dbh)
	recorder := attempt.NewRecorder(dbh, userStore)
	svc := attempt.NewService(bankStore, grading.NewScorer(), recorder,
		attempt.WithLogger(logger.With().Str("component", "attempt").Logger()),
		attempt.WithRecordTimeout(cfg.RecordTimeout))
	agg := dashboard.NewAggregator(dashboard.NewSQLSource(dbh), cfg.Categories, cfg.FullLengthQuestions)

	// --- Auth (optional bearer subject) ---
	var authSvc *authmw.AuthService
	if cfg.AuthHMACSecret != "" {
		authSvc = authmw.NewAuthService(cfg.AuthHMACSecret)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(logger), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(authmw.OptionalJWT(authSvc))

	api.Mount(r, api.Deps{
		DB:        dbh,
		Bank:      bankStore,
		Attempts:  svc,
		Recorder:  recorder,
		Dashboard: agg,
		Notes:     notes.NewStore(dbh, userStore),
		Users:     userStore,
	})

	if cfg.GuestAuth {
		r.Post("/api/auth/guest", auth.GuestLoginHandler(authSvc, dbh, userStore, cfg.GuestTTL))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("db", string(driver)).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("stopped")
}
