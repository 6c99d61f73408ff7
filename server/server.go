package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"golang.org/x/text/language"

	"fitlog/config"
	"fitlog/i18n"
	"fitlog/logger"
	"fitlog/repo"
)

const (
	sessionName   = "fitlogSession"
	sessionUserId = "loggedInUserId"
)

type server struct {
	store      sessions.Store
	repo       *repo.Store
	bundle     *i18n.Bundle
	log        *logger.Logger
	locale     language.Tag
	adminToken string
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/login", s.handleLogin).Methods("GET", "POST")
	r.HandleFunc("/register", s.handleRegister).Methods("GET", "POST")
	r.HandleFunc("/exercises", s.handleExercises).Methods("GET")
	r.HandleFunc("/exercises/add", s.handleAddExerciseForm).Methods("GET")
	r.HandleFunc("/exercises/add", s.handleAddExercise(redirectToWorkout)).Methods("POST")
	r.HandleFunc("/workout", s.handleWorkout).Methods("GET", "POST")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/exercises", s.apiListExercises).Methods("GET")
	api.HandleFunc("/exercises", s.apiAddExercise).Methods("POST")

	r.HandleFunc("/admin/tables/{table}", s.handleAdminDelete).Methods("DELETE")
	return r
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout)
	if cfg.LogFile != "" {
		if log, err = logger.NewFile(cfg.LogFile); err != nil {
			return err
		}
		defer log.Close()
	}
	log.WithStacks(cfg.LogStacks)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tag, err := language.Parse(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("default locale: %w", err)
	}

	store, err := repo.Open(ctx, repo.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	fileStore := sessions.NewFilesystemStore(cfg.SessionDir, []byte(cfg.SessionSecret))
	fileStore.Options = &sessions.Options{
		Path:     "/",
		Domain:   "",
		MaxAge:   cfg.SessionMaxAge,
		Secure:   cfg.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if cfg.AdminToken == "" {
		log.Warn("FITLOG_ADMIN_TOKEN is empty, admin endpoints are disabled")
	}

	s := &server{
		store:      fileStore,
		repo:       store,
		bundle:     i18n.Default(),
		log:        log,
		locale:     tag,
		adminToken: cfg.AdminToken,
	}
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "shutdown")
		}
	}()

	log.Info("listening on %s (db: %s)", cfg.Addr, cfg.DBDriver)
	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		log.Info("server closed")
		return nil
	}
	return fmt.Errorf("error starting server: %w", err)
}
