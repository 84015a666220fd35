package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/promptpix/apiserver/config"
	"github.com/promptpix/apiserver/internal/db"
	"github.com/promptpix/apiserver/internal/events"
	"github.com/promptpix/apiserver/internal/handlers"
	"github.com/promptpix/apiserver/internal/imagegen"
	"github.com/promptpix/apiserver/internal/mirror"
	"github.com/promptpix/apiserver/internal/services"
	"github.com/promptpix/apiserver/internal/storage"
	"github.com/promptpix/apiserver/internal/store"
	"github.com/rs/zerolog"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mirror     mirror.Mirror
	publisher  *events.Publisher
}

// New constructs a Server with all routes and backing services wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	userRepo := store.NewUserRepository(dbConn)
	profileRepo := store.NewProfileRepository(dbConn)
	promptRepo := store.NewPromptRepository(dbConn)

	// The mirror is best-effort end to end: a secondary store that is
	// down at startup only costs mirroring, never the server.
	var profileMirror mirror.Mirror = mirror.Disabled{}
	if cfg.Mirror.Addr != "" {
		redisMirror, err := mirror.NewRedisMirror(ctx, cfg.Mirror)
		if err != nil {
			log.Warn().Err(err).Msg("profile mirror unavailable, continuing without it")
		} else {
			profileMirror = redisMirror
		}
	}

	var publisher *events.Publisher
	switch cfg.Events.Backend {
	case "":
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.Events.RabbitMQ)
		if err != nil {
			log.Warn().Err(err).Msg("event backend unavailable, continuing without it")
		} else {
			publisher = events.NewPublisher(backend, cfg.Events.Channel)
		}
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.Events.PubSub)
		if err != nil {
			log.Warn().Err(err).Msg("event backend unavailable, continuing without it")
		} else {
			publisher = events.NewPublisher(backend, cfg.Events.Channel)
		}
	default:
		_ = dbConn.Close()
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}

	objectStore, err := storage.ResolveBackend(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if objectStore != nil {
		if err := objectStore.EnsureBucket(ctx); err != nil {
			log.Warn().Err(err).Str("bucket", objectStore.Bucket()).Msg("failed to ensure storage bucket")
		}
	}

	generator := imagegen.NewClient(cfg.Providers)

	accountService := services.NewAccountService(userRepo, profileRepo, profileMirror, log)
	promptService := services.NewPromptService(promptRepo)

	var generationPublisher services.GenerationPublisher
	if publisher != nil {
		generationPublisher = publisher
	}
	generationService := services.NewGenerationService(
		generator, userRepo, promptRepo, profileMirror, generationPublisher, log,
	)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(90*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, accountService, jwtSecret)
	})
	router.Route("/api", func(r chi.Router) {
		handlers.GenerateRouter(r, generationService)
		handlers.PromptRouter(r, promptService)
		handlers.ImageRouter(r, objectStore)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mirror:     profileMirror,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.mirror != nil {
		_ = s.mirror.Close()
	}
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	return s.httpServer.Close()
}
