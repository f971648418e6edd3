package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/restcatalog/apiserver/config"
	"github.com/restcatalog/apiserver/internal/auth"
	"github.com/restcatalog/apiserver/internal/db"
	"github.com/restcatalog/apiserver/internal/events"
	"github.com/restcatalog/apiserver/internal/handlers"
	"github.com/restcatalog/apiserver/internal/mq"
	"github.com/restcatalog/apiserver/internal/services"
	"github.com/restcatalog/apiserver/internal/storage"
	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with its full dependency graph.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStorage, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := newBroker(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var publisher *events.Publisher
	if broker != nil {
		publisher = events.NewPublisher(broker, cfg.MQ.EventsChannel)
	}

	userRepo := store.NewUserRepository(dbConn)
	categoryRepo := store.NewCategoryRepository(dbConn)
	productRepo := store.NewProductRepository(dbConn)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret)
	resolver := auth.NewResolver(userRepo)
	authenticator := auth.NewAuthenticator(tokens, resolver)
	policy := routePolicy()

	authService := services.NewAuthService(userRepo, tokens)
	categoryService := services.NewCategoryService(categoryRepo, productRepo, publisher)
	productService := services.NewProductService(productRepo, categoryRepo, objectStorage, publisher)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	// Authentication always completes before authorization is evaluated.
	router.Use(authenticator.Middleware(), policy.Middleware())

	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
	})
	router.Route("/category", func(r chi.Router) {
		handlers.CategoryRouter(r, categoryService)
	})
	router.Route("/products", func(r chi.Router) {
		handlers.ProductRouter(r, productService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// routePolicy is the fixed access table, evaluated top to bottom with
// first match winning. Unmatched routes require an authenticated identity.
func routePolicy() *auth.Policy {
	return auth.NewPolicy(
		auth.Rule{Pattern: "/auth/login", Public: true},
		auth.Rule{Pattern: "/auth/register", Public: true},
		auth.Rule{Pattern: "/healthz", Public: true},
		auth.Rule{Pattern: "/docs/*", Public: true},
		auth.Rule{Pattern: "/category/all", Roles: []types.Role{types.RoleUser, types.RoleAdmin}},
		auth.Rule{Pattern: "/products/search", Roles: []types.Role{types.RoleUser, types.RoleAdmin}},
		auth.Rule{Pattern: "/auth/*", Roles: []types.Role{types.RoleAdmin}},
		auth.Rule{Pattern: "/category/*", Roles: []types.Role{types.RoleAdmin}},
		auth.Rule{Pattern: "/products/*", Roles: []types.Role{types.RoleAdmin}},
	)
}

func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Backend {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	wrapped := storage.NewStorage(backend)
	if err := wrapped.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return wrapped, nil
}

func newBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
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
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
