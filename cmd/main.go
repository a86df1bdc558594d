package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-user-accounts/internal/config"
	"github.com/sbilibin2017/gw-user-accounts/internal/handlers"
	"github.com/sbilibin2017/gw-user-accounts/internal/hasher"
	"github.com/sbilibin2017/gw-user-accounts/internal/jwt"
	"github.com/sbilibin2017/gw-user-accounts/internal/logger"
	"github.com/sbilibin2017/gw-user-accounts/internal/middlewares"
	"github.com/sbilibin2017/gw-user-accounts/internal/migrations"
	"github.com/sbilibin2017/gw-user-accounts/internal/repositories"
	"github.com/sbilibin2017/gw-user-accounts/internal/services"
	"github.com/sbilibin2017/gw-user-accounts/internal/transaction"
	"github.com/sbilibin2017/gw-user-accounts/internal/workers"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/crypto/bcrypt"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-user-accounts API
// @version 1.0.0
// @description Microservice for user registration, token login and profile management
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run initializes the logger, database, event writer and HTTP server.
// It sets up routes, starts the token reaper and handles graceful shutdown.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, db.DB); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	tokener, err := jwt.New(cfg.JWTSecretKey, cfg.JWTAlgorithm, cfg.TokenTTL())
	if err != nil {
		return err
	}

	events, closeEvents := newEventWriter(cfg)
	defer closeEvents()

	tokens := repositories.NewTokenRepository(db, transaction.FromContext)
	router := newRouter(db, tokener, tokens, events)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go workers.NewTokenReaper(tokens, cfg.TokenReapInterval).Run(ctxShutdown)

	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// newEventWriter returns a Kafka writer for account events, or a nil
// EventWriter when no brokers are configured.
func newEventWriter(cfg *config.Config) (services.EventWriter, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Log.Info("KAFKA_BROKERS not set, account events disabled")
		return nil, func() {}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	logger.Log.Infow("Kafka writer configured", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)

	return w, func() {
		if err := w.Close(); err != nil {
			logger.Log.Errorw("failed to close kafka writer", "error", err)
		}
	}
}

// newRouter wires repositories, services and handlers into a chi router.
func newRouter(db *sqlx.DB, tokener *jwt.JWT, tokens *repositories.TokenRepository, events services.EventWriter) chi.Router {
	users := repositories.NewUserRepository(db, transaction.FromContext)
	txManager := transaction.NewManager(db)

	gate := services.NewSessionGate(tokens, users)
	accounts := services.NewAccountService(
		users,
		tokens,
		tokener,
		hasher.NewBcrypt(bcrypt.DefaultCost),
		txManager,
		gate,
		events,
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Get("/", handlers.NewRootHandler())
	r.Get("/echo/", handlers.NewEchoHandler())
	r.Post("/users/", handlers.NewRegisterHandler(accounts))
	r.Get("/users/", handlers.NewUsersHandler(accounts))

	// Token-mutating routes run in one transaction each
	r.Group(func(r chi.Router) {
		r.Use(middlewares.TxMiddleware(txManager))
		r.Post("/login/", handlers.NewLoginHandler(accounts))
		r.Put("/users/{id}", handlers.NewUpdateHandler(accounts))
		r.Post("/logout", handlers.NewLogoutHandler(accounts))
		r.Post("/delete", handlers.NewDeleteHandler(accounts))
	})

	// Bearer header routes
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(tokener))
		r.Use(middlewares.TxMiddleware(txManager))
		r.Get("/profile/", handlers.NewProfileHandler(accounts))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
