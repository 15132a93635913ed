package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	httpadapter "github.com/devlog/devlog/internal/adapter/http"
	"github.com/devlog/devlog/internal/adapter/persistence"
	"github.com/devlog/devlog/internal/config"
	"github.com/devlog/devlog/internal/service/logger"
	"github.com/devlog/devlog/internal/service/password"
	"github.com/devlog/devlog/internal/service/ratelimit"
	"github.com/devlog/devlog/internal/service/token"
	"github.com/devlog/devlog/internal/usecase"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Version and build information
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		version = flag.Bool("version", false, "Show version information")
		migrate = flag.Bool("migrate", false, "Run database migrations and exit")
		seed    = flag.Bool("seed", false, "Seed database with demo accounts and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("DevLog work log tracker\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "devlog",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to initialize database", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	if *migrate {
		if err := runMigrations(db); err != nil {
			log.Error(ctx, "migrations failed", err, nil)
			os.Exit(1)
		}
		log.Info(ctx, "migrations completed", nil)
		os.Exit(0)
	}

	if *seed {
		if err := seedDatabase(db, cfg.BcryptCost); err != nil {
			log.Error(ctx, "seeding failed", err, nil)
			os.Exit(1)
		}
		log.Info(ctx, "database seeded", nil)
		os.Exit(0)
	}

	tokenService, err := token.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Error(ctx, "failed to build token service", err, nil)
		os.Exit(1)
	}

	limiterLog := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		limiterLog.SetLevel(level)
	}
	rateLimiter, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
	}, limiterLog)
	if err != nil {
		log.Error(ctx, "failed to build rate limiter", err, nil)
		os.Exit(1)
	}

	userRepo := persistence.NewPostgresUserRepository(db)
	logRepo := persistence.NewPostgresLogRepository(db)

	authUseCase := usecase.NewAuthUseCase(
		userRepo,
		tokenService,
		password.NewBcryptService(cfg.BcryptCost),
		rateLimiter,
		log,
		cfg.AccessTokenTTL,
		cfg.LoginAttempts,
		cfg.LoginWindow,
		cfg.BlockDuration,
	)
	logUseCase := usecase.NewLogUseCase(logRepo, log)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:           cfg.ServerHost,
			Port:           cfg.ServerPort,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			IdleTimeout:    cfg.IdleTimeout,
			CORSEnabled:    cfg.CORSEnabled,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		authUseCase,
		logUseCase,
		httpadapter.NewAuthMiddleware(tokenService),
		log,
	)

	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
			"env":  cfg.Environment,
		})
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server failed", err, nil)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutting down", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown error", err, nil)
	}
	log.Info(ctx, "server stopped", nil)
}

// initDatabase opens and verifies the database connection
func initDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations creates the schema
func runMigrations(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY,
			name       VARCHAR(255) NOT NULL,
			email      VARCHAR(255) NOT NULL UNIQUE,
			password   VARCHAR(255) NOT NULL,
			role       VARCHAR(32)  NOT NULL DEFAULT 'developer',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS logs (
			id         UUID PRIMARY KEY,
			owner_id   UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date       TIMESTAMPTZ NOT NULL,
			tasks      TEXT NOT NULL,
			time_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
			mood       VARCHAR(16) NOT NULL DEFAULT 'neutral',
			blockers   TEXT NOT NULL DEFAULT '',
			tags       JSONB NOT NULL DEFAULT '[]',
			reviewed   BOOLEAN NOT NULL DEFAULT FALSE,
			feedback   TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_owner_id ON logs(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_date ON logs(date)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// seedDatabase inserts demo accounts for local development
func seedDatabase(db *sql.DB, bcryptCost int) error {
	accounts := []struct {
		name  string
		email string
		role  string
	}{
		{"Demo Developer", "dev@example.com", "developer"},
		{"Demo Manager", "manager@example.com", "manager"},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, a := range accounts {
		_, err := db.Exec(
			`INSERT INTO users (id, name, email, password, role, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 ON CONFLICT (email) DO NOTHING`,
			uuid.New().String(), a.name, a.email, string(hash), a.role,
		)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", a.email, err)
		}
	}
	return nil
}
