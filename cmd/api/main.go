// @title           FinManager API
// @version         1.0
// @description     Personal finance tracking with a natural-language finance agent.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/api"
	"github.com/duveen2546R/FinManager/internal/api/handler"
	"github.com/duveen2546R/FinManager/internal/core/agent"
	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/core/service"
	"github.com/duveen2546R/FinManager/internal/core/sqlguard"
	"github.com/duveen2546R/FinManager/internal/infrastructure/cache"
	"github.com/duveen2546R/FinManager/internal/infrastructure/db/postgres"
	"github.com/duveen2546R/FinManager/internal/infrastructure/db/redis"
	"github.com/duveen2546R/FinManager/internal/infrastructure/llm"
	"github.com/duveen2546R/FinManager/internal/pkg/config"
	"github.com/duveen2546R/FinManager/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "finmanager",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Database.URL})
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info().Msg("database schema up to date")
	}

	readPool := pool
	if cfg.Database.ReadOnlyURL != "" {
		readPool, err = postgres.Connect(ctx, postgres.Config{URL: cfg.Database.ReadOnlyURL})
		if err != nil {
			return err
		}
		defer readPool.Close()
	}

	// --- Caches ---
	var (
		rdb         *goredis.Client
		schemaCache ports.SchemaCache
		limiter     ports.RateLimiter
		redisPinger handler.Pinger
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		schemaCache = redis.NewSchemaCache(rdb)
		limiter = redis.NewRateLimiter(rdb, cfg.Agent.RateLimit, cfg.Agent.RateWindow)
		redisPinger = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		local, err := cache.NewLocalSchemaCache()
		if err != nil {
			return err
		}
		defer local.Close()
		schemaCache = local
		log.Warn().Msg("REDIS_ADDR not set: schema cache is process-local and agent rate limiting is off")
	}

	// --- Language model ---
	model, err := llm.New(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}

	// --- Services ---
	userRepo := postgres.NewUserRepository(pool, cfg.Database.QueryTimeout)
	txRepo := postgres.NewTransactionRepository(pool, cfg.Database.QueryTimeout)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour, logger.Component("auth"))
	txService := service.NewTransactionService(txRepo, userRepo, logger.Component("ledger"))

	schema := service.NewCachedSchemaDescriber(
		postgres.NewSchemaDescriber(readPool, cfg.Agent.Tables, cfg.Database.QueryTimeout),
		schemaCache,
		strings.Join(cfg.Agent.Tables, ","),
		cfg.Redis.SchemaCacheTTL,
		logger.Component("schema"),
	)
	guard := sqlguard.NewGuard(sqlguard.Policy{AllowedTables: cfg.Agent.Tables})
	history := service.NewHistoryService(
		schema,
		service.NewQuerySynthesizer(model, guard, logger.Component("synthesizer")),
		postgres.NewQueryExecutor(readPool, cfg.Database.QueryTimeout, logger.Component("executor")),
		service.HistoryConfig{TopK: cfg.Agent.TopK},
		logger.Component("history"),
	)
	advisor := service.NewPlanningAdvisor(model, logger.Component("planner"))

	orchestrator := agent.NewOrchestrator(model, []agent.Tool{
		agent.NewHistoryTool(history),
		agent.NewPlannerTool(advisor),
		agent.NewWriterTool(txService),
	}, agent.Config{
		MaxIterations: cfg.Agent.MaxIterations,
		ToolTimeout:   cfg.LLM.Timeout + cfg.Database.QueryTimeout,
	}, logger.Component("agent"))

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Transactions: txService,
		Agent:        orchestrator,
		RateLimiter:  limiter,
		Postgres:     pool,
		Redis:        redisPinger,
		JWTSecret:    cfg.JWTSecret,
		AuthRequired: cfg.AuthRequired,
		Log:          log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("llm_provider", cfg.LLM.Provider).Msg("API server running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
