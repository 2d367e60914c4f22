package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/duveen2546R/FinManager/docs"
	"github.com/duveen2546R/FinManager/internal/api/handler"
	"github.com/duveen2546R/FinManager/internal/api/middleware"
	"github.com/duveen2546R/FinManager/internal/core/ports"
)

// Dependencies are the services the HTTP layer is wired to.
type Dependencies struct {
	Auth         ports.AuthService
	Transactions ports.TransactionService
	Agent        handler.AgentRunner
	// RateLimiter is optional.
	RateLimiter ports.RateLimiter

	Postgres handler.Pinger
	// Redis is optional.
	Redis handler.Pinger

	JWTSecret    string
	AuthRequired bool
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("finmanager"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	txHandler := handler.NewTransactionHandler(deps.Transactions, deps.Log)
	agentHandler := handler.NewAgentHandler(deps.Agent, deps.RateLimiter, deps.Log)
	authMiddleware := middleware.Auth(deps.JWTSecret, deps.AuthRequired)

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "FinManager API is running.")
	})

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Ledger and agent routes ---
	e.POST("/transaction", txHandler.Create, authMiddleware)
	e.GET("/transactions/:user_id", txHandler.List, authMiddleware)
	e.POST("/ai/agent/invoke", agentHandler.Invoke, authMiddleware)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Postgres, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
