package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/viatra/viatra/internal/config"
	"github.com/viatra/viatra/internal/domain/insights"
	"github.com/viatra/viatra/internal/domain/interpreter"
	"github.com/viatra/viatra/internal/domain/messaging"
	"github.com/viatra/viatra/internal/domain/pilot"
	"github.com/viatra/viatra/internal/domain/prescription"
	"github.com/viatra/viatra/internal/domain/profile"
	"github.com/viatra/viatra/internal/domain/registry"
	"github.com/viatra/viatra/internal/domain/roster"
	"github.com/viatra/viatra/internal/platform/analytics"
	"github.com/viatra/viatra/internal/platform/auth"
	"github.com/viatra/viatra/internal/platform/middleware"
	"github.com/viatra/viatra/internal/platform/sandbox"
	"github.com/viatra/viatra/internal/platform/session"
	"github.com/viatra/viatra/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "viatra-server",
		Short: "Viatra session-scoped health demo API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(pitchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Viatra API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage demo sessions",
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token addressing a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if id == "" {
				id = cfg.DefaultSession
			}
			if ttl == 0 {
				ttl = cfg.SessionTokenTTL
			}

			token, err := session.MintToken([]byte(cfg.SessionSecret), id, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().String("id", "", "Session identifier (defaults to the configured default session)")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to SESSION_TOKEN_TTL)")
	cmd.AddCommand(tokenCmd)

	return cmd
}

func pitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pitch",
		Short: "Print the product pitch document as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.MarshalIndent(pilot.PitchDocument(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(payload))
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	e, sessions, tp := buildServer(cfg, logger)

	// Session gauges for /metrics, refreshed in the background.
	gaugeCtx, stopGauges := context.WithCancel(context.Background())
	defer stopGauges()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gaugeCtx.Done():
				return
			case <-ticker.C:
				st := sessions.Stats()
				hm := tp.HealthMetrics()
				hm.SetActiveSessions(int64(st.ActiveSessions))
				hm.SetSessionRequestsTotal(st.TotalRequests)
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	_ = tp.Shutdown(ctx)
	logger.Info().Msg("server stopped")
	return nil
}

// buildServer assembles the echo instance: middleware chain, domain wiring,
// and operational endpoints. Split from runServer so tests can drive the
// composed server without binding a port.
func buildServer(cfg *config.Config, logger zerolog.Logger) (*echo.Echo, *session.Registry, *telemetry.TelemetryProvider) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	sessions := session.NewRegistry()

	tp := telemetry.NewTelemetryProvider(telemetry.TelemetryConfig{
		ServiceName:    "viatra-server",
		ServiceVersion: version,
		Environment:    cfg.Env,
	})
	tracker := analytics.NewUsageTracker(10000)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", session.HeaderSessionID, auth.HeaderActorID, auth.HeaderActorName},
	}))
	e.Use(auth.DemoIdentity())
	e.Use(session.Middleware(sessions, []byte(cfg.SessionSecret), cfg.DefaultSession))
	e.Use(middleware.Audit(logger))
	e.Use(tp.TracingMiddleware())
	e.Use(tp.MetricsMiddleware())
	e.Use(analytics.UsageMiddleware(tracker))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(tp.OperationCounterMiddleware())

	// Consumer hub
	profileRepo := profile.NewProfileRepoMem()
	profileSvc := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileSvc)
	profileHandler.RegisterRoutes(apiV1)

	// Hospital hub
	registrySvc := registry.NewService(registry.NewPatientRepoMem())
	registryHandler := registry.NewHandler(registrySvc)
	registryHandler.RegisterRoutes(apiV1)

	rosterSvc := roster.NewService(roster.NewRosterRepoMem())
	rosterHandler := roster.NewHandler(rosterSvc)
	rosterHandler.RegisterRoutes(apiV1)

	prescriptionHandler := prescription.NewHandler(prescription.NewService())
	prescriptionHandler.RegisterRoutes(apiV1)

	insightsHandler := insights.NewHandler(insights.NewService())
	insightsHandler.RegisterRoutes(apiV1)

	// Shared surfaces
	messagingSvc := messaging.NewService(messaging.NewChatRepoMem(), messaging.NewConsultRepoMem(), profileRepo)
	messagingHandler := messaging.NewHandler(messagingSvc)
	messagingHandler.RegisterRoutes(apiV1)

	interpreterHandler := interpreter.NewHandler(interpreter.NewService(interpreter.NewInputRepoMem()))
	interpreterHandler.RegisterRoutes(apiV1)

	// Landing page
	pilotSvc := pilot.NewService(pilot.NewRequestRepoMem())
	pilotHandler := pilot.NewHandler(pilotSvc)
	pilotHandler.RegisterRoutes(apiV1)

	// Demo seeding
	seeder := sandbox.NewSeeder(profileSvc, registrySvc, rosterSvc, messagingSvc)
	seedHandler := sandbox.NewSeedHandler(seeder)
	seedHandler.RegisterRoutes(apiV1.Group("/sandbox"))

	// Usage analytics
	usageHandler := analytics.NewUsageHandler(tracker)
	usageHandler.RegisterRoutes(apiV1)

	// Session token minting (self-serve; addressing, not authentication)
	apiV1.POST("/sessions/token", mintTokenHandler(cfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"version":  version,
			"sessions": sessions.Stats(),
		})
	})

	// Prometheus exposition
	e.GET("/metrics", tp.PrometheusHandler())

	return e, sessions, tp
}

type mintTokenRequest struct {
	Session string `json:"session"`
}

func mintTokenHandler(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req mintTokenRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		// Default to the session the request itself resolved to.
		if req.Session == "" {
			req.Session = session.IDFromContext(c.Request().Context())
		}
		if !session.ValidID(req.Session) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid session identifier")
		}

		token, err := session.MintToken([]byte(cfg.SessionSecret), req.Session, cfg.SessionTokenTTL)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"token":      token,
			"session":    req.Session,
			"expires_in": int64(cfg.SessionTokenTTL.Seconds()),
		})
	}
}
