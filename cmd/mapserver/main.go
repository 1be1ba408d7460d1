package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/api"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/config"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/metrics"
)

// Config is read from the process environment (and .env when present)
type Config struct {
	Port              string   `env:"PORT" env-default:"8080"`
	Environment       string   `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL       string   `env:"DATABASE_URL" env-default:"memory"`
	DBSchema          string   `env:"MAPS_DB_SCHEMA" env-default:"maps"`
	FixturesPath      string   `env:"FIXTURES_PATH" env-default:""`
	EnableGeoLocation bool     `env:"ENABLE_GEOLOCATION" env-default:"true"`
	EnableEmbedLog    bool     `env:"ENABLE_EMBED_LOG" env-default:"true"`
	DefaultWidth      string   `env:"MAP_DEFAULT_WIDTH" env-default:""`
	DefaultHeight     string   `env:"MAP_DEFAULT_HEIGHT" env-default:""`
	TileHost          string   `env:"MAP_TILE_HOST" env-default:"www.openstreetmap.org"`
	AllowedOrigins    []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

func (c Config) options() []config.Option {
	opts := []config.Option{
		config.WithPort(c.Port),
		config.WithEnvironment(c.Environment),
		config.WithDatabaseSchema(c.DBSchema),
		config.WithFixtures(c.FixturesPath),
		config.WithGeoLocation(c.EnableGeoLocation),
		config.WithEmbedLog(c.EnableEmbedLog),
		config.WithDefaultDimensions(c.DefaultWidth, c.DefaultHeight),
		config.WithTileHost(c.TileHost),
	}
	if c.DatabaseURL != "" && c.DatabaseURL != "memory" {
		opts = append(opts, config.WithDatabase("postgres", c.DatabaseURL))
	}
	return opts
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", "err", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)
	slog.SetDefault(logger)

	serverConfig, err := config.Load(cfg.options()...)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := serverConfig.Ping(); err != nil {
		slog.Error("Database not reachable", "err", err)
		os.Exit(1)
	}

	mapMetrics := metrics.New("simple_maps")

	factory, _, err := serverConfig.BuildFactory(context.Background(), logger,
		embeddedmaps.WithHooks(mapMetrics.Hooks()))
	if err != nil {
		slog.Error("Failed to build renderer", "err", err)
		os.Exit(1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", mapMetrics.Handler())

	mapHandler := api.NewMapHandler(factory)
	server.R.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.RequestID)
		r.Use(api.LoggingMiddleware(logger))
		r.Use(mapMetrics.Middleware)
		r.Use(api.CORSMiddleware(cfg.AllowedOrigins))
		r.Mount("/", mapHandler.Routes())
	})

	httpServer := &http.Server{
		Addr:    ":" + serverConfig.Port,
		Handler: server.R,
	}

	go func() {
		slog.Info("Map server starting",
			"port", serverConfig.Port,
			"environment", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"geolocation", serverConfig.EnableGeoLocation)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
	}
}
