package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/fixtures"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/repo/memory"
	repopg "github.com/tendant/simple-maps/pkg/embeddedmaps/repo/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:              "8080",
		Environment:       "development",
		DatabaseType:      "memory",
		DBSchema:          "maps",
		EnableGeoLocation: true,
		EnableEmbedLog:    true,
		TileHost:          embeddedmaps.DefaultTileHost,
	}
}

// ServerConfig represents configuration for the map service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: maps)
	FixturesPath string // YAML fixtures loaded into the repository at startup

	// Rendering options
	EnableGeoLocation bool
	EnableEmbedLog    bool
	DefaultWidth      string
	DefaultHeight     string
	TileHost          string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.TileHost == "" {
		return errors.New("tile_host is required")
	}

	return nil
}

// Store is a repository that can also be seeded
type Store interface {
	embeddedmaps.Repository
	embeddedmaps.GeoLocator
	embeddedmaps.PostWriter
}

// BuildStore creates the repository described by the configuration and
// applies fixtures when FixturesPath is set
func (c *ServerConfig) BuildStore(ctx context.Context) (Store, error) {
	store, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	if c.FixturesPath != "" {
		set, err := fixtures.LoadFile(c.FixturesPath)
		if err != nil {
			return nil, err
		}
		if err := set.Apply(ctx, store); err != nil {
			return nil, fmt.Errorf("failed to apply fixtures: %w", err)
		}
	}

	return store, nil
}

// RendererOptions returns the renderer options implied by the configuration
func (c *ServerConfig) RendererOptions(store Store, logger *slog.Logger) []embeddedmaps.Option {
	options := []embeddedmaps.Option{
		embeddedmaps.WithRepository(store),
		embeddedmaps.WithTileHost(c.TileHost),
		embeddedmaps.WithHooks(embeddedmaps.DefaultDimensionsHook(c.DefaultWidth, c.DefaultHeight)),
	}
	if logger != nil {
		options = append(options, embeddedmaps.WithLogger(logger))
	}
	if c.EnableGeoLocation {
		options = append(options, embeddedmaps.WithGeoLocator(store))
	}
	if c.EnableEmbedLog {
		if logger == nil {
			logger = slog.Default()
		}
		options = append(options, embeddedmaps.WithHooks(embeddedmaps.LoggingHook(logger)))
	}
	return options
}

// BuildFactory creates the store and returns a renderer factory over it.
// extra options are applied after the configured ones.
func (c *ServerConfig) BuildFactory(ctx context.Context, logger *slog.Logger, extra ...embeddedmaps.Option) (embeddedmaps.Factory, Store, error) {
	store, err := c.BuildStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	options := append(c.RendererOptions(store, logger), extra...)
	return embeddedmaps.NewFactory(options...), store, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (Store, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// Ping checks that the configured database is reachable. The memory store
// always is.
func (c *ServerConfig) Ping() error {
	if c.DatabaseType != "postgres" {
		return nil
	}
	return PingPostgres(c.DatabaseURL, c.DBSchema)
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
