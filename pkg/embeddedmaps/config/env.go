package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	PORT               - Server port (default: "8080")
//	ENVIRONMENT        - Runtime environment (default: "development")
//	DATABASE_URL       - "memory" (default) or "postgresql://..."
//	DB_SCHEMA          - Postgres schema (default: "maps")
//	FIXTURES_PATH      - YAML fixtures loaded at startup
//	ENABLE_GEOLOCATION - Use stored venue coordinates (default: true)
//	ENABLE_EMBED_LOG   - Log every embedded map (default: true)
//	MAP_DEFAULT_WIDTH  - Default map width (default: "100%")
//	MAP_DEFAULT_HEIGHT - Default map height (default: "350px")
//	MAP_TILE_HOST      - Map service host (default: "www.openstreetmap.org")
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}

		if v, ok := lookupEnv(prefix, "DB_SCHEMA"); ok && v != "" {
			c.DBSchema = v
		}
		if v, ok := lookupEnv(prefix, "FIXTURES_PATH"); ok {
			c.FixturesPath = v
		}

		geo, ok, err := parseBoolEnv(prefix, "ENABLE_GEOLOCATION")
		if err != nil {
			return err
		}
		if ok {
			c.EnableGeoLocation = geo
		}
		embedLog, ok, err := parseBoolEnv(prefix, "ENABLE_EMBED_LOG")
		if err != nil {
			return err
		}
		if ok {
			c.EnableEmbedLog = embedLog
		}

		if v, ok := lookupEnv(prefix, "MAP_DEFAULT_WIDTH"); ok {
			c.DefaultWidth = v
		}
		if v, ok := lookupEnv(prefix, "MAP_DEFAULT_HEIGHT"); ok {
			c.DefaultHeight = v
		}
		if v, ok := lookupEnv(prefix, "MAP_TILE_HOST"); ok && v != "" {
			c.TileHost = v
		}

		return nil
	}
}

// applyDatabaseEnv applies database configuration from environment
func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")

	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}

func parseBoolEnv(prefix, key string) (bool, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid boolean for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}
