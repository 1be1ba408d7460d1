package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithFixtures loads YAML fixtures into the repository at startup
func WithFixtures(path string) Option {
	return func(c *ServerConfig) error {
		c.FixturesPath = path
		return nil
	}
}

// WithGeoLocation toggles use of stored venue coordinates
func WithGeoLocation(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableGeoLocation = enabled
		return nil
	}
}

// WithEmbedLog toggles logging of every embedded map
func WithEmbedLog(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEmbedLog = enabled
		return nil
	}
}

// WithDefaultDimensions overrides the default map width and height.
// Empty values keep the built-in defaults.
func WithDefaultDimensions(width, height string) Option {
	return func(c *ServerConfig) error {
		c.DefaultWidth = width
		c.DefaultHeight = height
		return nil
	}
}

// WithTileHost sets the map service host
func WithTileHost(host string) Option {
	return func(c *ServerConfig) error {
		if host == "" {
			return fmt.Errorf("tile host cannot be empty")
		}
		c.TileHost = host
		return nil
	}
}
