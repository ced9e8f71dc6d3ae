// Package config loads ARGUS's runtime configuration from the environment
// using struct tags, following the same shape for every subsystem: a
// top-level Config embedding one sub-struct per concern.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Graph   GraphConfig
	Vector  VectorConfig
	LLM     LLMConfig
	Sources SourcesConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"local"`
	Debug           bool          `env:"DEBUG" envDefault:"false"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr returns the host:port pair to bind the HTTP listener to.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GraphConfig holds the Neo4j connection settings.
type GraphConfig struct {
	Neo4jURI      string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	Neo4jUser     string `env:"NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD" envDefault:"argus"`
}

// IsConfigured returns true if a Neo4j URI has been supplied.
func (g *GraphConfig) IsConfigured() bool {
	return g.Neo4jURI != ""
}

// VectorConfig holds the Qdrant endpoint setting. Nothing reads it: ARGUS
// builds no vector client, and the health check reports qdrant_connected
// as false.
type VectorConfig struct {
	QdrantURL string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
}

// LLMConfig holds the Anthropic client settings shared by extraction and
// reasoning.
type LLMConfig struct {
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY" envDefault:""`
	AnthropicModel  string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	Timeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
	MaxRetries      int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
}

// IsConfigured returns true if an Anthropic API key has been supplied.
func (l *LLMConfig) IsConfigured() bool {
	return l.AnthropicAPIKey != ""
}

// SourcesConfig holds per-agent credentials for sources that require one.
type SourcesConfig struct {
	AISHubAPIKey string `env:"AISHUB_API_KEY" envDefault:""`
}

// IsLLMConfigured returns true if the extraction/reasoning LLM is usable.
func (c *Config) IsLLMConfigured() bool {
	return c.LLM.IsConfigured()
}

// NewConfig parses Config from the environment and logs the resolved
// non-secret values.
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("server_addr", cfg.Server.Addr()),
		slog.String("neo4j_uri", cfg.Graph.Neo4jURI),
		slog.String("anthropic_model", cfg.LLM.AnthropicModel),
		slog.Bool("llm_configured", cfg.IsLLMConfigured()),
		slog.Bool("aishub_configured", cfg.Sources.AISHubAPIKey != ""),
	)

	return cfg, nil
}
