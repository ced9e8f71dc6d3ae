// Package main provides the entry point for the ARGUS intelligence server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Sportinger/argus/domain/agents"
	"github.com/Sportinger/argus/domain/extraction"
	"github.com/Sportinger/argus/domain/graph"
	"github.com/Sportinger/argus/domain/health"
	"github.com/Sportinger/argus/domain/reasoning"
	"github.com/Sportinger/argus/domain/scheduler"
	"github.com/Sportinger/argus/internal/config"
	"github.com/Sportinger/argus/internal/server"
	"github.com/Sportinger/argus/pkg/llm/anthropic"
	"github.com/Sportinger/argus/pkg/logger"
)

func main() {
	// Load .env files if present (for local development). Load() won't
	// overwrite existing vars, Overload() will, so local values win.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		server.Module,

		// LLM client shared by extraction and reasoning
		anthropic.Module,

		// Domain modules
		health.Module,
		agents.Module,
		graph.Module,
		extraction.Module,
		reasoning.Module,
		scheduler.Module,
	).Run()
}
