package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the application logger. Production deployments run with
// LOG_FORMAT=json; anything else gets the readable text handler. Non-prod
// also enables debug so authenticator chain decisions are visible.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
