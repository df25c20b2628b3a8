// Package logging builds the zap loggers used across recipe-chat.
package logging

import "go.uber.org/zap"

// NewLogger returns a zap logger. When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level).
// When file is non-empty, output goes there instead of stderr so the terminal UI stays intact.
func NewLogger(debug bool, file string) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if file != "" {
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}
	return cfg.Build()
}
