// Package utils provides shared utilities for text, math, and logging.
package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger. Debug mode uses the development config
// (human-readable, debug level); otherwise the production config is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
