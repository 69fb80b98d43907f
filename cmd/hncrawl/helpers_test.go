package main

import (
	"log/slog"

	hnlog "github.com/nao1215/hncrawl/internal/log"
)

// newDiscardLogger returns a logger with no sinks.
func newDiscardLogger() (*slog.Logger, func() error, error) {
	return hnlog.Setup(hnlog.Options{})
}
