// Package converter turns the raw resource sources into the generated
// plist files the browser loads at startup.
package converter

import (
	"context"
	"log/slog"
)

// Options configures a converter run
type Options struct {
	DryRun bool         // parse and validate without writing files
	Logger *slog.Logger // defaults to slog.Default()
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Downloader fetches a remote document
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
