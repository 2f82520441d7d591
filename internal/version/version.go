// Package version exposes build-time version metadata.
package version

// Version is embedded at build time with
// go build -ldflags "-X github.com/endless-browser/resource-convert/internal/version.Version=1.0.0"
var Version = "0.0.0-src"
