package converter

import (
	"context"
	"fmt"

	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/endless-browser/resource-convert/internal/output"
	"github.com/endless-browser/resource-convert/internal/parser"
	"github.com/spf13/afero"
)

// PreloadConverter converts the remote HSTS preload list into
// host -> include_subdomains
type PreloadConverter struct {
	fs      afero.Fs
	cfg     models.PreloadConfig
	fetcher Downloader
	opts    Options
}

// PreloadResult summarizes a preload list conversion
type PreloadResult struct {
	Hosts             int
	IncludeSubdomains int
}

// NewPreloadConverter creates a preload list converter
func NewPreloadConverter(fs afero.Fs, cfg models.PreloadConfig, fetcher Downloader, opts Options) *PreloadConverter {
	return &PreloadConverter{fs: fs, cfg: cfg, fetcher: fetcher, opts: opts}
}

// Run downloads and converts the preload list. Nothing is cached.
func (c *PreloadConverter) Run(ctx context.Context) (PreloadResult, error) {
	log := c.opts.logger()

	log.Debug("fetching preload list", "url", c.cfg.URL)
	body, err := c.fetcher.Fetch(ctx, c.cfg.URL)
	if err != nil {
		return PreloadResult{}, err
	}

	entries, err := parser.DecodePreload(c.cfg.URL, body)
	if err != nil {
		return PreloadResult{}, err
	}

	hosts := make(map[string]models.PreloadFlags, len(entries))
	for _, e := range entries {
		hosts[e.Name] = models.PreloadFlags{IncludeSubdomains: e.IncludeSubdomains}
	}

	var result PreloadResult
	result.Hosts = len(hosts)
	for _, f := range hosts {
		if f.IncludeSubdomains {
			result.IncludeSubdomains++
		}
	}

	log.Info("converted preload list",
		"url", c.cfg.URL,
		"hosts", result.Hosts,
		"include_subdomains", result.IncludeSubdomains)

	if c.opts.DryRun {
		return result, nil
	}

	if err := output.Write(c.fs, c.cfg.Output, c.cfg.URL, hosts); err != nil {
		return result, fmt.Errorf("write preload list: %w", err)
	}
	return result, nil
}
