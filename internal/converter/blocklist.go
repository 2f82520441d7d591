package converter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/endless-browser/resource-convert/internal/output"
	"github.com/endless-browser/resource-convert/internal/parser"
	"github.com/spf13/afero"
)

// BlocklistConverter flattens the URL blocker JSON into domain -> company
type BlocklistConverter struct {
	fs   afero.Fs
	cfg  models.BlocklistConfig
	opts Options
}

// BlocklistResult summarizes a blocklist conversion
type BlocklistResult struct {
	Domains   int
	Companies int
}

// NewBlocklistConverter creates a blocklist converter
func NewBlocklistConverter(fs afero.Fs, cfg models.BlocklistConfig, opts Options) *BlocklistConverter {
	return &BlocklistConverter{fs: fs, cfg: cfg, opts: opts}
}

// Run always reconverts the blocklist
func (c *BlocklistConverter) Run(ctx context.Context) (BlocklistResult, error) {
	if err := ctx.Err(); err != nil {
		return BlocklistResult{}, err
	}

	data, err := afero.ReadFile(c.fs, c.cfg.Source)
	if err != nil {
		return BlocklistResult{}, fmt.Errorf("read blocklist: %w", err)
	}

	targets, err := parser.ParseBlocklist(c.cfg.Source, data)
	if err != nil {
		return BlocklistResult{}, err
	}

	companies := make(map[string]struct{})
	for _, company := range targets {
		companies[company] = struct{}{}
	}
	result := BlocklistResult{Domains: len(targets), Companies: len(companies)}

	c.opts.logger().Info("converted blocklist",
		"source", c.cfg.Source,
		"domains", result.Domains,
		"companies", result.Companies)

	if c.opts.DryRun {
		return result, nil
	}

	if err := output.Write(c.fs, c.cfg.Output, filepath.Base(c.cfg.Source), targets); err != nil {
		return result, fmt.Errorf("write blocklist: %w", err)
	}
	return result, nil
}
