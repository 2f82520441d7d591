package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/endless-browser/resource-convert/internal/output"
	"github.com/endless-browser/resource-convert/internal/parser"
	"github.com/endless-browser/resource-convert/internal/revision"
	"github.com/spf13/afero"
)

// RulesetConverter converts a directory of HTTPS Everywhere rulesets into a
// targets plist (host -> ruleset name) and a rules plist (name -> ruleset)
type RulesetConverter struct {
	fs       afero.Fs
	cfg      models.RulesetsConfig
	revision revision.Func
	opts     Options
}

// RulesetResult summarizes a ruleset conversion
type RulesetResult struct {
	Revision   string
	Skipped    bool // previous output already matches Revision
	Files      int
	Rulesets   int
	Targets    int
	Disabled   int
	Normalized int
}

// RulesetIndex holds the two ruleset outputs
type RulesetIndex struct {
	Targets map[string]string
	Rules   map[string]models.RulesetDocument
}

// NewRulesetConverter creates a ruleset converter
func NewRulesetConverter(fs afero.Fs, cfg models.RulesetsConfig, rev revision.Func, opts Options) *RulesetConverter {
	return &RulesetConverter{
		fs:       fs,
		cfg:      cfg,
		revision: rev,
		opts:     opts,
	}
}

// PreviousManifest parses the header of the existing targets plist. A
// missing file or foreign header yields an empty manifest.
func (c *RulesetConverter) PreviousManifest() (models.Manifest, error) {
	line, err := output.ReadHeader(c.fs, c.cfg.TargetsOutput)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("read previous targets: %w", err)
	}
	m, _ := models.ParseManifest(c.cfg.Label, line)
	return m, nil
}

// Run converts the rulesets unless the previous output was generated from
// the current revision. force converts regardless.
func (c *RulesetConverter) Run(ctx context.Context, force bool) (RulesetResult, error) {
	log := c.opts.logger()

	rev, err := c.revision(ctx)
	if err != nil {
		return RulesetResult{}, fmt.Errorf("ruleset revision: %w", err)
	}
	result := RulesetResult{Revision: rev}

	prev, err := c.PreviousManifest()
	if err != nil {
		return result, err
	}
	if prev.Matches(rev) && !force {
		log.Info("rulesets up to date", "revision", rev, "output", c.cfg.TargetsOutput)
		result.Skipped = true
		return result, nil
	}

	files, err := afero.Glob(c.fs, filepath.Join(c.cfg.Dir, c.cfg.Pattern))
	if err != nil {
		return result, fmt.Errorf("list rulesets: %w", err)
	}
	sort.Strings(files)
	log.Debug("found ruleset files", "dir", c.cfg.Dir, "files", len(files))

	idx, stats, err := c.Build(files)
	if err != nil {
		return result, err
	}

	result.Files = stats.Files
	result.Disabled = stats.Disabled
	result.Normalized = stats.Normalized
	result.Rulesets = len(idx.Rules)
	result.Targets = len(idx.Targets)

	log.Info("converted rulesets",
		"revision", rev,
		"files", result.Files,
		"rulesets", result.Rulesets,
		"targets", result.Targets,
		"disabled", result.Disabled,
		"normalized", result.Normalized)

	if c.opts.DryRun {
		return result, nil
	}

	manifest := models.Manifest{Label: c.cfg.Label, Revision: rev}
	if err := output.Write(c.fs, c.cfg.TargetsOutput, manifest.Provenance(), idx.Targets); err != nil {
		return result, fmt.Errorf("write targets: %w", err)
	}
	if err := output.Write(c.fs, c.cfg.RulesOutput, manifest.Provenance(), idx.Rules); err != nil {
		return result, fmt.Errorf("write rules: %w", err)
	}
	return result, nil
}

// Build parses and validates files in order. Disabled rulesets are dropped.
func (c *RulesetConverter) Build(files []string) (*RulesetIndex, parser.Stats, error) {
	log := c.opts.logger()
	p := parser.New()
	idx := NewRulesetIndex()

	for _, f := range files {
		data, err := afero.ReadFile(c.fs, f)
		if err != nil {
			return nil, p.Stats(), fmt.Errorf("read ruleset: %w", err)
		}

		rs, err := p.ParseRuleset(f, data)
		if err != nil {
			return nil, p.Stats(), err
		}
		if rs.Disabled() {
			log.Debug("skipping disabled ruleset", "name", rs.Name, "file", f, "reason", rs.DefaultOff)
			continue
		}

		if err := idx.Add(f, rs); err != nil {
			return nil, p.Stats(), err
		}
	}

	return idx, p.Stats(), nil
}

// NewRulesetIndex creates an empty index
func NewRulesetIndex() *RulesetIndex {
	return &RulesetIndex{
		Targets: make(map[string]string),
		Rules:   make(map[string]models.RulesetDocument),
	}
}

// Add validates rs and records it along with its targets. source names the
// file rs was read from.
func (idx *RulesetIndex) Add(source string, rs models.RuleSet) error {
	if _, ok := idx.Rules[rs.Name]; ok {
		return &models.ConvertError{
			Kind:   models.ErrNameCollision,
			Source: source,
			Detail: fmt.Sprintf("ruleset %q already defined", rs.Name),
		}
	}

	if err := ValidatePatterns(rs); err != nil {
		var ce *models.ConvertError
		if errors.As(err, &ce) {
			ce.Source = source
			ce.Raw = fmt.Sprintf("%+v", rs)
		}
		return err
	}

	for _, t := range rs.Targets {
		if owner, ok := idx.Targets[t.Host]; ok && owner != rs.Name {
			return &models.ConvertError{
				Kind:   models.ErrTargetCollision,
				Source: source,
				Detail: fmt.Sprintf("rules already exist for %s (ruleset %q)", t.Host, owner),
			}
		}
	}

	idx.Rules[rs.Name] = models.RulesetDocument{Ruleset: rs}
	for _, t := range rs.Targets {
		idx.Targets[t.Host] = rs.Name
	}
	return nil
}
