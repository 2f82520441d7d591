package models

import (
	"path/filepath"
	"time"
)

// Config represents the main configuration
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Rulesets  RulesetsConfig  `mapstructure:"rulesets"`
	Blocklist BlocklistConfig `mapstructure:"blocklist"`
	Preload   PreloadConfig   `mapstructure:"preload"`
}

// HTTPConfig contains HTTP client settings. A zero Timeout means no timeout.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// LoggingConfig contains log settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// RulesetsConfig describes the HTTPS Everywhere checkout and its two outputs
type RulesetsConfig struct {
	Repo          string `mapstructure:"repo"`     // git checkout used for the revision
	Dir           string `mapstructure:"dir"`      // directory holding the ruleset files
	Pattern       string `mapstructure:"pattern"`  // glob matched inside Dir
	Revision      string `mapstructure:"revision"` // overrides the git revision when set
	Label         string `mapstructure:"label"`    // provenance label written before the revision
	TargetsOutput string `mapstructure:"targets_output"`
	RulesOutput   string `mapstructure:"rules_output"`
}

// BlocklistConfig describes the URL blocker source and output
type BlocklistConfig struct {
	Source string `mapstructure:"source"`
	Output string `mapstructure:"output"`
}

// PreloadConfig describes the HSTS preload list source and output
type PreloadConfig struct {
	URL    string `mapstructure:"url"`
	Output string `mapstructure:"output"`
}

// Source is a configured input along with the files generated from it
type Source struct {
	Name    string
	Input   string
	Outputs []string
}

// Sources returns every configured input in conversion order
func (c *Config) Sources() []Source {
	return []Source{
		{
			Name:    "rulesets",
			Input:   filepath.Join(c.Rulesets.Dir, c.Rulesets.Pattern),
			Outputs: []string{c.Rulesets.TargetsOutput, c.Rulesets.RulesOutput},
		},
		{
			Name:    "blocklist",
			Input:   c.Blocklist.Source,
			Outputs: []string{c.Blocklist.Output},
		},
		{
			Name:    "preload",
			Input:   c.Preload.URL,
			Outputs: []string{c.Preload.Output},
		},
	}
}
