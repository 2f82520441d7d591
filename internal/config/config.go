// Package config loads configuration for the resource converter.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/endless-browser/resource-convert/internal/logger"
	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultPath is where init writes the config file
	DefaultPath = "./configs/resource_convert.toml"

	configName = "resource_convert"
	envPrefix  = "RESOURCE_CONVERT"
)

// HSTSPreloadURL is the Chromium preload list, served base64 encoded
const HSTSPreloadURL = "https://chromium.googlesource.com/chromium/src/net/+/master/http/transport_security_state_static.json?format=TEXT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", "0s")
	v.SetDefault("http.user_agent", "resource-convert/1.0")

	v.SetDefault("logging.level", "info")

	v.SetDefault("rulesets.repo", "https-everywhere")
	v.SetDefault("rulesets.dir", "https-everywhere/src/chrome/content/rules")
	v.SetDefault("rulesets.pattern", "*.xml")
	v.SetDefault("rulesets.revision", "")
	v.SetDefault("rulesets.label", "HTTPS Everywhere")
	v.SetDefault("rulesets.targets_output", "Endless/Resources/https-everywhere_targets.plist")
	v.SetDefault("rulesets.rules_output", "Endless/Resources/https-everywhere_rules.plist")

	v.SetDefault("blocklist.source", "urlblocker.json")
	v.SetDefault("blocklist.output", "Endless/Resources/urlblocker_targets.plist")

	v.SetDefault("preload.url", HSTSPreloadURL)
	v.SetDefault("preload.output", "Endless/Resources/hsts_preload.plist")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Load reads the config file at path, or searches ./configs and . for
// resource_convert.toml when path is empty. A missing file is only an error
// when path was given explicitly.
func Load(path string) (*models.Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg models.Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every path and URL needed for a conversion is set
func Validate(cfg *models.Config) error {
	if err := logger.ValidateLevel(cfg.Logging.Level); err != nil {
		return err
	}
	if cfg.HTTP.Timeout < 0 {
		return errors.New("http.timeout must be >= 0")
	}

	required := map[string]string{
		"rulesets.dir":            cfg.Rulesets.Dir,
		"rulesets.pattern":        cfg.Rulesets.Pattern,
		"rulesets.label":          cfg.Rulesets.Label,
		"rulesets.targets_output": cfg.Rulesets.TargetsOutput,
		"rulesets.rules_output":   cfg.Rulesets.RulesOutput,
		"blocklist.source":        cfg.Blocklist.Source,
		"blocklist.output":        cfg.Blocklist.Output,
		"preload.output":          cfg.Preload.Output,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	if cfg.Rulesets.Repo == "" && cfg.Rulesets.Revision == "" {
		return errors.New("one of rulesets.repo or rulesets.revision is required")
	}

	u, err := url.Parse(cfg.Preload.URL)
	if err != nil {
		return fmt.Errorf("invalid preload.url: %w", err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("preload.url must be an https URL: %q", cfg.Preload.URL)
	}
	return nil
}

// DefaultTOML renders the default configuration as a TOML document
func DefaultTOML() ([]byte, error) {
	v := viper.New()
	setDefaults(v)

	body, err := toml.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}

	header := "# resource-convert configuration\n" +
		"# Paths are relative to the directory the converter runs in.\n\n"
	return append([]byte(header), body...), nil
}
