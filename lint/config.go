package lint

import (
	_ "embed"
	"fmt"
	"maps"

	"github.com/BurntSushi/toml"
)

//go:embed lint.toml
var defaultConfig string

// Level is the configured reaction to a rule.
type Level string

const (
	Allow Level = "allow"
	Warn  Level = "warn"
	Deny  Level = "deny"
)

// Config selects a level for every rule by code.
type Config struct {
	Rules map[string]Level `toml:"rules"`
}

// ParseConfig decodes a TOML lint configuration.
func ParseConfig(src string) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(src, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing lint config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the bundled configuration. It panics if the bundled
// file is malformed.
func DefaultConfig() Config {
	cfg, err := ParseConfig(defaultConfig)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Merge returns c with every rule level of overlay applied on top.
func (c Config) Merge(overlay Config) Config {
	out := Config{Rules: make(map[string]Level, len(c.Rules)+len(overlay.Rules))}
	maps.Copy(out.Rules, c.Rules)
	maps.Copy(out.Rules, overlay.Rules)
	return out
}
