package lint

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
)

//go:embed redis.toml
var redisStd string

// RedisStd returns the bundled standard library description of the Redis
// Lua environment.
func RedisStd() string { return redisStd }

// Global describes one standard library global.
type Global struct {
	// Property marks a global whose shape is unknown; any use is allowed.
	Property bool `toml:"property"`
	// Function marks a callable global.
	Function bool `toml:"function"`
	// Fields lists the members of a table global.
	Fields []string `toml:"fields"`
}

// HasField reports whether name is a known member of g.
func (g Global) HasField(name string) bool {
	return g.Property || slices.Contains(g.Fields, name)
}

// IsTable reports whether g is a table of known members.
func (g Global) IsTable() bool { return !g.Property && !g.Function }

// StandardLibrary is the set of globals a script may use.
type StandardLibrary struct {
	Globals map[string]Global
}

// ParseStandardLibrary decodes a TOML standard library description: one
// table per global.
func ParseStandardLibrary(src string) (*StandardLibrary, error) {
	globals := make(map[string]Global)
	if _, err := toml.Decode(src, &globals); err != nil {
		return nil, fmt.Errorf("parsing standard library: %w", err)
	}
	return &StandardLibrary{Globals: globals}, nil
}

// Lookup returns the global called name.
func (s *StandardLibrary) Lookup(name string) (Global, bool) {
	if s == nil {
		return Global{}, false
	}
	g, ok := s.Globals[name]
	return g, ok
}
