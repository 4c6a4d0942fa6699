package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment variables read by ApplyEnv.
const EnvPrefix = "TEXTCORE_"

// EnvConfigFile names the variable holding the config file path. It is
// not a setting and ApplyEnv skips it.
const EnvConfigFile = EnvPrefix + "CONFIG"

// ApplyEnv overrides cfg with TEXTCORE_* entries of environ, given as
// KEY=value pairs. Unknown settings are ignored.
func ApplyEnv(cfg *Config, environ []string) error {
	overrides := make(map[string]any)
	for _, env := range environ {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok || name == EnvConfigFile {
			continue
		}
		path := envToPath(name)
		if !strings.Contains(path, ".") {
			continue
		}
		setByPath(overrides, path, parseValue(value))
	}
	if len(overrides) == 0 {
		return nil
	}

	// Round-trip through TOML so the overrides decode with the same field
	// mapping as a config file.
	data, err := toml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encoding environment overrides: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &ParseError{Path: "environment", Message: err.Error(), Err: err}
	}
	return nil
}

// envToPath converts TEXTCORE_ENGINE_UNDO_LIMIT to engine.undoLimit.
func envToPath(env string) string {
	name := strings.TrimPrefix(env, EnvPrefix)
	parts := strings.Split(name, "_")

	// First part is the section, the rest form the camelCase setting name.
	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}
	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if len(part) > 0 {
			setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + setting
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}
	current[parts[len(parts)-1]] = value
}
