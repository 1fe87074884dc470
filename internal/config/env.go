package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix for herald environment overrides.
const EnvPrefix = "HERALD_"

// LoadEnv scans the environment for HERALD_ variables and returns
// them as a tree. Path segments are separated by double underscores
// so option keys may themselves contain underscores, for example
// HERALD_VIEWS__NOTIFY__MAX_WIDTH sets views.notify.max_width.
// HERALD_LOG_LEVEL is handled by the logging package and skipped.
func LoadEnv() map[string]any {
	tree := make(map[string]any)
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if name == "HERALD_LOG_LEVEL" {
			continue
		}
		setByPath(tree, envToPath(name), parseEnvValue(value))
	}
	return tree
}

// envToPath converts HERALD_VIEWS__NOTIFY__BACKEND to
// views.notify.backend.
func envToPath(name string) []string {
	trimmed := strings.TrimPrefix(name, EnvPrefix)
	parts := strings.Split(trimmed, "__")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return parts
}

// parseEnvValue coerces an environment string into a typed value.
func parseEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// setByPath sets a value in a nested tree, creating intermediate
// maps as needed.
func setByPath(tree map[string]any, path []string, value any) {
	current := tree
	for _, part := range path[:len(path)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}
