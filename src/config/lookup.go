package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Get looks up a value by dotted path over the defaulted configuration,
// using the file's key names: "defaults.warnings.hmr_warning", "apps.0.out_dir".
// List elements are addressed by index.
func (c *Config) Get(path string) (any, error) {
	view := *c
	view.Apps = make([]AppConfig, len(c.Apps))
	for i, app := range c.Apps {
		defaulted, err := ApplyAppDefaults(app)
		if err != nil {
			return nil, fmt.Errorf("defaulting app %d: %w", i, err)
		}
		view.Apps[i] = defaulted
	}

	data, err := yaml.Marshal(&view)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if path == "" {
		return tree, nil
	}

	node := tree
	for _, key := range strings.Split(path, ".") {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[key]
			if !ok {
				return nil, fmt.Errorf("config key %q not found", path)
			}
			node = v
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(n) {
				return nil, fmt.Errorf("config key %q: index %q out of range", path, key)
			}
			node = n[i]
		default:
			return nil, fmt.Errorf("config key %q not found", path)
		}
	}
	return node, nil
}

// GetBool returns the boolean at path, or def when the key is absent or not a boolean.
func (c *Config) GetBool(path string, def bool) bool {
	v, err := c.Get(path)
	if err != nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}
