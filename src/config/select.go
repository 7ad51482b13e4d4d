package config

import (
	"fmt"
	"regexp"
	"strings"
)

// SelectApps returns the apps whose names match patterns, in config order.
// No patterns selects the first app.
//
// Pattern syntax:
//
//	"web"        exact name
//	"web-.*"     anchored regex
//	"!admin"     exclude (checked before includes)
//
// Only excludes means every app not excluded. A pattern that is not a valid
// regex matches literally.
func (c *Config) SelectApps(patterns []string) ([]AppConfig, error) {
	if len(patterns) == 0 {
		app, err := c.App("")
		if err != nil {
			return nil, err
		}
		return []AppConfig{app}, nil
	}

	var out []AppConfig
	for _, app := range c.Apps {
		if MatchPatterns(patterns, app.Name) {
			out = append(out, app)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no app matches %s", strings.Join(patterns, ", "))
	}
	return out, nil
}

// MatchPatterns reports whether value passes the include/exclude patterns.
// An empty list allows everything.
func MatchPatterns(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}

	var includes, excludes []string
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") {
			excludes = append(excludes, p[1:])
		} else {
			includes = append(includes, p)
		}
	}

	for _, p := range excludes {
		if matchPattern(p, value) {
			return false
		}
	}
	if len(includes) == 0 {
		return true
	}
	for _, p := range includes {
		if matchPattern(p, value) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, value string) bool {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return pattern == value
	}
	return re.MatchString(value)
}
