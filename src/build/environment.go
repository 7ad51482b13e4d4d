package build

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/sofmeright/packwright/src/config"
)

// EnvironmentReplacements maps the app's environment source file to the file
// for the selected environment, both absolute. An app without environments
// yields nil.
func EnvironmentReplacements(appRoot string, app config.AppConfig, environment string) (map[string]string, error) {
	if len(app.Environments) == 0 {
		return nil, nil
	}
	if app.EnvironmentSource == "" {
		return nil, &MissingDependencyError{
			Kind:   "environment source",
			Name:   environment,
			Detail: "environments are configured without environment_source; add environment_source pointing at the file every environment replaces",
		}
	}
	file, ok := app.Environments[environment]
	if !ok {
		names := make([]string, 0, len(app.Environments))
		for name := range app.Environments {
			names = append(names, name)
		}
		slices.Sort(names)
		return nil, &MissingDependencyError{
			Kind:   "environment",
			Name:   environment,
			Detail: "not listed in environments (available: " + strings.Join(names, ", ") + ")",
		}
	}
	return map[string]string{
		absUnder(appRoot, app.EnvironmentSource): absUnder(appRoot, file),
	}, nil
}

// LazyModules maps each declared lazy module to its absolute path under the
// app root. With check set, a module missing from disk is an error.
func LazyModules(projectRoot string, app config.AppConfig, check func(string) bool) (map[string]string, error) {
	if len(app.LazyModules) == 0 {
		return nil, nil
	}
	appRoot := absUnder(projectRoot, app.Root)
	out := make(map[string]string, len(app.LazyModules))
	for _, m := range app.LazyModules {
		p := filepath.Join(appRoot, m)
		if check != nil && !check(p) {
			return nil, &MissingDependencyError{Kind: "lazy module", Name: m, Detail: "not found at " + p}
		}
		out[m] = p
	}
	return out, nil
}
