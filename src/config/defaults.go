package config

import (
	"maps"
	"slices"

	"dario.cat/mergo"
)

// DefaultsConfig holds project-wide settings that are not tied to one app.
type DefaultsConfig struct {
	// PackageManager is "default", "npm", "yarn", "cnpm" or "pnpm".
	PackageManager string         `yaml:"package_manager" toml:"package_manager"`
	Warnings       WarningsConfig `yaml:"warnings" toml:"warnings"`
	Serve          ServeConfig    `yaml:"serve" toml:"serve"`
}

// WarningsConfig toggles advisory messages.
type WarningsConfig struct {
	HMRWarning       bool `yaml:"hmr_warning" toml:"hmr_warning"`
	ServePathDefault bool `yaml:"serve_path_default" toml:"serve_path_default"`
}

// ServeConfig holds dev-server defaults.
type ServeConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// DefaultDefaultsConfig returns the built-in project defaults.
func DefaultDefaultsConfig() DefaultsConfig {
	return DefaultsConfig{
		PackageManager: "default",
		Warnings: WarningsConfig{
			HMRWarning:       true,
			ServePathDefault: true,
		},
		Serve: ServeConfig{
			Host: "localhost",
			Port: 4200,
		},
	}
}

var validPackageManagers = map[string]bool{
	"default": true,
	"npm":     true,
	"yarn":    true,
	"cnpm":    true,
	"pnpm":    true,
}

// appDefaults are filled into empty AppConfig fields.
var appDefaults = AppConfig{
	Root:     "src",
	OutDir:   "dist",
	Index:    "index.html",
	Tsconfig: "tsconfig.app.json",
	Platform: PlatformBrowser,
}

// ApplyAppDefaults returns a copy of app with empty fields filled in.
// TestTsconfig falls back to the (defaulted) Tsconfig. The caller's value is
// never modified.
func ApplyAppDefaults(app AppConfig) (AppConfig, error) {
	out := cloneApp(app)

	if err := mergo.Merge(&out, appDefaults); err != nil {
		return AppConfig{}, err
	}
	if out.TestTsconfig == "" {
		out.TestTsconfig = out.Tsconfig
	}
	// mergo never copies an empty slice over a nil one.
	if out.Scripts == nil {
		out.Scripts = []ExtraEntry{}
	}
	if out.Styles == nil {
		out.Styles = []ExtraEntry{}
	}
	return out, nil
}

// cloneApp copies the reference-typed fields so later edits never reach the
// original config.
func cloneApp(app AppConfig) AppConfig {
	out := app
	out.Scripts = slices.Clone(app.Scripts)
	out.Styles = slices.Clone(app.Styles)
	out.Assets = slices.Clone(app.Assets)
	out.Budgets = slices.Clone(app.Budgets)
	out.LazyModules = slices.Clone(app.LazyModules)
	if app.Environments != nil {
		out.Environments = maps.Clone(app.Environments)
	}
	return out
}
