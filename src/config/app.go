package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Platform values for AppConfig.Platform.
const (
	PlatformBrowser = "browser"
	PlatformServer  = "server"
)

// AppConfig describes one application in the project. Paths are relative to
// the project root (Root, OutDir) or to the app root (everything else).
type AppConfig struct {
	Name      string `yaml:"name,omitempty" toml:"name,omitempty"`
	Root      string `yaml:"root" toml:"root"`
	OutDir    string `yaml:"out_dir" toml:"out_dir"`
	DeployURL string `yaml:"deploy_url,omitempty" toml:"deploy_url,omitempty"`
	BaseHref  string `yaml:"base_href,omitempty" toml:"base_href,omitempty"`
	Index     string `yaml:"index" toml:"index"`

	// Main and Polyfills become the "main" and "polyfills" entry points.
	Main      string `yaml:"main,omitempty" toml:"main,omitempty"`
	Polyfills string `yaml:"polyfills,omitempty" toml:"polyfills,omitempty"`

	Tsconfig     string `yaml:"tsconfig" toml:"tsconfig"`
	TestTsconfig string `yaml:"test_tsconfig,omitempty" toml:"test_tsconfig,omitempty"`

	// Global scripts and styles, bundled per entry name.
	Scripts []ExtraEntry `yaml:"scripts" toml:"scripts"`
	Styles  []ExtraEntry `yaml:"styles" toml:"styles"`

	// Assets are static copy rules.
	Assets []AssetEntry `yaml:"assets,omitempty" toml:"assets,omitempty"`

	Budgets []Budget `yaml:"budgets,omitempty" toml:"budgets,omitempty"`

	// Platform is "browser" or "server".
	Platform string `yaml:"platform" toml:"platform"`

	// EnvironmentSource is the file swapped out for the selected environment file.
	EnvironmentSource string            `yaml:"environment_source,omitempty" toml:"environment_source,omitempty"`
	Environments      map[string]string `yaml:"environments,omitempty" toml:"environments,omitempty"`

	LazyModules   []string `yaml:"lazy_modules,omitempty" toml:"lazy_modules,omitempty"`
	ServiceWorker bool     `yaml:"service_worker,omitempty" toml:"service_worker,omitempty"`
}

// ExtraEntry is a global script or style reference.
type ExtraEntry struct {
	Input  string `yaml:"input" toml:"input"`
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`
	Lazy   bool   `yaml:"lazy,omitempty" toml:"lazy,omitempty"`
}

// UnmarshalYAML accepts both forms:
//
//	scripts:
//	  - node_modules/jquery/dist/jquery.js
//	  - { input: lazy.js, lazy: true }
func (e *ExtraEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*e = ExtraEntry{Input: value.Value}
		return nil
	case yaml.MappingNode:
		type entryAlias ExtraEntry
		var alias entryAlias
		if err := value.Decode(&alias); err != nil {
			return fmt.Errorf("extra entry: %w", err)
		}
		*e = ExtraEntry(alias)
		return nil
	}
	return fmt.Errorf("extra entry: expected string or map, got YAML kind %d", value.Kind)
}

// AssetEntry is a static asset copy rule as written in the config file.
type AssetEntry struct {
	Glob               string `yaml:"glob,omitempty" toml:"glob,omitempty"`
	Input              string `yaml:"input,omitempty" toml:"input,omitempty"`
	Output             string `yaml:"output,omitempty" toml:"output,omitempty"`
	AllowOutsideOutDir bool   `yaml:"allow_outside_out_dir,omitempty" toml:"allow_outside_out_dir,omitempty"`
}

// UnmarshalYAML accepts a bare glob string or a rule map.
func (a *AssetEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*a = AssetEntry{Glob: value.Value}
		return nil
	case yaml.MappingNode:
		type assetAlias AssetEntry
		var alias assetAlias
		if err := value.Decode(&alias); err != nil {
			return fmt.Errorf("asset: %w", err)
		}
		*a = AssetEntry(alias)
		return nil
	}
	return fmt.Errorf("asset: expected string or map, got YAML kind %d", value.Kind)
}

// Budget is a size threshold on the build output.
//
// Type selects what is measured:
//   - initial: main, polyfills and every eager global bundle together
//   - all / allScript: every output file / every script output together
//   - any / anyScript: each output file / each script output on its own
//   - bundle: the outputs of the named entry
type Budget struct {
	Type           string `yaml:"type" toml:"type"`
	Name           string `yaml:"name,omitempty" toml:"name,omitempty"`
	MaximumWarning string `yaml:"maximum_warning,omitempty" toml:"maximum_warning,omitempty"`
	MaximumError   string `yaml:"maximum_error,omitempty" toml:"maximum_error,omitempty"`
}

var validBudgetTypes = map[string]bool{
	"initial":   true,
	"all":       true,
	"allScript": true,
	"any":       true,
	"anyScript": true,
	"bundle":    true,
}

var validPlatforms = map[string]bool{
	PlatformBrowser: true,
	PlatformServer:  true,
}
