package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".packwright.yml"

// Config is the top-level packwright project configuration.
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Project  ProjectConfig  `yaml:"project" toml:"project"`
	Defaults DefaultsConfig `yaml:"defaults" toml:"defaults"`
	Apps     []AppConfig    `yaml:"apps" toml:"apps"`

	// path is the file the config was read from, empty for built-in defaults.
	path string
}

// ProjectConfig identifies the project.
type ProjectConfig struct {
	Name string `yaml:"name" toml:"name"`
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Root returns the project root: the directory holding the config file, or
// the working directory when running on built-in defaults.
func (c *Config) Root() (string, error) {
	if c.path == "" {
		return os.Getwd()
	}
	return filepath.Abs(filepath.Dir(c.path))
}

// App returns the app with the given name. An empty name selects the first app.
func (c *Config) App(name string) (AppConfig, error) {
	if len(c.Apps) == 0 {
		return AppConfig{}, fmt.Errorf("no apps configured")
	}
	if name == "" {
		return c.Apps[0], nil
	}
	for _, app := range c.Apps {
		if app.Name == name {
			return app, nil
		}
	}
	return AppConfig{}, fmt.Errorf("app %q not found", name)
}

// Load reads configuration from a YAML or TOML file.
// If path is empty, it tries the default file and falls back to built-in
// defaults when that file doesn't exist. An explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			cfg := defaults()
			cfg.Apps = []AppConfig{{}}
			return cfg, nil
		}
		return nil, err
	}

	cfg, err := Parse(data, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Format is a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func formatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Parse decodes raw config bytes on top of the built-in defaults and checks
// the schema version.
func Parse(data []byte, format Format) (*Config, error) {
	ver, err := peekVersion(data, format)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(ver); err != nil {
		return nil, err
	}

	cfg := defaults()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Version:  1,
		Defaults: DefaultDefaultsConfig(),
	}
}
