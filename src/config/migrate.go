package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// latestVersion is the only schema version this release understands.
const latestVersion = 1

// checkVersion rejects configs written for another schema.
//
// Version chain:
//
//	version 1 → current
//
// Future schema changes add a conversion step here.
func checkVersion(ver int) error {
	switch ver {
	case latestVersion:
		return nil
	case 0:
		return fmt.Errorf("config has no version field; add \"version: %d\" at the top of the file", latestVersion)
	default:
		return fmt.Errorf("unknown config version %d (latest supported: %d)", ver, latestVersion)
	}
}

// peekVersion extracts the version field without full parsing.
// Returns 0 if no version field is present.
func peekVersion(data []byte, format Format) (int, error) {
	var probe struct {
		Version int `yaml:"version" toml:"version"`
	}

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &probe)
	default:
		err = yaml.Unmarshal(data, &probe)
	}
	if err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	return probe.Version, nil
}
