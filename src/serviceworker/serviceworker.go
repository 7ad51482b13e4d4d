// Package serviceworker checks for the installed service worker package and
// copies its worker scripts into a build's output.
package serviceworker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/sofmeright/packwright/src/build"
)

const (
	// Package is the npm package that ships the worker scripts.
	Package = "@angular/service-worker"

	// MinVersion is the oldest supported release of Package.
	MinVersion = "5.0.0-rc.0"

	// ConfigFile must exist in the app root when the service worker is on.
	ConfigFile = "ngsw-config.json"
)

var minVersion = masterminds.MustParse(MinVersion)

// CheckSupport verifies the service worker package is installed for the
// project and new enough. It returns the package directory.
func CheckSupport(projectRoot string) (string, error) {
	dir, ok := resolveModule(projectRoot, Package)
	if !ok {
		return "", &build.MissingDependencyError{
			Kind:   "package",
			Name:   Package,
			Detail: "service_worker is enabled but the package is not installed; install it as a dev dependency or set service_worker: false",
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", fmt.Errorf("reading %s package.json: %w", Package, err)
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("parsing %s package.json: %w", Package, err)
	}

	v, err := masterminds.NewVersion(pkg.Version)
	if err != nil {
		return "", fmt.Errorf("%s version %q: %w", Package, pkg.Version, err)
	}
	// Compare directly: a constraint would exclude prereleases.
	if v.LessThan(minVersion) {
		return "", &build.MissingDependencyError{
			Kind:   "package",
			Name:   Package,
			Detail: fmt.Sprintf("installed version %s is older than the required %s; upgrade it", v, MinVersion),
		}
	}
	return dir, nil
}

// CopyWorker copies the worker scripts from the installed package into
// outDir. safety-worker.js is also written as worker-basic.min.js for clients
// registered against the old worker name.
func CopyWorker(projectRoot, appRoot, outDir string) error {
	dir, err := CheckSupport(projectRoot)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(appRoot, ConfigFile)); err != nil {
		return &build.MissingDependencyError{
			Kind:   "file",
			Name:   ConfigFile,
			Detail: fmt.Sprintf("expected in %s; provide one or set service_worker: false", appRoot),
		}
	}

	copies := []struct{ src, dst string }{
		{"ngsw-worker.js", "ngsw-worker.js"},
		{"safety-worker.js", "safety-worker.js"},
		{"safety-worker.js", "worker-basic.min.js"},
	}
	for _, c := range copies {
		data, err := os.ReadFile(filepath.Join(dir, c.src))
		if err != nil {
			return fmt.Errorf("reading %s: %w", c.src, err)
		}
		if err := os.WriteFile(filepath.Join(outDir, c.dst), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", c.dst, err)
		}
	}
	return nil
}

// resolveModule finds node_modules/<name> in dir or any parent.
func resolveModule(dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
		if fi, err := os.Stat(filepath.Join(candidate, "package.json")); err == nil && !fi.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
