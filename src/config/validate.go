package config

import (
	"fmt"
	"slices"
	"strings"

	units "github.com/docker/go-units"
)

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error listing every violation.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Version ───────────────────────────────────────────────────────────

	if cfg.Version != latestVersion {
		errs = append(errs, fmt.Sprintf("version: must be %d, got %d", latestVersion, cfg.Version))
	}

	// ── Defaults ──────────────────────────────────────────────────────────

	if pm := cfg.Defaults.PackageManager; pm != "" && !validPackageManagers[pm] {
		errs = append(errs, fmt.Sprintf("defaults.package_manager: unknown package manager %q (supported: %s)", pm, strings.Join(sortedKeys(validPackageManagers), ", ")))
	}
	if p := cfg.Defaults.Serve.Port; p < 0 || p > 65535 {
		errs = append(errs, fmt.Sprintf("defaults.serve.port: %d is out of range", p))
	}

	// ── Apps ──────────────────────────────────────────────────────────────

	if len(cfg.Apps) == 0 {
		errs = append(errs, "apps: at least one app is required")
	}

	names := make(map[string]bool)
	for i, app := range cfg.Apps {
		apath := fmt.Sprintf("apps[%d]", i)

		if app.Name == "" {
			if len(cfg.Apps) > 1 {
				errs = append(errs, fmt.Sprintf("%s: name is required when more than one app is configured", apath))
			}
		} else if names[app.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate app name %q", apath, app.Name))
		} else {
			names[app.Name] = true
		}

		if app.Platform != "" && !validPlatforms[app.Platform] {
			errs = append(errs, fmt.Sprintf("%s: unknown platform %q (supported: %s)", apath, app.Platform, strings.Join(sortedKeys(validPlatforms), ", ")))
		}

		for ai, asset := range app.Assets {
			if asset.Glob == "" && asset.Input == "" {
				errs = append(errs, fmt.Sprintf("%s.assets[%d]: glob or input is required", apath, ai))
			}
		}

		for si, s := range app.Scripts {
			if s.Input == "" {
				errs = append(errs, fmt.Sprintf("%s.scripts[%d]: input is required", apath, si))
			}
		}
		for si, s := range app.Styles {
			if s.Input == "" {
				errs = append(errs, fmt.Sprintf("%s.styles[%d]: input is required", apath, si))
			}
		}

		for bi, b := range app.Budgets {
			errs = append(errs, validateBudget(b, fmt.Sprintf("%s.budgets[%d]", apath, bi))...)
		}

		if len(app.Environments) > 0 && app.EnvironmentSource == "" {
			warnings = append(warnings, fmt.Sprintf("%s: environments are set but environment_source is missing; builds will fail", apath))
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

// validateBudget checks a budget's type and size syntax.
func validateBudget(b Budget, path string) []string {
	var errs []string

	if !validBudgetTypes[b.Type] {
		errs = append(errs, fmt.Sprintf("%s: unknown budget type %q (supported: %s)", path, b.Type, strings.Join(sortedKeys(validBudgetTypes), ", ")))
	}
	if b.Type == "bundle" && b.Name == "" {
		errs = append(errs, fmt.Sprintf("%s: budget type bundle requires name", path))
	}
	if b.MaximumWarning == "" && b.MaximumError == "" {
		errs = append(errs, fmt.Sprintf("%s: maximum_warning or maximum_error is required", path))
	}
	for _, size := range []string{b.MaximumWarning, b.MaximumError} {
		if size == "" {
			continue
		}
		if _, err := ParseSize(size); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
		}
	}

	return errs
}

// ParseSize parses a budget size such as "500kb", "2mb" or "1024".
// Units are binary (1kb = 1024 bytes).
func ParseSize(s string) (int64, error) {
	n, err := units.RAMInBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
