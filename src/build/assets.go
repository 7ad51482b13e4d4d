package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sofmeright/packwright/src/config"
)

// AssetRule is a declared static-asset copy directive. Input is relative to
// the app root, Output to the output root.
type AssetRule struct {
	Input              string
	Output             string
	Glob               string
	AllowOutsideOutDir bool
}

// AssetRuleFrom converts a configured asset entry.
func AssetRuleFrom(e config.AssetEntry) AssetRule {
	return AssetRule{
		Input:              e.Input,
		Output:             e.Output,
		Glob:               e.Glob,
		AllowOutsideOutDir: e.AllowOutsideOutDir,
	}
}

// SanitizedAssetRule is an asset rule that passed the safety checks.
// Input is absolute and ends in a separator when it names a directory;
// Output is the absolute destination directory.
type SanitizedAssetRule struct {
	Input  string `yaml:"input"`
	Glob   string `yaml:"glob"`
	Output string `yaml:"output"`
}

// DirChecker reports whether a path names an existing directory.
type DirChecker interface {
	IsDir(path string) bool
}

// DirCheckerFunc adapts a function to DirChecker.
type DirCheckerFunc func(path string) bool

func (f DirCheckerFunc) IsDir(path string) bool { return f(path) }

// OSDirChecker consults the local filesystem.
type OSDirChecker struct{}

func (OSDirChecker) IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// AssetChecker validates asset rules against the project, app and output
// roots. All roots must be absolute. A nil Dirs treats nothing as a directory.
type AssetChecker struct {
	ProjectRoot string
	AppRoot     string
	OutputRoot  string
	Dirs        DirChecker
}

// Check normalizes one rule and rejects it if it reads outside the project or
// writes outside the output root. Writing outside the output root but inside
// the project is allowed only with AllowOutsideOutDir.
func (c AssetChecker) Check(rule AssetRule) (SanitizedAssetRule, error) {
	input := absUnder(c.AppRoot, rule.Input)
	glob := rule.Glob

	if c.isDir(input) {
		input = withTrailingSep(input)
	}
	if c.isDir(filepath.Join(input, glob)) {
		if glob == "" {
			glob = "**/*"
		} else {
			glob = strings.TrimSuffix(glob, "/") + "/**/*"
		}
	}

	if escapes(c.ProjectRoot, input) {
		return SanitizedAssetRule{}, &PathSafetyError{Path: input, Boundary: BoundaryProjectRead}
	}

	output := absUnder(c.OutputRoot, rule.Output)
	if escapes(c.OutputRoot, output) {
		if escapes(c.ProjectRoot, output) {
			return SanitizedAssetRule{}, &PathSafetyError{Path: output, Boundary: BoundaryProjectWrite}
		}
		if !rule.AllowOutsideOutDir {
			return SanitizedAssetRule{}, &PathSafetyError{Path: output, Boundary: BoundaryOutputDir, Overridable: true}
		}
	}

	return SanitizedAssetRule{Input: input, Glob: glob, Output: output}, nil
}

// CheckAll checks rules in order and stops at the first violation.
func (c AssetChecker) CheckAll(rules []AssetRule) ([]SanitizedAssetRule, error) {
	out := make([]SanitizedAssetRule, 0, len(rules))
	for _, r := range rules {
		s, err := c.Check(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c AssetChecker) isDir(path string) bool {
	return c.Dirs != nil && c.Dirs.IsDir(path)
}

// Contains reports whether p lies inside the tree rooted at root.
func Contains(root, p string) bool {
	return !escapes(root, p)
}

// escapes reports whether target lies outside the tree rooted at base.
func escapes(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}

func withTrailingSep(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}
