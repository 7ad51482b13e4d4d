package build

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrPathSafety           = errors.New("path safety violation")
	ErrMissingDependency    = errors.New("missing dependency")
)

// InvalidConfigurationError lists every cross-field rule a resolved option
// set violates, in rule order.
type InvalidConfigurationError struct {
	Violations []string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid build configuration: " + strings.Join(e.Violations, "; ")
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// Boundary names the tree an asset rule tried to leave.
type Boundary string

const (
	BoundaryProjectRead  Boundary = "read outside project"
	BoundaryProjectWrite Boundary = "write outside project"
	BoundaryOutputDir    Boundary = "write outside output directory"
)

// PathSafetyError reports an asset path that crosses a permitted boundary.
type PathSafetyError struct {
	Path        string
	Boundary    Boundary
	Overridable bool
}

func (e *PathSafetyError) Error() string {
	msg := fmt.Sprintf("asset path %q: %s", e.Path, e.Boundary)
	if e.Overridable {
		return msg + "; set allow_outside_out_dir to override"
	}
	return msg + " (cannot be overridden)"
}

func (e *PathSafetyError) Is(target error) bool {
	return target == ErrPathSafety
}

// MissingDependencyError reports a referenced file, environment or package
// that the project does not provide.
type MissingDependencyError struct {
	Kind   string
	Name   string
	Detail string
}

func (e *MissingDependencyError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Kind, e.Name)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}
