package build

import (
	"path/filepath"

	"github.com/sofmeright/packwright/src/config"
)

// Resolve merges the option layers field by field, lowest precedence first:
// target defaults, project-derived options, explicit options. The target is
// taken from the explicit layer, then the project layer, then DefaultTarget.
// Neither layer is modified.
func Resolve(project, explicit Overrides) Options {
	target := DefaultTarget
	switch {
	case explicit.Target != nil:
		target = *explicit.Target
	case project.Target != nil:
		target = *project.Target
	}

	opts := Options{Target: target}
	TargetDefaults(target, explicit).applyTo(&opts)
	project.applyTo(&opts)
	explicit.applyTo(&opts)
	return opts
}

// DeriveProjectOptions builds the project layer from an app's settings.
// Only values the app actually provides are present in the layer.
func DeriveProjectOptions(projectRoot string, app config.AppConfig) Overrides {
	var o Overrides
	if app.OutDir != "" {
		o.OutputPath = String(absUnder(projectRoot, app.OutDir))
	}
	if app.DeployURL != "" {
		o.DeployURL = String(app.DeployURL)
	}
	if app.BaseHref != "" {
		o.BaseHref = String(app.BaseHref)
	}
	if app.ServiceWorker {
		o.ServiceWorker = Bool(true)
	}
	return o
}

// ResolveApp resolves and validates the options for one app. The app is
// defaulted first; the caller's copy is left untouched.
func ResolveApp(projectRoot string, app config.AppConfig, explicit Overrides) (Options, error) {
	app, err := config.ApplyAppDefaults(app)
	if err != nil {
		return Options{}, err
	}
	return Validate(Resolve(DeriveProjectOptions(projectRoot, app), explicit))
}

// absUnder resolves p against base unless it is already absolute.
func absUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
