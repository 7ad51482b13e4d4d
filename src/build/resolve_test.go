package build

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofmeright/packwright/src/config"
)

func TestResolveExplicitBeatsProject(t *testing.T) {
	project := Overrides{Sourcemaps: Bool(true)}
	explicit := Overrides{Target: TargetPtr(TargetProduction), Sourcemaps: Bool(false)}

	opts := Resolve(project, explicit)
	require.Equal(t, TargetProduction, opts.Target)
	require.False(t, opts.Sourcemaps)
}

func TestResolveProjectBeatsTargetDefaults(t *testing.T) {
	opts := Resolve(Overrides{Sourcemaps: Bool(true)}, Overrides{Target: TargetPtr(TargetProduction)})
	require.True(t, opts.Sourcemaps)
	// Untouched fields keep the production defaults.
	require.True(t, opts.AOT)
	require.Equal(t, HashingAll, opts.OutputHashing)
}

func TestResolveDefaultTarget(t *testing.T) {
	opts := Resolve(Overrides{}, Overrides{})
	require.Equal(t, TargetDevelopment, opts.Target)
	require.False(t, opts.AOT)
	require.True(t, opts.VendorChunk)
	require.Equal(t, "dev", opts.Environment)
	require.Equal(t, HashingMedia, opts.OutputHashing)
}

func TestResolveProjectTargetUsedWhenExplicitAbsent(t *testing.T) {
	opts := Resolve(Overrides{Target: TargetPtr(TargetProduction)}, Overrides{})
	require.Equal(t, TargetProduction, opts.Target)
	require.Equal(t, "prod", opts.Environment)
}

func TestResolveDoesNotMutateLayers(t *testing.T) {
	project := Overrides{OutputPath: String("/p/dist"), Sourcemaps: Bool(true)}
	explicit := Overrides{Target: TargetPtr(TargetProduction), AOT: Bool(false)}

	_ = Resolve(project, explicit)

	require.Equal(t, "/p/dist", *project.OutputPath)
	require.True(t, *project.Sourcemaps)
	require.Nil(t, project.Target)
	require.False(t, *explicit.AOT)
	require.Nil(t, explicit.Sourcemaps)

	// The shared default table must not change either.
	require.True(t, *targetDefaults[TargetProduction].BuildOptimizer)
}

func TestResolveProductionWithoutAOTDisablesOptimizer(t *testing.T) {
	opts := Resolve(Overrides{}, Overrides{Target: TargetPtr(TargetProduction), AOT: Bool(false)})
	require.False(t, opts.AOT)
	require.False(t, opts.BuildOptimizer)

	opts = Resolve(Overrides{}, Overrides{Target: TargetPtr(TargetProduction)})
	require.True(t, opts.BuildOptimizer)
}

func TestResolveUnknownTargetHasNoDefaults(t *testing.T) {
	opts := Resolve(Overrides{}, Overrides{Target: TargetPtr("staging")})
	require.Equal(t, Target("staging"), opts.Target)
	require.Empty(t, opts.Environment)
	require.Empty(t, opts.OutputHashing)
}

func TestResolveThenValidateIsIdempotent(t *testing.T) {
	project := Overrides{OutputPath: String("/p/dist"), BaseHref: String("/app/")}
	explicit := Overrides{Target: TargetPtr(TargetProduction), Sourcemaps: Bool(true)}

	first, err := Validate(Resolve(project, explicit))
	require.NoError(t, err)
	second, err := Validate(Resolve(project, explicit))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeriveProjectOptions(t *testing.T) {
	o := DeriveProjectOptions("/p", config.AppConfig{
		OutDir:        "dist/app",
		DeployURL:     "/static/",
		ServiceWorker: true,
	})
	require.Equal(t, "/p/dist/app", *o.OutputPath)
	require.Equal(t, "/static/", *o.DeployURL)
	require.Nil(t, o.BaseHref)
	require.True(t, *o.ServiceWorker)
	require.Nil(t, o.Sourcemaps)

	empty := DeriveProjectOptions("/p", config.AppConfig{})
	require.Equal(t, Overrides{}, empty)
}

func TestResolveApp(t *testing.T) {
	app := config.AppConfig{Name: "web"}

	opts, err := ResolveApp("/p", app, Overrides{})
	require.NoError(t, err)
	require.Equal(t, "/p/dist", opts.OutputPath)
	require.Empty(t, app.Root, "caller's app must stay undefaulted")

	_, err = ResolveApp("/p", app, Overrides{BuildOptimizer: Bool(true)})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}
