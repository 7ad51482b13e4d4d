package build

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofmeright/packwright/src/config"
)

func TestEnvironmentReplacements(t *testing.T) {
	app := config.AppConfig{
		EnvironmentSource: "environments/environment.ts",
		Environments: map[string]string{
			"dev":  "environments/environment.ts",
			"prod": "environments/environment.prod.ts",
		},
	}

	got, err := EnvironmentReplacements("/p/src", app, "prod")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"/p/src/environments/environment.ts": "/p/src/environments/environment.prod.ts",
	}, got)
}

func TestEnvironmentReplacementsNone(t *testing.T) {
	got, err := EnvironmentReplacements("/p/src", config.AppConfig{}, "prod")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEnvironmentReplacementsMissing(t *testing.T) {
	_, err := EnvironmentReplacements("/p/src", config.AppConfig{
		Environments: map[string]string{"prod": "env.prod.ts"},
	}, "prod")
	require.ErrorIs(t, err, ErrMissingDependency)
	require.Contains(t, err.Error(), "environment_source")

	_, err = EnvironmentReplacements("/p/src", config.AppConfig{
		EnvironmentSource: "env.ts",
		Environments:      map[string]string{"prod": "env.prod.ts", "dev": "env.ts"},
	}, "staging")
	require.ErrorIs(t, err, ErrMissingDependency)
	require.Contains(t, err.Error(), "available: dev, prod")
}

func TestLazyModules(t *testing.T) {
	app := config.AppConfig{Root: "src", LazyModules: []string{"app/admin/admin.module.ts"}}

	got, err := LazyModules("/p", app, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"app/admin/admin.module.ts": "/p/src/app/admin/admin.module.ts"}, got)

	_, err = LazyModules("/p", app, func(string) bool { return false })
	require.ErrorIs(t, err, ErrMissingDependency)

	got, err = LazyModules("/p", config.AppConfig{}, nil)
	require.NoError(t, err)
	require.Nil(t, got)
}
