package build

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{}")
	writeFile(t, dir, "package-lock.json", "{}")
	writeFile(t, dir, "yarn.lock", "")
	writeFile(t, dir, "tsconfig.json", "{}")
	writeFile(t, dir, "tsconfig.app.json", "{}")

	det, err := DetectProject(dir)
	require.NoError(t, err)
	require.True(t, det.HasPackageJSON)
	require.Equal(t, []string{"yarn.lock", "package-lock.json"}, det.Lockfiles)
	require.Equal(t, "yarn", det.PackageManager)
	require.ElementsMatch(t, []string{"tsconfig.json", "tsconfig.app.json"}, det.Tsconfigs)
}

func TestDetectProjectEmpty(t *testing.T) {
	det, err := DetectProject(t.TempDir())
	require.NoError(t, err)
	require.False(t, det.HasPackageJSON)
	require.Empty(t, det.Lockfiles)
	require.Empty(t, det.PackageManager)
}
