package build

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDirs treats the listed paths as directories.
func fakeDirs(paths ...string) DirChecker {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return DirCheckerFunc(func(p string) bool { return set[p] })
}

func testChecker(dirs ...string) AssetChecker {
	return AssetChecker{
		ProjectRoot: "/p",
		AppRoot:     "/p/src",
		OutputRoot:  "/p/dist",
		Dirs:        fakeDirs(dirs...),
	}
}

func requireSafetyError(t *testing.T, err error, boundary Boundary, overridable bool) {
	t.Helper()
	require.ErrorIs(t, err, ErrPathSafety)
	var pse *PathSafetyError
	require.True(t, errors.As(err, &pse))
	require.Equal(t, boundary, pse.Boundary)
	require.Equal(t, overridable, pse.Overridable)
}

func TestCheckNormalizesInput(t *testing.T) {
	c := testChecker("/p/src/assets")

	got, err := c.Check(AssetRule{Input: "assets", Glob: "*.png", Output: "assets"})
	require.NoError(t, err)
	require.Equal(t, SanitizedAssetRule{Input: "/p/src/assets/", Glob: "*.png", Output: "/p/dist/assets"}, got)
}

func TestCheckRewritesDirectoryGlob(t *testing.T) {
	c := testChecker("/p/src", "/p/src/assets", "/p/src/assets/icons")

	got, err := c.Check(AssetRule{Glob: "assets"})
	require.NoError(t, err)
	require.Equal(t, "assets/**/*", got.Glob)
	require.Equal(t, "/p/src/", got.Input)
	require.Equal(t, "/p/dist", got.Output)

	got, err = c.Check(AssetRule{Input: "assets", Glob: "icons/"})
	require.NoError(t, err)
	require.Equal(t, "icons/**/*", got.Glob)

	got, err = c.Check(AssetRule{Input: "assets"})
	require.NoError(t, err)
	require.Equal(t, "**/*", got.Glob)
}

func TestCheckWithoutDirCheckerLeavesGlob(t *testing.T) {
	c := AssetChecker{ProjectRoot: "/p", AppRoot: "/p", OutputRoot: "/p/dist"}
	got, err := c.Check(AssetRule{Input: "assets", Glob: "favicon.ico"})
	require.NoError(t, err)
	require.Equal(t, SanitizedAssetRule{Input: "/p/assets", Glob: "favicon.ico", Output: "/p/dist"}, got)
}

func TestCheckInputEscapeIsFatal(t *testing.T) {
	c := AssetChecker{ProjectRoot: "/p", AppRoot: "/p", OutputRoot: "/p/dist"}

	for _, allow := range []bool{false, true} {
		_, err := c.Check(AssetRule{Input: "../secrets", AllowOutsideOutDir: allow})
		requireSafetyError(t, err, BoundaryProjectRead, false)
	}

	_, err := c.Check(AssetRule{Input: "/etc"})
	requireSafetyError(t, err, BoundaryProjectRead, false)
}

func TestCheckSiblingPrefixIsOutside(t *testing.T) {
	c := AssetChecker{ProjectRoot: "/p", AppRoot: "/p", OutputRoot: "/p/dist"}
	_, err := c.Check(AssetRule{Input: "/p-other/assets"})
	requireSafetyError(t, err, BoundaryProjectRead, false)
}

func TestCheckOutputEscapeWithinProject(t *testing.T) {
	c := testChecker()

	_, err := c.Check(AssetRule{Input: "assets", Output: "../shared-assets"})
	requireSafetyError(t, err, BoundaryOutputDir, true)
	require.Contains(t, err.Error(), "allow_outside_out_dir")

	got, err := c.Check(AssetRule{Input: "assets", Output: "../shared-assets", AllowOutsideOutDir: true})
	require.NoError(t, err)
	require.Equal(t, "/p/shared-assets", got.Output)
}

func TestCheckOutputEscapeOutsideProject(t *testing.T) {
	c := testChecker()

	for _, allow := range []bool{false, true} {
		_, err := c.Check(AssetRule{Input: "assets", Output: "../../elsewhere", AllowOutsideOutDir: allow})
		requireSafetyError(t, err, BoundaryProjectWrite, false)
		require.Contains(t, err.Error(), "cannot be overridden")
	}
}

func TestCheckInputCheckedBeforeOutput(t *testing.T) {
	c := AssetChecker{ProjectRoot: "/p", AppRoot: "/p", OutputRoot: "/p/dist"}
	_, err := c.Check(AssetRule{Input: "../x", Output: "../../y"})
	requireSafetyError(t, err, BoundaryProjectRead, false)
}

func TestCheckAllStopsAtFirstViolation(t *testing.T) {
	c := testChecker()
	_, err := c.CheckAll([]AssetRule{
		{Input: "ok"},
		{Input: "ok", Output: "../../out"},
		{Input: "../../../in"},
	})
	requireSafetyError(t, err, BoundaryProjectWrite, false)

	got, err := c.CheckAll([]AssetRule{{Input: "a"}, {Input: "b", Output: "b"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestContains(t *testing.T) {
	require.True(t, Contains("/p", "/p"))
	require.True(t, Contains("/p", "/p/a/b"))
	require.True(t, Contains("/p", "/p/..a"))
	require.False(t, Contains("/p", "/p/.."))
	require.False(t, Contains("/p", "/q"))
	require.False(t, Contains("/p", "/pp"))
}
