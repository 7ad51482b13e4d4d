package copier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofmeright/packwright/src/build"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCopyGlob(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "src", "assets")
	out := filepath.Join(root, "dist", "assets")
	touch(t, filepath.Join(in, "logo.svg"), "<svg/>")
	touch(t, filepath.Join(in, "i18n", "en.json"), "{}")
	touch(t, filepath.Join(in, "i18n", ".gitkeep"), "")
	touch(t, filepath.Join(in, ".DS_Store"), "x")

	c := &Copier{Workers: 2}
	err := c.Copy(context.Background(), []build.SanitizedAssetRule{{Input: in, Glob: "**/*", Output: out}})
	require.NoError(t, err)
	require.EqualValues(t, 2, c.Copied.Load())

	data, err := os.ReadFile(filepath.Join(out, "i18n", "en.json"))
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
	require.FileExists(t, filepath.Join(out, "logo.svg"))
	require.NoFileExists(t, filepath.Join(out, "i18n", ".gitkeep"))
	require.NoFileExists(t, filepath.Join(out, ".DS_Store"))
}

func TestCopySingleFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src", "favicon.ico")
	out := filepath.Join(root, "dist")
	touch(t, src, "icon")

	c := &Copier{}
	require.NoError(t, c.Copy(context.Background(), []build.SanitizedAssetRule{{Input: src, Output: out}}))
	require.EqualValues(t, 1, c.Copied.Load())
	require.FileExists(t, filepath.Join(out, "favicon.ico"))
}

func TestCopyMissingInput(t *testing.T) {
	root := t.TempDir()
	c := &Copier{}
	err := c.Copy(context.Background(), []build.SanitizedAssetRule{{Input: filepath.Join(root, "nope.txt"), Output: root}})
	require.Error(t, err)
	require.Zero(t, c.Copied.Load())
}

func TestIgnored(t *testing.T) {
	require.True(t, ignored("a/b/.gitkeep"))
	require.True(t, ignored(".gitkeep"))
	require.True(t, ignored("Thumbs.db"))
	require.False(t, ignored("a/keep.txt"))
}
