package engines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/packwright/src/build"
)

func TestRegistered(t *testing.T) {
	e, err := build.Get(build.DefaultEngine)
	require.NoError(t, err)
	require.Equal(t, "esbuild", e.Name())
}

func TestBuildOptions(t *testing.T) {
	plan := &build.BuildPlan{
		ProjectRoot: "/p",
		AppRoot:     "/p/src",
		Platform:    "browser",
		Options: build.Options{
			Target:          build.TargetProduction,
			OutputPath:      "/p/dist",
			DeployURL:       "/static/",
			ExtractLicenses: true,
		},
		Hashing:        build.HashFormatFor(build.HashingAll),
		Entries:        []build.EntryPoint{{Name: "main", Path: "/p/src/main.ts"}},
		Styles:         []build.AggregatedEntry{{Entry: "styles", Paths: []string{"/p/src/styles.css"}}},
		LazyModules:    map[string]string{"app/admin.module.ts": "/p/src/app/admin.module.ts"},
		Replacements:   map[string]string{"/p/src/env.ts": "/p/src/env.prod.ts"},
		SupportsES2015: false,
		Version:        "1.2.3",
	}

	opts := BuildOptions(plan)
	require.Equal(t, "/p/dist", opts.Outdir)
	require.Equal(t, "/p", opts.AbsWorkingDir)
	require.Equal(t, api.FormatESModule, opts.Format)
	require.Equal(t, api.PlatformBrowser, opts.Platform)
	require.Equal(t, api.ES5, opts.Target)
	require.Equal(t, api.SourceMapNone, opts.Sourcemap)
	require.Equal(t, api.LogLevelSilent, opts.LogLevel)
	require.True(t, opts.MinifyWhitespace)
	require.True(t, opts.Splitting)
	require.Equal(t, "/static/", opts.PublicPath)
	require.Equal(t, "[dir]/[name].[hash]", opts.EntryNames)
	require.Equal(t, "chunk.[hash]", opts.ChunkNames)
	require.Equal(t, "[name].[hash]", opts.AssetNames)
	require.Equal(t, api.LegalCommentsExternal, opts.LegalComments)
	require.Equal(t, `"production"`, opts.Define["process.env.NODE_ENV"])
	require.Equal(t, `"1.2.3"`, opts.Define["APP_VERSION"])
	require.Len(t, opts.Plugins, 2)

	require.Equal(t, []api.EntryPoint{
		{InputPath: "/p/src/main.ts", OutputPath: "main"},
		{InputPath: "packwright-styles:styles", OutputPath: "styles"},
		{InputPath: "/p/src/app/admin.module.ts", OutputPath: "app/admin.module"},
	}, opts.EntryPointsAdvanced)
}

func TestBuildOptionsDevelopmentServer(t *testing.T) {
	plan := &build.BuildPlan{
		ProjectRoot:    "/p",
		Platform:       "server",
		Options:        build.Options{Target: build.TargetDevelopment, Sourcemaps: true, NamedChunks: true},
		SupportsES2015: true,
	}
	opts := BuildOptions(plan)
	require.Equal(t, api.FormatCommonJS, opts.Format)
	require.Equal(t, api.PlatformNode, opts.Platform)
	require.Equal(t, api.ES2015, opts.Target)
	require.Equal(t, api.SourceMapLinked, opts.Sourcemap)
	require.False(t, opts.MinifySyntax)
	require.False(t, opts.Splitting)
	require.Equal(t, "[dir]/[name]", opts.EntryNames)
	require.Equal(t, "[name].[hash]", opts.ChunkNames)
	require.NotContains(t, opts.Define, "APP_VERSION")
	require.Len(t, opts.Plugins, 1)
}

func TestMetafileOutputs(t *testing.T) {
	plan := &build.BuildPlan{
		ProjectRoot: "/p",
		Options:     build.Options{OutputPath: "/p/dist"},
		Entries:     []build.EntryPoint{{Name: "main", Path: "/p/src/main.ts"}},
		Styles:      []build.AggregatedEntry{{Entry: "styles"}},
		LazyModules: map[string]string{"admin.ts": "/p/src/admin.ts"},
	}
	raw := `{"outputs": {
  "dist/main.abc.js": {"bytes": 100, "entryPoint": "src/main.ts"},
  "dist/main.abc.js.map": {"bytes": 500, "entryPoint": "src/main.ts"},
  "dist/styles.css": {"bytes": 40, "entryPoint": "packwright-styles:styles"},
  "dist/admin.js": {"bytes": 30, "entryPoint": "src/admin.ts"},
  "dist/chunk.x.js": {"bytes": 10}
}}`
	files, err := metafileOutputs(plan, raw)
	require.NoError(t, err)
	require.Equal(t, []build.OutputFile{
		{Path: "admin.js", Bytes: 30, Entry: "admin.ts"},
		{Path: "chunk.x.js", Bytes: 10},
		{Path: "main.abc.js", Bytes: 100, Entry: "main", Initial: true},
		{Path: "styles.css", Bytes: 40, Entry: "styles", Initial: true},
	}, files)
}

func TestBuildOptionsProgressLogs(t *testing.T) {
	plan := &build.BuildPlan{ProjectRoot: "/p", Options: build.Options{Progress: true}}
	require.Equal(t, api.LogLevelInfo, BuildOptions(plan).LogLevel)
}

func TestBuildOptionsChunksKeepHash(t *testing.T) {
	plan := &build.BuildPlan{
		ProjectRoot: "/p",
		Hashing:     build.HashFormatFor(build.HashingNone),
	}
	opts := BuildOptions(plan)
	require.Equal(t, "[dir]/[name]", opts.EntryNames)
	require.Equal(t, "chunk.[hash]", opts.ChunkNames)
	require.Equal(t, "[name]", opts.AssetNames)
}

func TestIgnoredOptions(t *testing.T) {
	require.Empty(t, ignoredOptions(build.Options{ExtractCSS: true}))
	require.Equal(t,
		[]string{"extract_css", "aot", "vendor_chunk", "locale"},
		ignoredOptions(build.Options{AOT: true, VendorChunk: true, Locale: "de"}))
}

func TestUnhashLazyStyles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("theme.ABC123.css", "body{}\n/*# sourceMappingURL=theme.ABC123.css.map */\n")
	write("theme.ABC123.css.map", "{}")
	write("styles.DEF456.css", "p{}")

	plan := &build.BuildPlan{
		Options: build.Options{OutputPath: dir},
		Styles: []build.AggregatedEntry{
			{Entry: "styles"},
			{Entry: "theme", Lazy: true},
		},
	}
	files, err := unhashLazyStyles(plan, []build.OutputFile{
		{Path: "styles.DEF456.css", Entry: "styles", Initial: true},
		{Path: "theme.ABC123.css", Entry: "theme"},
	})
	require.NoError(t, err)
	require.Equal(t, []build.OutputFile{
		{Path: "styles.DEF456.css", Entry: "styles", Initial: true},
		{Path: "theme.css", Entry: "theme"},
	}, files)

	data, err := os.ReadFile(filepath.Join(dir, "theme.css"))
	require.NoError(t, err)
	require.Contains(t, string(data), "sourceMappingURL=theme.css.map")
	require.FileExists(t, filepath.Join(dir, "theme.css.map"))
	require.NoFileExists(t, filepath.Join(dir, "theme.ABC123.css"))
	require.FileExists(t, filepath.Join(dir, "styles.DEF456.css"))
}
