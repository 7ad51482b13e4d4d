package engines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofmeright/packwright/src/build"
)

const indexPage = `<!doctype html>
<html>
<head>
  <base href="/">
  <title>App</title>
</head>
<body>
  <app-root></app-root>
</body>
</html>
`

func TestWriteIndex(t *testing.T) {
	root := t.TempDir()
	index := filepath.Join(root, "src", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(index), 0o755))
	require.NoError(t, os.WriteFile(index, []byte(indexPage), 0o644))
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))

	plan := &build.BuildPlan{
		Index:   index,
		Options: build.Options{OutputPath: out, BaseHref: "/shop/", DeployURL: "/static/"},
		Entries: []build.EntryPoint{{Name: "polyfills"}, {Name: "main"}},
		Scripts: []build.AggregatedEntry{{Entry: "scripts"}, {Entry: "lazy", Lazy: true}},
		Styles:  []build.AggregatedEntry{{Entry: "styles"}},
	}
	files := []build.OutputFile{
		{Path: "main.abc.js", Entry: "main", Initial: true},
		{Path: "polyfills.def.js", Entry: "polyfills", Initial: true},
		{Path: "scripts.js", Entry: "scripts", Initial: true},
		{Path: "lazy.js", Entry: "lazy"},
		{Path: "styles.css", Entry: "styles", Initial: true},
		{Path: "chunk.123.js"},
	}
	require.NoError(t, writeIndex(plan, files))

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(data)

	require.Contains(t, page, `<base href="/shop/">`)
	require.NotContains(t, page, `<base href="/">`)
	require.Contains(t, page, `<link rel="stylesheet" href="/static/styles.css"></head>`)
	require.Contains(t, page, `<script src="/static/scripts.js"></script>`+
		`<script src="/static/polyfills.def.js" type="module"></script>`+
		`<script src="/static/main.abc.js" type="module"></script></body>`)
	require.NotContains(t, page, "lazy.js")
	require.NotContains(t, page, "chunk.123.js")
}

func TestWriteIndexWithoutPage(t *testing.T) {
	out := t.TempDir()
	plan := &build.BuildPlan{Index: filepath.Join(out, "missing.html"), Options: build.Options{OutputPath: out}}
	require.NoError(t, writeIndex(plan, nil))
	require.NoFileExists(t, filepath.Join(out, "missing.html"))
}

func TestInsertBefore(t *testing.T) {
	require.Equal(t, "<HEAD>x</HEAD>", insertBefore("<HEAD></HEAD>", "</head>", "x"))
	require.Equal(t, "abcx", insertBefore("abc", "</body>", "x"))
	require.Equal(t, "abc", insertBefore("abc", "</body>", ""))
}
