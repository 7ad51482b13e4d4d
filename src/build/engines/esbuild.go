package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/copier"
	"github.com/sofmeright/packwright/src/serviceworker"
)

func init() {
	build.Register("esbuild", func() build.Engine { return &esbuildEngine{} })
}

// esbuildEngine bundles an app with esbuild, then writes global scripts,
// copies assets, renders the index page and checks budgets.
type esbuildEngine struct{}

func (e *esbuildEngine) Name() string { return "esbuild" }

func (e *esbuildEngine) Execute(ctx context.Context, plan *build.BuildPlan) (*build.BuildResult, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().Str("app", plan.App).Str("engine", "esbuild").Logger()

	outDir := plan.Options.OutputPath
	result := &build.BuildResult{App: plan.App, OutDir: outDir}
	defer func() { result.Duration = time.Since(start) }()

	if plan.Options.DeleteOutputPath {
		if !build.Contains(plan.ProjectRoot, outDir) || filepath.Clean(outDir) == plan.ProjectRoot {
			return result, &build.PathSafetyError{Path: outDir, Boundary: build.BoundaryProjectWrite}
		}
		logger.Debug().Str("dir", outDir).Msg("deleting output path")
		if err := os.RemoveAll(outDir); err != nil {
			return result, fmt.Errorf("deleting output path: %w", err)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output path: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if ignored := ignoredOptions(plan.Options); len(ignored) > 0 {
		logger.Debug().Strs("options", ignored).Msg("options have no effect with esbuild")
	}

	res := api.Build(BuildOptions(plan))
	for _, msg := range res.Warnings {
		result.Warnings = append(result.Warnings, messageText(msg))
		logger.Warn().Str("warning", messageText(msg)).Msg("bundler warning")
	}
	if len(res.Errors) > 0 {
		for _, msg := range res.Errors {
			logger.Error().Str("error", messageText(msg)).Msg("bundler error")
		}
		return result, fmt.Errorf("esbuild failed with %d error(s) (first: %s)", len(res.Errors), messageText(res.Errors[0]))
	}

	files, err := metafileOutputs(plan, res.Metafile)
	if err != nil {
		return result, err
	}
	if files, err = unhashLazyStyles(plan, files); err != nil {
		return result, err
	}
	scripts, err := writeGlobalScripts(plan)
	if err != nil {
		return result, err
	}
	result.Files = append(scripts, files...)

	if len(plan.Assets) > 0 {
		c := &copier.Copier{}
		if err := c.Copy(ctx, plan.Assets); err != nil {
			return result, err
		}
		result.Assets = int(c.Copied.Load())
		logger.Debug().Int("files", result.Assets).Msg("copied assets")
	}

	if plan.Options.ServiceWorker {
		if err := serviceworker.CopyWorker(plan.ProjectRoot, plan.AppRoot, outDir); err != nil {
			return result, err
		}
	}

	if err := writeIndex(plan, result.Files); err != nil {
		return result, err
	}

	violations, err := build.CheckBudgets(plan.Budgets, result.Files)
	if err != nil {
		return result, err
	}
	result.Budgets = violations
	result.BudgetCount = len(plan.Budgets)
	for _, v := range violations {
		if v.Level == build.BudgetWarning {
			result.Warnings = append(result.Warnings, v.String())
		}
	}
	if err := build.BudgetErr(violations); err != nil {
		return result, err
	}

	logger.Info().Int("files", len(result.Files)).Dur("elapsed", time.Since(start)).Msg("build complete")
	return result, nil
}

// BuildOptions translates a plan into esbuild options. The serve command
// reuses it for its watch context.
func BuildOptions(plan *build.BuildPlan) api.BuildOptions {
	o := plan.Options
	minify := o.Target == build.TargetProduction
	browser := plan.Platform != "server"

	opts := api.BuildOptions{
		EntryPointsAdvanced: entryPoints(plan),
		AbsWorkingDir:       plan.ProjectRoot,
		Outdir:              o.OutputPath,
		Bundle:              true,
		Write:               true,
		Metafile:            true,
		Splitting:           browser,
		Format:              cond(browser, api.FormatESModule, api.FormatCommonJS),
		Platform:            cond(browser, api.PlatformBrowser, api.PlatformNode),
		Target:              cond(plan.SupportsES2015, api.ES2015, api.ES5),
		Sourcemap:           cond(o.Sourcemaps, api.SourceMapLinked, api.SourceMapNone),
		MinifyWhitespace:    minify,
		MinifyIdentifiers:   minify,
		MinifySyntax:        minify,
		PublicPath:          o.DeployURL,
		EntryNames:          cond(plan.Hashing.Chunk, "[dir]/[name].[hash]", "[dir]/[name]"),
		// Shared chunks have no stable name of their own, so the hash stays
		// in every mode to keep them from colliding.
		ChunkNames:          cond(o.NamedChunks, "[name].[hash]", "chunk.[hash]"),
		AssetNames:          cond(plan.Hashing.File, "[name].[hash]", "[name]"),
		LegalComments:       cond(o.ExtractLicenses, api.LegalCommentsExternal, api.LegalCommentsDefault),
		PreserveSymlinks:    o.PreserveSymlinks,
		Loader:              mediaLoaders,
		Define: map[string]string{
			"process.env.NODE_ENV": strconv.Quote(string(o.Target)),
		},
		LogLevel: cond(o.Progress, api.LogLevelInfo, api.LogLevelSilent),
		Plugins:  []api.Plugin{stylesPlugin(plan)},
	}
	if plan.Version != "" {
		opts.Define["APP_VERSION"] = strconv.Quote(plan.Version)
	}
	if len(plan.Replacements) > 0 {
		opts.Plugins = append(opts.Plugins, replacementPlugin(plan.Replacements))
	}
	return opts
}

// ignoredOptions names the resolved options esbuild has no counterpart for.
func ignoredOptions(o build.Options) []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(!o.ExtractCSS, "extract_css")
	add(o.AOT, "aot")
	add(o.BuildOptimizer, "build_optimizer")
	add(o.VendorChunk, "vendor_chunk")
	add(o.ShowCircularDependencies, "show_circular_dependencies")
	add(o.I18nFile != "", "i18n_file")
	add(o.I18nFormat != "", "i18n_format")
	add(o.I18nOutFile != "", "i18n_out_file")
	add(o.I18nOutFormat != "", "i18n_out_format")
	add(o.Locale != "", "locale")
	add(o.MissingTranslation != "", "missing_translation")
	return names
}

var mediaLoaders = map[string]api.Loader{
	".png":   api.LoaderFile,
	".jpg":   api.LoaderFile,
	".jpeg":  api.LoaderFile,
	".gif":   api.LoaderFile,
	".webp":  api.LoaderFile,
	".svg":   api.LoaderFile,
	".ico":   api.LoaderFile,
	".woff":  api.LoaderFile,
	".woff2": api.LoaderFile,
	".ttf":   api.LoaderFile,
	".eot":   api.LoaderFile,
}

// stylesNamespace holds the virtual entry modules for global styles.
const stylesNamespace = "packwright-styles"

func entryPoints(plan *build.BuildPlan) []api.EntryPoint {
	var eps []api.EntryPoint
	for _, e := range plan.Entries {
		eps = append(eps, api.EntryPoint{InputPath: e.Path, OutputPath: e.Name})
	}
	for _, s := range plan.Styles {
		eps = append(eps, api.EntryPoint{InputPath: stylesNamespace + ":" + s.Entry, OutputPath: s.Entry})
	}
	for _, m := range sortedKeys(plan.LazyModules) {
		name := strings.TrimSuffix(filepath.ToSlash(m), filepath.Ext(m))
		eps = append(eps, api.EntryPoint{InputPath: plan.LazyModules[m], OutputPath: name})
	}
	return eps
}

// stylesPlugin turns each global style bundle into a stylesheet that imports
// its sources in declaration order.
func stylesPlugin(plan *build.BuildPlan) api.Plugin {
	bundles := make(map[string][]string, len(plan.Styles))
	for _, s := range plan.Styles {
		bundles[s.Entry] = s.Paths
	}
	return api.Plugin{
		Name: "global-styles",
		Setup: func(pb api.PluginBuild) {
			pb.OnResolve(api.OnResolveOptions{Filter: "^" + stylesNamespace + ":"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, stylesNamespace+":"),
						Namespace: stylesNamespace,
					}, nil
				})
			pb.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: stylesNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					paths, ok := bundles[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("unknown style bundle %q", args.Path)
					}
					var b strings.Builder
					for _, p := range paths {
						fmt.Fprintf(&b, "@import %s;\n", strconv.Quote(filepath.ToSlash(p)))
					}
					contents := b.String()
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: plan.AppRoot,
						Loader:     api.LoaderCSS,
					}, nil
				})
		},
	}
}

// replacementPlugin serves each environment source file with the contents of
// its replacement.
func replacementPlugin(replacements map[string]string) api.Plugin {
	sources := sortedKeys(replacements)
	quoted := make([]string, len(sources))
	for i, s := range sources {
		quoted[i] = regexp.QuoteMeta(s)
	}
	filter := "^(" + strings.Join(quoted, "|") + ")$"

	return api.Plugin{
		Name: "environment-replacement",
		Setup: func(pb api.PluginBuild) {
			pb.OnLoad(api.OnLoadOptions{Filter: filter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					target := replacements[args.Path]
					data, err := os.ReadFile(target)
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("environment replacement: %w", err)
					}
					contents := string(data)
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: filepath.Dir(target),
						Loader:     loaderFor(target),
					}, nil
				})
		},
	}
}

func loaderFor(file string) api.Loader {
	switch filepath.Ext(file) {
	case ".ts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	}
	return api.LoaderJS
}

// metafile is the part of esbuild's metafile the engine reads.
type metafile struct {
	Outputs map[string]struct {
		Bytes      int64  `json:"bytes"`
		EntryPoint string `json:"entryPoint"`
	} `json:"outputs"`
}

// metafileOutputs lists the bundler's outputs relative to the output
// directory. Source maps are not measured.
func metafileOutputs(plan *build.BuildPlan, raw string) ([]build.OutputFile, error) {
	var meta metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("parsing metafile: %w", err)
	}

	// Metafile paths are relative to the working directory.
	entryNames := make(map[string]string)
	initial := make(map[string]bool)
	for _, e := range plan.Entries {
		entryNames[metaPath(plan.ProjectRoot, e.Path)] = e.Name
		initial[e.Name] = true
	}
	for _, s := range plan.Styles {
		entryNames[stylesNamespace+":"+s.Entry] = s.Entry
		initial[s.Entry] = !s.Lazy
	}
	for m, p := range plan.LazyModules {
		entryNames[metaPath(plan.ProjectRoot, p)] = m
	}

	var files []build.OutputFile
	for out, info := range meta.Outputs {
		if strings.HasSuffix(out, ".map") {
			continue
		}
		rel, err := filepath.Rel(plan.Options.OutputPath, filepath.Join(plan.ProjectRoot, filepath.FromSlash(out)))
		if err != nil {
			return nil, err
		}
		name := entryNames[info.EntryPoint]
		files = append(files, build.OutputFile{
			Path:    filepath.ToSlash(rel),
			Bytes:   info.Bytes,
			Entry:   name,
			Initial: name != "" && initial[name],
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// unhashLazyStyles renames lazy style bundles to their bare entry name so
// they can be loaded at runtime without knowing the build hash. A linked
// source map moves with its stylesheet.
func unhashLazyStyles(plan *build.BuildPlan, files []build.OutputFile) ([]build.OutputFile, error) {
	lazy := make(map[string]bool)
	for _, s := range plan.Styles {
		if s.Lazy {
			lazy[s.Entry] = true
		}
	}
	if len(lazy) == 0 {
		return files, nil
	}

	outDir := plan.Options.OutputPath
	for i, f := range files {
		if !lazy[f.Entry] {
			continue
		}
		want := path.Join(path.Dir(f.Path), path.Base(f.Entry)+path.Ext(f.Path))
		if want == f.Path {
			continue
		}
		from := filepath.Join(outDir, filepath.FromSlash(f.Path))
		to := filepath.Join(outDir, filepath.FromSlash(want))
		if err := os.Rename(from, to); err != nil {
			return nil, fmt.Errorf("renaming lazy style %s: %w", f.Entry, err)
		}
		if err := moveSourceMap(from, to); err != nil {
			return nil, err
		}
		files[i].Path = want
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func moveSourceMap(from, to string) error {
	if _, err := os.Stat(from + ".map"); err != nil {
		return nil
	}
	if err := os.Rename(from+".map", to+".map"); err != nil {
		return fmt.Errorf("renaming source map: %w", err)
	}
	data, err := os.ReadFile(to)
	if err != nil {
		return err
	}
	oldRef := "sourceMappingURL=" + filepath.Base(from) + ".map"
	newRef := "sourceMappingURL=" + filepath.Base(to) + ".map"
	return os.WriteFile(to, bytes.ReplaceAll(data, []byte(oldRef), []byte(newRef)), 0o644)
}

func metaPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func messageText(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
