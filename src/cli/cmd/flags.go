package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sofmeright/packwright/src/build"
)

// buildFlags holds the command-line build options shared by build and serve.
// Only flags the user actually set become part of the explicit layer.
type buildFlags struct {
	target          string
	environment     string
	outputHashing   string
	sourcemaps      bool
	extractCSS      bool
	namedChunks     bool
	aot             bool
	vendorChunk     bool
	buildOptimizer  bool
	extractLicenses bool

	outputPath string
	deployURL  string
	baseHref   string

	progress         bool
	preserveSymlinks bool

	i18nFile           string
	i18nFormat         string
	i18nOutFile        string
	i18nOutFormat      string
	locale             string
	missingTranslation string

	showCircularDependencies bool
	serviceWorker            bool
	deleteOutputPath         bool
}

func (f *buildFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.target, "target", "t", "", "build target: development or production")
	fs.StringVarP(&f.environment, "environment", "e", "", "environment file to build with")
	fs.StringVar(&f.outputHashing, "output-hashing", "", "cache-busting hashes: none, media, bundles or all")
	fs.BoolVar(&f.sourcemaps, "sourcemaps", false, "emit source maps")
	fs.BoolVar(&f.extractCSS, "extract-css", false, "extract global styles into css files")
	fs.BoolVar(&f.namedChunks, "named-chunks", false, "use file names for lazy chunks")
	fs.BoolVar(&f.aot, "aot", false, "ahead-of-time compilation")
	fs.BoolVar(&f.vendorChunk, "vendor-chunk", false, "split vendor code into its own chunk")
	fs.BoolVar(&f.buildOptimizer, "build-optimizer", false, "enable the build optimizer (requires --aot outside production)")
	fs.BoolVar(&f.extractLicenses, "extract-licenses", false, "move license comments into a separate file")
	fs.StringVarP(&f.outputPath, "output-path", "o", "", "output directory (default: the app's out_dir)")
	fs.StringVarP(&f.deployURL, "deploy-url", "d", "", "URL the files will be deployed to")
	fs.StringVar(&f.baseHref, "base-href", "", "base href for the index page")
	fs.BoolVar(&f.progress, "progress", false, "report build progress")
	fs.BoolVar(&f.preserveSymlinks, "preserve-symlinks", false, "resolve modules without following symlinks")
	fs.StringVar(&f.i18nFile, "i18n-file", "", "translation file")
	fs.StringVar(&f.i18nFormat, "i18n-format", "", "translation file format")
	fs.StringVar(&f.i18nOutFile, "i18n-out-file", "", "path for extracted translations")
	fs.StringVar(&f.i18nOutFormat, "i18n-out-format", "", "format for extracted translations")
	fs.StringVar(&f.locale, "locale", "", "locale to build for")
	fs.StringVar(&f.missingTranslation, "missing-translation", "", "missing translation handling: error, warning or ignore")
	fs.BoolVar(&f.showCircularDependencies, "show-circular-dependencies", false, "report circular imports")
	fs.BoolVar(&f.serviceWorker, "service-worker", false, "copy the service worker into the output")
	fs.BoolVar(&f.deleteOutputPath, "delete-output-path", false, "delete the output directory before building")
}

// overrides converts the flags the user set into the explicit option layer.
// A relative --output-path is taken from the project root, like out_dir.
func (f *buildFlags) overrides(cmd *cobra.Command, root string) build.Overrides {
	fs := cmd.Flags()
	var o build.Overrides

	str := func(name, v string) *string {
		if fs.Changed(name) {
			return build.String(v)
		}
		return nil
	}
	flag := func(name string, v bool) *bool {
		if fs.Changed(name) {
			return build.Bool(v)
		}
		return nil
	}

	if fs.Changed("target") {
		o.Target = build.TargetPtr(build.Target(f.target))
	}
	o.Environment = str("environment", f.environment)
	if fs.Changed("output-hashing") {
		o.OutputHashing = build.HashingPtr(build.HashingMode(f.outputHashing))
	}
	o.Sourcemaps = flag("sourcemaps", f.sourcemaps)
	o.ExtractCSS = flag("extract-css", f.extractCSS)
	o.NamedChunks = flag("named-chunks", f.namedChunks)
	o.AOT = flag("aot", f.aot)
	o.VendorChunk = flag("vendor-chunk", f.vendorChunk)
	o.BuildOptimizer = flag("build-optimizer", f.buildOptimizer)
	o.ExtractLicenses = flag("extract-licenses", f.extractLicenses)

	if fs.Changed("output-path") {
		out := f.outputPath
		if !filepath.IsAbs(out) {
			out = filepath.Join(root, out)
		}
		o.OutputPath = build.String(out)
	}
	o.DeployURL = str("deploy-url", f.deployURL)
	o.BaseHref = str("base-href", f.baseHref)

	o.Progress = flag("progress", f.progress)
	o.PreserveSymlinks = flag("preserve-symlinks", f.preserveSymlinks)
	if verbose {
		o.Verbose = build.Bool(true)
	}

	o.I18nFile = str("i18n-file", f.i18nFile)
	o.I18nFormat = str("i18n-format", f.i18nFormat)
	o.I18nOutFile = str("i18n-out-file", f.i18nOutFile)
	o.I18nOutFormat = str("i18n-out-format", f.i18nOutFormat)
	o.Locale = str("locale", f.locale)
	o.MissingTranslation = str("missing-translation", f.missingTranslation)

	o.ShowCircularDependencies = flag("show-circular-dependencies", f.showCircularDependencies)
	o.ServiceWorker = flag("service-worker", f.serviceWorker)
	o.DeleteOutputPath = flag("delete-output-path", f.deleteOutputPath)
	return o
}
