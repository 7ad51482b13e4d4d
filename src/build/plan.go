package build

import (
	"errors"
	"path/filepath"

	"github.com/sofmeright/packwright/src/config"
)

// DefaultEngine is the engine plans run on unless told otherwise.
const DefaultEngine = "esbuild"

// BuildPlan is the resolved, declarative execution plan for one app.
type BuildPlan struct {
	App         string `yaml:"app,omitempty"`
	Engine      string `yaml:"engine"`
	ProjectRoot string `yaml:"project_root"`
	AppRoot     string `yaml:"app_root"`
	Platform    string `yaml:"platform"`
	Index       string `yaml:"index,omitempty"` // absolute, "" when the app has none

	Options Options    `yaml:"options"`
	Hashing HashFormat `yaml:"hashing"`

	Entries []EntryPoint         `yaml:"entries,omitempty"`
	Scripts []AggregatedEntry    `yaml:"scripts,omitempty"`
	Styles  []AggregatedEntry    `yaml:"styles,omitempty"`
	Assets  []SanitizedAssetRule `yaml:"assets,omitempty"`

	Replacements map[string]string `yaml:"replacements,omitempty"` // absolute source file -> absolute replacement
	LazyModules  map[string]string `yaml:"lazy_modules,omitempty"` // declared module -> absolute path

	SupportsES2015 bool            `yaml:"supports_es2015"`
	Budgets        []config.Budget `yaml:"budgets,omitempty"`

	// Version is stamped into the bundle as APP_VERSION when set.
	Version string `yaml:"version,omitempty"`
}

// EntryPoint is a named application entry compiled by the engine.
type EntryPoint struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// PlanInput carries everything NewPlan needs for one app.
type PlanInput struct {
	ProjectRoot string
	App         config.AppConfig
	Explicit    Overrides
	Dirs        DirChecker
	// Exists verifies lazy modules on disk; nil skips the check.
	Exists func(path string) bool
}

// NewPlan resolves and validates options for the app, then derives the
// entry, global-asset and asset-copy plans. Any failure aborts the whole plan.
func NewPlan(in PlanInput) (*BuildPlan, error) {
	app, err := config.ApplyAppDefaults(in.App)
	if err != nil {
		return nil, err
	}

	opts, err := Validate(Resolve(DeriveProjectOptions(in.ProjectRoot, app), in.Explicit))
	if err != nil {
		return nil, err
	}

	projectRoot := filepath.Clean(in.ProjectRoot)
	if opts.OutputPath == "" {
		opts.OutputPath = projectRoot
	}
	if opts.DeleteOutputPath && filepath.Clean(opts.OutputPath) == projectRoot {
		return nil, &InvalidConfigurationError{Violations: []string{"output path must not be the project root when delete_output_path is set"}}
	}

	appRoot := absUnder(projectRoot, app.Root)
	plan := &BuildPlan{
		App:         app.Name,
		Engine:      DefaultEngine,
		ProjectRoot: projectRoot,
		AppRoot:     appRoot,
		Platform:    app.Platform,
		Options:     opts,
		Hashing:     HashFormatFor(opts.OutputHashing),
		Budgets:     app.Budgets,
	}
	if app.Index != "" {
		plan.Index = absUnder(appRoot, app.Index)
	}

	if app.Polyfills != "" {
		plan.Entries = append(plan.Entries, EntryPoint{Name: "polyfills", Path: absUnder(appRoot, app.Polyfills)})
	}
	if app.Main != "" {
		plan.Entries = append(plan.Entries, EntryPoint{Name: "main", Path: absUnder(appRoot, app.Main)})
	}

	plan.Scripts = Aggregate(ParseExtraEntries(app.Scripts, appRoot, DefaultScriptsEntry))
	plan.Styles = Aggregate(ParseExtraEntries(app.Styles, appRoot, DefaultStylesEntry))

	rules := make([]AssetRule, 0, len(app.Assets))
	for _, a := range app.Assets {
		rules = append(rules, AssetRuleFrom(a))
	}
	checker := AssetChecker{ProjectRoot: projectRoot, AppRoot: appRoot, OutputRoot: opts.OutputPath, Dirs: in.Dirs}
	if plan.Assets, err = checker.CheckAll(rules); err != nil {
		return nil, err
	}

	if plan.Replacements, err = EnvironmentReplacements(appRoot, app, opts.Environment); err != nil {
		return nil, err
	}
	if plan.LazyModules, err = LazyModules(projectRoot, app, in.Exists); err != nil {
		return nil, err
	}

	plan.SupportsES2015 = true
	if app.Tsconfig != "" {
		tc, err := ReadTsconfig(absUnder(appRoot, app.Tsconfig))
		switch {
		case err == nil:
			plan.SupportsES2015 = tc.SupportsES2015()
		case errors.Is(err, ErrMissingDependency):
			// No tsconfig on disk: compile for modern syntax.
		default:
			return nil, err
		}
	}

	return plan, nil
}
