package build

// Options is the fully resolved, flat record of every build-affecting flag.
// It is produced by Resolve and gated by Validate; downstream stages treat it
// as immutable.
type Options struct {
	Target          Target      `yaml:"target"`
	Environment     string      `yaml:"environment"`
	OutputHashing   HashingMode `yaml:"output_hashing"`
	Sourcemaps      bool        `yaml:"sourcemaps"`
	ExtractCSS      bool        `yaml:"extract_css"`
	NamedChunks     bool        `yaml:"named_chunks"`
	AOT             bool        `yaml:"aot"`
	VendorChunk     bool        `yaml:"vendor_chunk"`
	BuildOptimizer  bool        `yaml:"build_optimizer"`
	ExtractLicenses bool        `yaml:"extract_licenses"`

	OutputPath string `yaml:"output_path"`
	DeployURL  string `yaml:"deploy_url"`
	BaseHref   string `yaml:"base_href"`

	Progress         bool `yaml:"progress"`
	Verbose          bool `yaml:"verbose"`
	PreserveSymlinks bool `yaml:"preserve_symlinks"`

	I18nFile           string `yaml:"i18n_file"`
	I18nFormat         string `yaml:"i18n_format"`
	I18nOutFile        string `yaml:"i18n_out_file"`
	I18nOutFormat      string `yaml:"i18n_out_format"`
	Locale             string `yaml:"locale"`
	MissingTranslation string `yaml:"missing_translation"`

	ShowCircularDependencies bool `yaml:"show_circular_dependencies"`
	ServiceWorker            bool `yaml:"service_worker"`
	DeleteOutputPath         bool `yaml:"delete_output_path"`
}

// Overrides is one partial layer of options. A nil field is absent from the
// layer and leaves the lower layer's value in place.
type Overrides struct {
	Target          *Target
	Environment     *string
	OutputHashing   *HashingMode
	Sourcemaps      *bool
	ExtractCSS      *bool
	NamedChunks     *bool
	AOT             *bool
	VendorChunk     *bool
	BuildOptimizer  *bool
	ExtractLicenses *bool

	OutputPath *string
	DeployURL  *string
	BaseHref   *string

	Progress         *bool
	Verbose          *bool
	PreserveSymlinks *bool

	I18nFile           *string
	I18nFormat         *string
	I18nOutFile        *string
	I18nOutFormat      *string
	Locale             *string
	MissingTranslation *string

	ShowCircularDependencies *bool
	ServiceWorker            *bool
	DeleteOutputPath         *bool
}

// applyTo copies every field present in o over dst. Each field is listed
// explicitly; adding an option means adding a line here.
func (o Overrides) applyTo(dst *Options) {
	set(&dst.Target, o.Target)
	set(&dst.Environment, o.Environment)
	set(&dst.OutputHashing, o.OutputHashing)
	set(&dst.Sourcemaps, o.Sourcemaps)
	set(&dst.ExtractCSS, o.ExtractCSS)
	set(&dst.NamedChunks, o.NamedChunks)
	set(&dst.AOT, o.AOT)
	set(&dst.VendorChunk, o.VendorChunk)
	set(&dst.BuildOptimizer, o.BuildOptimizer)
	set(&dst.ExtractLicenses, o.ExtractLicenses)

	set(&dst.OutputPath, o.OutputPath)
	set(&dst.DeployURL, o.DeployURL)
	set(&dst.BaseHref, o.BaseHref)

	set(&dst.Progress, o.Progress)
	set(&dst.Verbose, o.Verbose)
	set(&dst.PreserveSymlinks, o.PreserveSymlinks)

	set(&dst.I18nFile, o.I18nFile)
	set(&dst.I18nFormat, o.I18nFormat)
	set(&dst.I18nOutFile, o.I18nOutFile)
	set(&dst.I18nOutFormat, o.I18nOutFormat)
	set(&dst.Locale, o.Locale)
	set(&dst.MissingTranslation, o.MissingTranslation)

	set(&dst.ShowCircularDependencies, o.ShowCircularDependencies)
	set(&dst.ServiceWorker, o.ServiceWorker)
	set(&dst.DeleteOutputPath, o.DeleteOutputPath)
}

// clone returns a copy whose pointers do not alias o's.
func (o Overrides) clone() Overrides {
	return Overrides{
		Target:          clonePtr(o.Target),
		Environment:     clonePtr(o.Environment),
		OutputHashing:   clonePtr(o.OutputHashing),
		Sourcemaps:      clonePtr(o.Sourcemaps),
		ExtractCSS:      clonePtr(o.ExtractCSS),
		NamedChunks:     clonePtr(o.NamedChunks),
		AOT:             clonePtr(o.AOT),
		VendorChunk:     clonePtr(o.VendorChunk),
		BuildOptimizer:  clonePtr(o.BuildOptimizer),
		ExtractLicenses: clonePtr(o.ExtractLicenses),

		OutputPath: clonePtr(o.OutputPath),
		DeployURL:  clonePtr(o.DeployURL),
		BaseHref:   clonePtr(o.BaseHref),

		Progress:         clonePtr(o.Progress),
		Verbose:          clonePtr(o.Verbose),
		PreserveSymlinks: clonePtr(o.PreserveSymlinks),

		I18nFile:           clonePtr(o.I18nFile),
		I18nFormat:         clonePtr(o.I18nFormat),
		I18nOutFile:        clonePtr(o.I18nOutFile),
		I18nOutFormat:      clonePtr(o.I18nOutFormat),
		Locale:             clonePtr(o.Locale),
		MissingTranslation: clonePtr(o.MissingTranslation),

		ShowCircularDependencies: clonePtr(o.ShowCircularDependencies),
		ServiceWorker:            clonePtr(o.ServiceWorker),
		DeleteOutputPath:         clonePtr(o.DeleteOutputPath),
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Setters used by callers assembling an explicit layer.

func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }

func TargetPtr(v Target) *Target { return &v }

func HashingPtr(v HashingMode) *HashingMode { return &v }
