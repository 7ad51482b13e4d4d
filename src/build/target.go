package build

// Target is the named optimization profile of a build.
type Target string

const (
	TargetDevelopment Target = "development"
	TargetProduction  Target = "production"
)

// DefaultTarget is used when no layer names a target.
const DefaultTarget = TargetDevelopment

// Valid reports whether t is a supported target.
func (t Target) Valid() bool {
	return t == TargetDevelopment || t == TargetProduction
}

// HashingMode selects which output classes carry a content hash.
type HashingMode string

const (
	HashingNone    HashingMode = "none"
	HashingMedia   HashingMode = "media"
	HashingBundles HashingMode = "bundles"
	HashingAll     HashingMode = "all"
)

// targetDefaults is the per-target default layer. Entries are read-only;
// TargetDefaults hands out copies.
var targetDefaults = map[Target]Overrides{
	TargetDevelopment: {
		Environment:     ptr("dev"),
		OutputHashing:   ptr(HashingMedia),
		Sourcemaps:      ptr(true),
		ExtractCSS:      ptr(false),
		NamedChunks:     ptr(true),
		AOT:             ptr(false),
		VendorChunk:     ptr(true),
		BuildOptimizer:  ptr(false),
		ExtractLicenses: ptr(false),
	},
	TargetProduction: {
		Environment:     ptr("prod"),
		OutputHashing:   ptr(HashingAll),
		Sourcemaps:      ptr(false),
		ExtractCSS:      ptr(true),
		NamedChunks:     ptr(false),
		AOT:             ptr(true),
		VendorChunk:     ptr(false),
		BuildOptimizer:  ptr(true),
		ExtractLicenses: ptr(true),
	},
}

// TargetDefaults returns the default layer for t. An unknown target yields an
// empty layer; the validator rejects it later.
//
// In production the build optimizer follows AOT: when the explicit layer turns
// AOT off, the optimizer defaults to off as well.
func TargetDefaults(t Target, explicit Overrides) Overrides {
	d, ok := targetDefaults[t]
	if !ok {
		return Overrides{}
	}
	d = d.clone()
	if t == TargetProduction && explicit.AOT != nil && !*explicit.AOT {
		d.BuildOptimizer = ptr(false)
	}
	return d
}

func ptr[T any](v T) *T { return &v }
