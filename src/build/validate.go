package build

import "fmt"

var validHashingModes = map[HashingMode]bool{
	HashingNone:    true,
	HashingMedia:   true,
	HashingBundles: true,
	HashingAll:     true,
}

// Validate gates a resolved option set. Every rule is checked and all
// violations are reported together, in the order the rules are listed here.
// On success opts is returned unchanged.
func Validate(opts Options) (Options, error) {
	var violations []string

	if !opts.Target.Valid() {
		violations = append(violations, fmt.Sprintf("unsupported target %q (supported: %s, %s)", opts.Target, TargetDevelopment, TargetProduction))
	}

	if opts.BuildOptimizer && !opts.AOT && opts.Target != TargetProduction {
		violations = append(violations, "build-optimizer requires aot")
	}

	// Empty means no hashing.
	if opts.OutputHashing != "" && !validHashingModes[opts.OutputHashing] {
		violations = append(violations, fmt.Sprintf("unknown output hashing %q (supported: none, media, bundles, all)", opts.OutputHashing))
	}

	if len(violations) > 0 {
		return Options{}, &InvalidConfigurationError{Violations: violations}
	}
	return opts, nil
}
