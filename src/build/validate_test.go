package build

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		violations []string
	}{
		{
			name: "development defaults",
			opts: Options{Target: TargetDevelopment, OutputHashing: HashingMedia},
		},
		{
			name:       "unsupported target",
			opts:       Options{Target: "staging"},
			violations: []string{`unsupported target "staging" (supported: development, production)`},
		},
		{
			name:       "optimizer without aot",
			opts:       Options{Target: TargetDevelopment, BuildOptimizer: true},
			violations: []string{"build-optimizer requires aot"},
		},
		{
			name: "optimizer with aot",
			opts: Options{Target: TargetDevelopment, BuildOptimizer: true, AOT: true},
		},
		{
			name: "optimizer in production",
			opts: Options{Target: TargetProduction, BuildOptimizer: true},
		},
		{
			name: "empty hashing means none",
			opts: Options{Target: TargetProduction},
		},
		{
			name:       "unknown hashing",
			opts:       Options{Target: TargetDevelopment, OutputHashing: "some"},
			violations: []string{`unknown output hashing "some" (supported: none, media, bundles, all)`},
		},
		{
			name: "all violations in rule order",
			opts: Options{Target: "qa", BuildOptimizer: true, OutputHashing: "x"},
			violations: []string{
				`unsupported target "qa" (supported: development, production)`,
				"build-optimizer requires aot",
				`unknown output hashing "x" (supported: none, media, bundles, all)`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.opts)
			if tt.violations == nil {
				require.NoError(t, err)
				require.Equal(t, tt.opts, got)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			var ice *InvalidConfigurationError
			require.True(t, errors.As(err, &ice))
			require.Equal(t, tt.violations, ice.Violations)
		})
	}
}

func TestTargetDefaultsReturnsCopy(t *testing.T) {
	d := TargetDefaults(TargetDevelopment, Overrides{})
	*d.Sourcemaps = false
	require.True(t, *TargetDefaults(TargetDevelopment, Overrides{}).Sourcemaps)
}

func TestHashFormatFor(t *testing.T) {
	require.Equal(t, HashFormat{}, HashFormatFor(HashingNone))
	require.Equal(t, HashFormat{}, HashFormatFor(""))
	require.Equal(t, HashFormat{File: true}, HashFormatFor(HashingMedia))
	require.Equal(t, HashFormat{Chunk: true, Extract: true, Script: true}, HashFormatFor(HashingBundles))
	require.Equal(t, HashFormat{Chunk: true, Extract: true, File: true, Script: true}, HashFormatFor(HashingAll))
}
