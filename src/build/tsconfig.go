package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Tsconfig is the subset of a TypeScript project file the build reads.
type Tsconfig struct {
	Extends         string          `json:"extends"`
	CompilerOptions CompilerOptions `json:"compilerOptions"`
}

// CompilerOptions holds the compiler settings the build consults.
type CompilerOptions struct {
	Target  string   `json:"target"`
	BaseURL string   `json:"baseUrl"`
	Lib     []string `json:"lib"`
}

// SupportsES2015 reports whether the compile target allows ES2015 syntax.
// Only es3 and es5 do not; a missing target counts as modern.
func (t *Tsconfig) SupportsES2015() bool {
	switch strings.ToLower(t.CompilerOptions.Target) {
	case "es3", "es5":
		return false
	}
	return true
}

// maxExtendsDepth bounds extends chains.
const maxExtendsDepth = 16

// ReadTsconfig loads a tsconfig file, following relative extends chains.
// Settings in the file override the ones it extends.
func ReadTsconfig(path string) (*Tsconfig, error) {
	return readTsconfig(path, 0)
}

func readTsconfig(path string, depth int) (*Tsconfig, error) {
	if depth > maxExtendsDepth {
		return nil, fmt.Errorf("tsconfig %s: extends chain too deep", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingDependencyError{Kind: "tsconfig", Name: path, Detail: "file not found"}
		}
		return nil, fmt.Errorf("reading tsconfig: %w", err)
	}

	var tc Tsconfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &tc); err != nil {
		return nil, fmt.Errorf("parsing tsconfig %s: %w", path, err)
	}

	// Package-style extends ("@tsconfig/strictest") need module resolution; only
	// file paths are followed.
	if tc.Extends == "" || !(strings.HasPrefix(tc.Extends, ".") || filepath.IsAbs(tc.Extends)) {
		return &tc, nil
	}
	parentPath := absUnder(filepath.Dir(path), tc.Extends)
	if filepath.Ext(parentPath) == "" {
		parentPath += ".json"
	}
	parent, err := readTsconfig(parentPath, depth+1)
	if err != nil {
		return nil, err
	}
	if tc.CompilerOptions.Target == "" {
		tc.CompilerOptions.Target = parent.CompilerOptions.Target
	}
	if tc.CompilerOptions.BaseURL == "" {
		tc.CompilerOptions.BaseURL = parent.CompilerOptions.BaseURL
	}
	if tc.CompilerOptions.Lib == nil {
		tc.CompilerOptions.Lib = parent.CompilerOptions.Lib
	}
	return &tc, nil
}
