package build

import (
	"os"
	"path/filepath"
)

// Detection holds what was discovered about a project directory.
type Detection struct {
	RootDir        string   // absolute path to project root
	HasPackageJSON bool     // package.json present
	Lockfiles      []string // relative lockfile names, in lockfileManagers order
	PackageManager string   // manager implied by the first lockfile, "" if none
	Tsconfigs      []string // tsconfig*.json files at the root
}

// lockfileManagers maps lockfile names to the package manager that writes them.
var lockfileManagers = []struct {
	file    string
	manager string
}{
	{"yarn.lock", "yarn"},
	{"pnpm-lock.yaml", "pnpm"},
	{"package-lock.json", "npm"},
	{"npm-shrinkwrap.json", "npm"},
}

// DetectProject inspects a project directory. Missing files are not errors;
// the detection simply records less.
func DetectProject(rootDir string) (*Detection, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	det := &Detection{RootDir: abs}

	if _, err := os.Stat(filepath.Join(abs, "package.json")); err == nil {
		det.HasPackageJSON = true
	}

	for _, lf := range lockfileManagers {
		if _, err := os.Stat(filepath.Join(abs, lf.file)); err == nil {
			det.Lockfiles = append(det.Lockfiles, lf.file)
			if det.PackageManager == "" {
				det.PackageManager = lf.manager
			}
		}
	}

	matches, _ := filepath.Glob(filepath.Join(abs, "tsconfig*.json"))
	for _, m := range matches {
		det.Tsconfigs = append(det.Tsconfigs, filepath.Base(m))
	}

	return det, nil
}
