// Package pkgmanager suggests a package manager setting based on what is
// installed.
package pkgmanager

import (
	"fmt"
	"os/exec"
)

// LookPath reports whether a command is installed.
type LookPath func(name string) bool

// SystemLookPath consults $PATH.
func SystemLookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Hint returns advice for the configured package manager. The "default"
// setting gets a suggestion when yarn or cnpm is available; any other
// non-npm manager that is not installed gets a warning.
func Hint(packageManager string, look LookPath) []string {
	if packageManager == "" {
		packageManager = "default"
	}

	if packageManager != "default" {
		if packageManager == "npm" || look(packageManager) {
			return nil
		}
		return []string{
			fmt.Sprintf("Seems that %s is not installed.", packageManager),
			"You can set defaults.package_manager to npm.",
		}
	}

	yarn, cnpm := look("yarn"), look("cnpm")
	switch {
	case yarn && cnpm:
		return []string{"You can set defaults.package_manager to yarn or cnpm."}
	case yarn:
		return []string{"You can set defaults.package_manager to yarn."}
	case cnpm:
		return []string{"You can set defaults.package_manager to cnpm."}
	}
	return nil
}
