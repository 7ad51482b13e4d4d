package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/output"
	"github.com/sofmeright/packwright/src/pkgmanager"
	"github.com/sofmeright/packwright/src/serviceworker"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the project setup",
	Long: `Inspect the project directory and configuration.

Reports the detected package manager and lockfiles, tsconfig files,
package manager advice and, for apps with service_worker enabled, whether
the service worker package is installed and recent enough.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	color := output.UseColor()
	w := os.Stdout

	root, err := cfg.Root()
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	det, err := build.DetectProject(root)
	if err != nil {
		return fmt.Errorf("detecting project: %w", err)
	}

	sec := output.NewSection(w, "Doctor", 0, color)
	output.RowStatus(sec, "package.json", "", output.StatusOf(det.HasPackageJSON), color)
	if len(det.Lockfiles) > 0 {
		sec.Row("%-14s %s", "lockfiles", strings.Join(det.Lockfiles, ", "))
	}
	if det.PackageManager != "" {
		sec.Row("%-14s %s (from lockfile)", "detected", det.PackageManager)
	}
	sec.Row("%-14s %s", "configured", cfg.Defaults.PackageManager)
	sec.Row("%-14s %s", "engines", strings.Join(build.All(), ", "))
	if len(det.Tsconfigs) > 0 {
		sec.Row("%-14s %s", "tsconfig", strings.Join(det.Tsconfigs, ", "))
	}

	hints := pkgmanager.Hint(cfg.Defaults.PackageManager, pkgmanager.SystemLookPath)
	for _, h := range hints {
		sec.Row("%s %s", output.Colorize("HINT", output.ColorYellow, color), h)
	}

	failed := false
	for _, app := range cfg.Apps {
		if !app.ServiceWorker {
			continue
		}
		sec.Separator()
		dir, err := serviceworker.CheckSupport(root)
		if err != nil {
			failed = true
			var missing *build.MissingDependencyError
			detail := err.Error()
			if errors.As(err, &missing) {
				detail = missing.Detail
			}
			output.RowStatus(sec, "service worker", appLabel(app.Name)+": "+detail, output.StatusFailed, color)
			continue
		}
		output.RowStatus(sec, "service worker", appLabel(app.Name)+": "+dir, output.StatusOK, color)
	}
	sec.Close()

	if failed {
		return errors.New("doctor found problems")
	}
	return nil
}
