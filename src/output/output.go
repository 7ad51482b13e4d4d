package output

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	units "github.com/docker/go-units"

	"github.com/sofmeright/packwright/src/build"
)

// Colors for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Colorize wraps text in color when enabled.
func Colorize(text, color string, enabled bool) string {
	if !enabled {
		return text
	}
	return color + text + ColorReset
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// RowStatus writes a row with label, detail, and a status icon.
func RowStatus(sec *Section, label, detail string, st Status, color bool) {
	icon := st.Icon(color)
	if detail != "" {
		sec.Row("%-14s %s %s", label, detail, icon)
	} else {
		sec.Row("%-14s %s", label, icon)
	}
}

// PlanSection renders the resolved options and derived work of a plan.
func PlanSection(w io.Writer, plan *build.BuildPlan, color bool) {
	name := "Plan"
	if plan.App != "" {
		name = "Plan · " + plan.App
	}
	sec := NewSection(w, name, 0, color)
	o := plan.Options

	sec.Row("%-14s %s", "target", o.Target)
	sec.Row("%-14s %s", "engine", plan.Engine)
	if o.Environment != "" {
		sec.Row("%-14s %s", "environment", o.Environment)
	}
	sec.Row("%-14s %s", "output", relTo(plan.ProjectRoot, o.OutputPath))
	sec.Row("%-14s %s", "hashing", hashingLabel(o.OutputHashing))
	sec.Row("%-14s aot=%t optimizer=%t sourcemaps=%t vendor=%t",
		"flags", o.AOT, o.BuildOptimizer, o.Sourcemaps, o.VendorChunk)
	if o.BaseHref != "" || o.DeployURL != "" {
		sec.Row("%-14s base_href=%q deploy_url=%q", "urls", o.BaseHref, o.DeployURL)
	}

	if len(plan.Entries) > 0 || len(plan.Scripts) > 0 || len(plan.Styles) > 0 {
		sec.Separator()
		for _, e := range plan.Entries {
			sec.Row("%-14s %s", e.Name, relTo(plan.ProjectRoot, e.Path))
		}
		for _, a := range plan.Scripts {
			aggregatedRow(sec, "script", a, plan.ProjectRoot, color)
		}
		for _, a := range plan.Styles {
			aggregatedRow(sec, "style", a, plan.ProjectRoot, color)
		}
	}

	if len(plan.Assets) > 0 {
		sec.Separator()
		for _, a := range plan.Assets {
			sec.Row("%-14s %s%s → %s", "asset",
				relTo(plan.ProjectRoot, a.Input), a.Glob, relTo(plan.ProjectRoot, a.Output))
		}
	}

	if len(plan.Replacements) > 0 {
		sec.Separator()
		keys := make([]string, 0, len(plan.Replacements))
		for k := range plan.Replacements {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sec.Row("%-14s %s → %s", "replace", relTo(plan.ProjectRoot, k), relTo(plan.ProjectRoot, plan.Replacements[k]))
		}
	}
	sec.Close()
}

func aggregatedRow(sec *Section, kind string, a build.AggregatedEntry, root string, color bool) {
	label := a.Entry
	if a.Lazy {
		label += " " + Dimmed("(lazy)", color)
	}
	paths := make([]string, len(a.Paths))
	for i, p := range a.Paths {
		paths[i] = relTo(root, p)
	}
	sec.Row("%-14s %s: %s", kind, label, strings.Join(paths, ", "))
}

func hashingLabel(m build.HashingMode) string {
	if m == "" {
		return string(build.HashingNone)
	}
	return string(m)
}

// ResultSection renders emitted files, budgets and warnings for a build.
func ResultSection(w io.Writer, r *build.BuildResult, color bool) {
	name := "Build"
	if r.App != "" {
		name = "Build · " + r.App
	}
	sec := NewSection(w, name, r.Duration, color)

	files := make([]build.OutputFile, len(r.Files))
	copy(files, r.Files)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Initial != files[j].Initial {
			return files[i].Initial
		}
		return files[i].Path < files[j].Path
	})
	for _, f := range files {
		label := f.Path
		if f.Initial {
			label = Colorize(label, ColorBold, color)
		}
		sec.Row("%-44s %10s", label, units.HumanSize(float64(f.Bytes)))
	}
	sec.Separator()
	sec.Row("%d files, %s total, %d assets copied", len(r.Files), units.HumanSize(float64(r.TotalBytes())), r.Assets)

	if len(r.Budgets) > 0 {
		sec.Separator()
		for _, v := range r.Budgets {
			st := StatusWarn
			if v.Level == build.BudgetError {
				st = StatusFailed
			}
			sec.Row("%s %s", st.Icon(color), v.String())
		}
	}
	for _, msg := range r.Warnings {
		sec.Row("%s %s", Colorize("WARN", ColorYellow, color), msg)
	}
	sec.Close()
}

func relTo(root, p string) string {
	if root == "" {
		return p
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}

// SummaryBytes formats a byte count for summary rows.
func SummaryBytes(n int64) string {
	return units.HumanSize(float64(n))
}
