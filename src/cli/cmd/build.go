package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/gitver"
	"github.com/sofmeright/packwright/src/output"
	"github.com/sofmeright/packwright/src/version"
)

// reportDir receives CI reports.
const reportDir = ".packwright/reports"

var (
	buildOpts   buildFlags
	buildApps   []string
	buildAll    bool
	buildDryRun bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Resolve options and bundle an app",
	Long: `Resolve build options for an app and bundle it.

Options are layered lowest first: target defaults, the app's settings in
the config file, then flags given on the command line. The result is
validated and every asset rule is checked before anything is written.

With --all every app is planned concurrently and then built in order.`,
	RunE: runBuild,
}

func init() {
	buildOpts.register(buildCmd.Flags())
	buildCmd.Flags().StringSliceVarP(&buildApps, "app", "a", nil, "apps to build by name or pattern; prefix ! to exclude (default: the first app)")
	buildCmd.Flags().BoolVar(&buildAll, "all", false, "build every app")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "show the plan without building")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ci := output.IsCI()
	color := output.UseColor()
	w := os.Stdout
	start := time.Now()

	apps, err := selectApps(buildApps, buildAll)
	if err != nil {
		return err
	}

	output.Banner(w, output.NewBannerInfo(version.Version, version.Commit, ""), color)

	// --- Plan ---
	output.SectionStartCollapsed(w, "pw_plan", "Plan")
	planStart := time.Now()
	plans, vi, err := planApps(ctx, cmd, &buildOpts, apps)
	output.ContextBlock(w, contextKV(len(apps), vi))
	if err != nil {
		output.SectionEnd(w, "pw_plan")
		return err
	}
	planElapsed := time.Since(planStart)
	if buildDryRun || verbose {
		for _, p := range plans {
			output.PlanSection(w, p, color)
		}
	}
	output.SectionEnd(w, "pw_plan")

	if buildDryRun {
		return nil
	}

	// --- Build ---
	var results []*build.BuildResult
	var buildErr error
	for _, plan := range plans {
		engine, err := build.Get(plan.Engine)
		if err != nil {
			return err
		}
		id := "pw_build_" + sectionID(plan.App)
		output.SectionStart(w, id, "Build "+plan.App)
		res, err := engine.Execute(ctx, plan)
		if res != nil {
			output.ResultSection(w, res, color)
			results = append(results, res)
		}
		output.SectionEnd(w, id)
		if err != nil {
			buildErr = fmt.Errorf("%s: %w", appLabel(plan.App), err)
			break
		}
	}

	if ci && len(results) > 0 {
		if jErr := output.WriteBudgetJUnit(reportDir, results); jErr != nil {
			log.Warn().Err(jErr).Msg("failed to write junit report")
		}
	}

	// --- Summary ---
	sumSec := output.NewSection(w, "Summary", 0, color)
	output.SummaryRow(w, "plan", output.StatusOK, fmt.Sprintf("%d app(s) in %s", len(plans), planElapsed.Round(time.Millisecond)), color)
	for _, r := range results {
		st := output.StatusOK
		if r == results[len(results)-1] && buildErr != nil {
			st = output.StatusFailed
		}
		output.SummaryRow(w, summaryName(r.App), st,
			fmt.Sprintf("%d file(s), %s", len(r.Files), output.SummaryBytes(r.TotalBytes())), color)
	}
	sumSec.Separator()
	output.SummaryTotal(w, time.Since(start), output.StatusOf(buildErr == nil), color)
	sumSec.Close()

	return buildErr
}

// contextKV describes the run for the context block.
func contextKV(apps int, vi *gitver.VersionInfo) []output.KV {
	kv := []output.KV{
		{Key: "Project", Value: cfg.Project.Name},
		{Key: "Apps", Value: fmt.Sprintf("%d", apps)},
	}
	if vi != nil {
		kv = append(kv,
			output.KV{Key: "Version", Value: vi.Version},
			output.KV{Key: "Commit", Value: vi.SHA},
			output.KV{Key: "Branch", Value: vi.Branch},
		)
	}
	if pipe := os.Getenv("CI_PIPELINE_ID"); pipe != "" {
		kv = append(kv, output.KV{Key: "Pipeline", Value: pipe})
	}
	return kv
}

func summaryName(app string) string {
	if app == "" {
		return "build"
	}
	return app
}

// sectionID makes an app name safe for a GitLab section id.
func sectionID(app string) string {
	if app == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, app)
}
