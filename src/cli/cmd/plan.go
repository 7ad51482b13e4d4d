package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/config"
	"github.com/sofmeright/packwright/src/gitver"
	"github.com/sofmeright/packwright/src/serviceworker"

	_ "github.com/sofmeright/packwright/src/build/engines"
)

// selectApps returns the apps a command acts on: every app with all, else
// those matching the --app patterns (the first app when there are none).
func selectApps(patterns []string, all bool) ([]config.AppConfig, error) {
	if all {
		if len(patterns) > 0 {
			return nil, errors.New("--app and --all are mutually exclusive")
		}
		return cfg.Apps, nil
	}
	return cfg.SelectApps(patterns)
}

// planApps resolves a plan for each app concurrently. Plans come back in
// app order; the first failure cancels the rest.
func planApps(ctx context.Context, cmd *cobra.Command, flags *buildFlags, apps []config.AppConfig) ([]*build.BuildPlan, *gitver.VersionInfo, error) {
	root, err := cfg.Root()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving project root: %w", err)
	}
	explicit := flags.overrides(cmd, root)

	vi, verr := gitver.DetectVersion(root)
	if verr != nil {
		log.Debug().Err(verr).Msg("no version from git")
		vi = nil
	}

	plans := make([]*build.BuildPlan, len(apps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, app := range apps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, err := build.NewPlan(build.PlanInput{
				ProjectRoot: root,
				App:         app,
				Explicit:    explicit,
				Dirs:        build.OSDirChecker{},
				Exists:      fileExists,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", appLabel(app.Name), err)
			}
			if plan.Options.ServiceWorker {
				if _, err := serviceworker.CheckSupport(root); err != nil {
					return fmt.Errorf("%s: %w", appLabel(app.Name), err)
				}
			}
			if vi != nil {
				plan.Version = vi.Version
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, vi, err
	}
	return plans, vi, nil
}

func appLabel(name string) string {
	if name == "" {
		return "app"
	}
	return "app " + name
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func optionalName(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}
