package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect project configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get [dotted.path]",
	Short: "Print a configuration value",
	Long: `Print a value from the defaulted configuration as YAML.

Keys use the file's names; list elements are addressed by index:

  packwright config get defaults.warnings.hmr_warning
  packwright config get apps.0.out_dir`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		v, err := cfg.Get(path)
		if err != nil {
			return err
		}
		return writeYAML(v)
	},
}

var (
	configPlanOpts buildFlags
	configPlanApps []string
	configPlanAll  bool
)

var configPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the resolved build plan as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := selectApps(configPlanApps, configPlanAll)
		if err != nil {
			return err
		}
		plans, _, err := planApps(cmd.Context(), cmd, &configPlanOpts, apps)
		if err != nil {
			return err
		}
		if len(plans) == 1 {
			return writeYAML(plans[0])
		}
		return writeYAML(plans)
	},
}

func init() {
	configPlanOpts.register(configPlanCmd.Flags())
	configPlanCmd.Flags().StringSliceVarP(&configPlanApps, "app", "a", nil, "apps to plan by name or pattern (default: the first app)")
	configPlanCmd.Flags().BoolVar(&configPlanAll, "all", false, "plan every app")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPlanCmd)
	rootCmd.AddCommand(configCmd)
}

func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
