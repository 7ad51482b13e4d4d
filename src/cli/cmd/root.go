package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sofmeright/packwright/src/config"
	"github.com/sofmeright/packwright/src/logger"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	log     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "packwright",
	Short: "Front-end build configuration and bundling CLI",
	Long:  "packwright resolves layered build options per app, checks asset paths, and bundles with esbuild.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.Setup(verbose)
		cmd.SetContext(log.WithContext(cmd.Context()))

		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		warnings, err := config.Validate(cfg)
		for _, w := range warnings {
			log.Warn().Msg(w)
		}
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .packwright.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
