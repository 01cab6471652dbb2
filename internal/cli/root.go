package cli

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjglira/specwalk/internal/config"
)

var (
	cfgFile string
	verbose bool
	log     *logrus.Logger
	logFile io.Closer
)

// rootCmd is the base command for specwalk.
var rootCmd = &cobra.Command{
	Use:   "specwalk",
	Short: "Aggregate and render nested specification results",
	Long: `specwalk renders the results of explored specification entry points.

Test runs export their path records as YAML (report.records_dir in
specwalk.yaml); specwalk folds them into a hierarchical report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, closer, err := config.NewLogger(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		log, logFile = l, closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: $SPECWALK_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Initialize default logger (overridden in PersistentPreRunE)
	log = logrus.New()
	log.SetOutput(os.Stderr)
}

// loadConfig loads the config named by --config, falling back to the
// environment and then to the defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.FromEnv()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
