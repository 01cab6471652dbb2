package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fjglira/specwalk/internal/config"
	"github.com/fjglira/specwalk/internal/domain"
)

var printConfig bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and optionally print the effective settings",
	Long: `Resolves the configuration the way every other command does (--config,
then $SPECWALK_CONFIG, then the built-in defaults) and validates it. With
--print the effective settings, defaults included, are written as YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s is valid.\n", configSource())
		if !printConfig {
			return nil
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return domain.NewError(domain.PhaseConfig, "", 0, "failed to encode configuration", err)
		}
		return enc.Close()
	},
}

func init() {
	validateCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration as YAML")
	rootCmd.AddCommand(validateCmd)
}

func configSource() string {
	if cfgFile != "" {
		return fmt.Sprintf("%q", cfgFile)
	}
	if path := os.Getenv(config.EnvVar); path != "" {
		return fmt.Sprintf("%q ($%s)", path, config.EnvVar)
	}
	return "built-in defaults"
}
