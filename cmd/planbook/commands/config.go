package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/validation"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "config",
	Short:   "Inspect and validate workspace configuration",
	Long:    `Commands for inspecting and validating .planbook configuration and plan files.`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and plan files for problems",
	Long: `Check the workspace for problems that commands would otherwise work around.

Performs the following checks:
  - config.yaml syntax and values, tokens stored outside .env
  - .env syntax
  - the configured policy file and its patterns
  - custom templates
  - settings.json values
  - plan records whose header loads with defaults or drops steps
  - stale or orphaned locks and leftover temp files
  - session state pointing at deleted plans

Examples:
  planbook config validate                    # Validate the workspace
  planbook config validate --strict           # Treat warnings as errors
  planbook config validate --format json      # JSON output for CI`,
	Args: cobra.NoArgs,
	// A broken config.yaml is exactly what this command reports on.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd, false)
	},
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var (
	validateStrict bool
	validateFormat string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"Treat warnings as errors (exit code 1 if warnings present)")
	configValidateCmd.Flags().StringVar(&validateFormat, "format", "text",
		"Output format: text, json")
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	validator := validation.New(workDir, validation.Options{
		Strict:  validateStrict,
		LockTTL: storage.DefaultLockTTL,
	})

	if validateFormat == "text" {
		printf(cmd.OutOrStdout(), "Validating %s...\n\n", config.Dir(workDir))
	}

	result, err := validator.Validate(cmd.Context())
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	printf(cmd.OutOrStdout(), "%s", result.Format(validateFormat))

	if !result.Valid {
		if validateStrict && result.Errors == 0 {
			return fmt.Errorf("validation failed: %d warning(s) in strict mode", result.Warnings)
		}
		return errors.New("validation failed")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	shown := *cfg
	shown.Publish.GitHub.Token = mask(shown.Publish.GitHub.Token)
	shown.Publish.GitLab.Token = mask(shown.Publish.GitLab.Token)
	return printYAML(cmd.OutOrStdout(), &shown)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
