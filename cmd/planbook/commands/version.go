package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/provider/token"
	"github.com/valksor/go-planbook/internal/update"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

var (
	versionCheck  bool
	versionPre    bool
	versionAPIURL string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information. With --check, also ask GitHub whether a newer
release exists.`,
	Args: cobra.NoArgs,
	// Skip workspace setup so version works anywhere.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check GitHub for a newer release")
	versionCmd.Flags().BoolVar(&versionPre, "pre", false, "Include pre-releases in --check")
	versionCmd.Flags().StringVar(&versionAPIURL, "api-url", "", "GitHub API base URL")
	_ = versionCmd.Flags().MarkHidden("api-url")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "planbook %s\n", Version)
	_, _ = fmt.Fprintf(out, "  Commit: %s\n", Commit)
	_, _ = fmt.Fprintf(out, "  Built:  %s\n", BuildTime)
	_, _ = fmt.Fprintf(out, "  Go:     %s\n", runtime.Version())

	if !versionCheck {
		return nil
	}

	// Unauthenticated checks work, a token only lifts the rate limit.
	tok, _ := token.ResolveToken(token.Config("GITHUB", "").WithEnvVars("GITHUB_TOKEN"))
	var opts []update.CheckerOption
	if versionAPIURL != "" {
		opts = append(opts, update.WithBaseURL(versionAPIURL))
	}
	checker, err := update.NewChecker(tok, opts...)
	if err != nil {
		return err
	}

	status, err := checker.Check(cmd.Context(), update.CheckOptions{
		CurrentVersion:    Version,
		IncludePreRelease: versionPre,
	})
	switch {
	case errors.Is(err, update.ErrDevBuild):
		_, _ = fmt.Fprintln(out, display.Muted("\nDevelopment build, skipping update check"))
		return nil
	case errors.Is(err, update.ErrNoUpdateAvailable):
		_, _ = fmt.Fprintf(out, "\n%s\n", display.SuccessMsg("Up to date (latest %s)", status.LatestVersion))
		return nil
	case err != nil:
		return fmt.Errorf("check for updates: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\n%s\n", display.InfoMsg("planbook %s is available", status.LatestVersion))
	if status.ReleaseURL != "" {
		_, _ = fmt.Fprintf(out, "  %s\n", status.ReleaseURL)
	}
	return nil
}
