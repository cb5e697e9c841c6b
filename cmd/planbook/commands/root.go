package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/help"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/vcs"
)

var (
	cfg     *config.Config
	workDir string

	// Global flags.
	verbose    bool
	quiet      bool
	noColor    bool
	logJSON    bool
	noInput    bool
	stealStale bool
	sessionArg string
	dirArg     string
)

var rootCmd = &cobra.Command{
	Use:   "planbook",
	Short: "Persistent plans shared between assistant sessions",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Long: `Planbook keeps plans with ordered steps as files inside the project, so
several assistant sessions can create, claim and execute them without
stepping on each other.

Quick Start:
  planbook init                          Set up .planbook in this repository
  planbook create "Refactor auth" --step "Read code" --step "Write tests"
  planbook list                          Plans grouped by status
  planbook execute <id>                  Claim a plan and start working on it
  planbook step done <id> 1              Tick off a step

Automated callers:
  planbook tool < request.json           One JSON action request
  planbook serve                         Newline-delimited JSON requests`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd, true)
	},
}

// setup resolves the workspace, loads .env and configures logging and config.
// With strictConfig false an unreadable config.yaml falls back to defaults.
func setup(cmd *cobra.Command, strictConfig bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	base := dirArg
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		base = cwd
	}
	workDir = vcs.WorkspaceRoot(ctx, base)

	// Load .env FIRST so PLANBOOK_* variables apply to everything below
	if err := config.LoadDotEnv(workDir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to load %s: %v\n", config.EnvPath(workDir), err)
	}

	level := log.LevelWarn
	if quiet {
		level = log.LevelError
	}
	log.Configure(log.Options{
		Level:   level,
		Verbose: verbose,
		JSON:    logJSON,
		Output:  cmd.ErrOrStderr(),
	})

	var err error
	cfg, err = config.Load(workDir)
	if err != nil {
		if strictConfig {
			return fmt.Errorf("load config: %w", err)
		}
		log.Debug("using default config", log.Err(err))
		cfg = config.NewDefault()
	}

	// Config can switch colors off; the flag and NO_COLOR always can
	display.InitColors(noColor || !cfg.UI.Color)

	log.Debug("initialized", "workdir", workDir, "verbose", verbose)
	return nil
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVar(&noColor, "no-color", false, "Disable color output")
	pf.BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	pf.BoolVar(&noInput, "no-input", false, "Never prompt, even on a terminal")
	pf.BoolVar(&stealStale, "steal-stale", false, "Break stale locks without asking")
	pf.StringVar(&sessionArg, "session", "", "Session id (default: $PLANBOOK_SESSION, config, or a generated id)")
	pf.StringVarP(&dirArg, "dir", "C", "", "Run as if started in this directory")

	help.SetupContextualHelp(rootCmd, func() *help.HelpContext {
		base := dirArg
		if base == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return &help.HelpContext{}
			}
			base = cwd
		}
		return help.LoadContext(vcs.WorkspaceRoot(context.Background(), base))
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "plans",
		Title: "Plan Commands:",
	}, &cobra.Group{
		ID:    "session",
		Title: "Session Commands:",
	}, &cobra.Group{
		ID:    "config",
		Title: "Configuration Commands:",
	})
}
