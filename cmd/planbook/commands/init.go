package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/provider/github"
	"github.com/valksor/go-planbook/internal/provider/gitlab"
	"github.com/valksor/go-planbook/internal/session"
	"github.com/valksor/go-planbook/internal/storage"
)

// PolicyFileName is the rule file written by `init --policy`.
const PolicyFileName = "policy.yaml"

var initPolicy bool

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "config",
	Short:   "Initialize the plan workspace",
	Long: `Create the .planbook directory with a config file, an .env template for
tracker tokens and the retention settings, and add the per-user files to
.gitignore. Existing files are left alone.

The publish settings in config.yaml are seeded from the git remote.`,
	Example: `  planbook init
  planbook init --policy   # also write the planning mode rules for editing`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initPolicy, "policy", false, "Write the default command policy to .planbook/policy.yaml")
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := os.MkdirAll(config.Dir(workDir), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", config.Dir(workDir), err)
	}

	policyRel := filepath.Join(config.PlanbookDir, PolicyFileName)

	if config.Exists(workDir) {
		printf(out, "%s\n", display.Muted("Config file already exists: "+config.Path(workDir)))
	} else {
		c := config.NewDefault()
		seedPublish(ctx, c)
		if initPolicy {
			c.PolicyFile = policyRel
		}
		if err := c.Save(workDir); err != nil {
			return err
		}
		printf(out, "%s\n", display.SuccessMsg("Created config file: %s", config.Path(workDir)))
	}

	if initPolicy {
		created, err := writeDefaultPolicy(filepath.Join(workDir, policyRel))
		if err != nil {
			return err
		}
		if created {
			printf(out, "%s\n", display.SuccessMsg("Created command policy: %s", policyRel))
		}
	}

	created, err := config.WriteEnvTemplate(workDir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to create .env template: %v\n", err)
	} else if created {
		printf(out, "%s\n", display.SuccessMsg("Created .env template: %s", config.EnvPath(workDir)))
	}

	root := storage.ResolveRoot(workDir, os.Getenv)
	settingsPath := storage.NewPaths(root).SettingsPath()
	if _, err := os.Stat(settingsPath); errors.Is(err, fs.ErrNotExist) {
		if err := storage.SaveSettings(settingsPath, storage.DefaultSettings()); err != nil {
			return err
		}
	}

	changed, err := config.UpdateGitignore(workDir)
	if err != nil {
		return fmt.Errorf("update .gitignore: %w", err)
	}
	if changed {
		printf(out, "%s\n", display.SuccessMsg("Updated .gitignore"))
	}

	printf(out, "%s\n", display.InfoMsg("Workspace initialized in %s", workDir))
	printf(out, "%s", display.FormatNextSteps(
		display.NextStep{Command: `planbook create "First plan"`, Description: "write a plan"},
		display.NextStep{Command: "planbook mode plan", Description: "explore read-only and plan"},
	))
	return nil
}

// seedPublish fills the tracker settings from the git remote when it points
// at GitHub or GitLab.
func seedPublish(ctx context.Context, c *config.Config) {
	remote := remoteURL(ctx)
	switch {
	case remote == "":
		return
	case strings.Contains(remote, "github"):
		owner, repo, err := github.DetectRepository(remote)
		if err != nil {
			log.Debug("remote not usable for github", log.Err(err))
			return
		}
		c.Publish.GitHub.Owner, c.Publish.GitHub.Repo = owner, repo
	case strings.Contains(remote, "gitlab"):
		project, err := gitlab.DetectProject(remote, gitlab.DefaultHost)
		if err != nil {
			log.Debug("remote not usable for gitlab", log.Err(err))
			return
		}
		c.Publish.GitLab.Project = project
	}
}

func writeDefaultPolicy(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(session.DefaultPolicy())
	if err != nil {
		return false, fmt.Errorf("marshal policy: %w", err)
	}
	header := "# Shell command rules while planning mode is on.\n" +
		"# destructive patterns always win; deny_unmatched blocks everything not listed as safe.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return false, fmt.Errorf("write policy file: %w", err)
	}
	return true, nil
}
