package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/provider"
	"github.com/valksor/go-planbook/internal/provider/github"
	"github.com/valksor/go-planbook/internal/provider/gitlab"
	"github.com/valksor/go-planbook/internal/vcs"
)

var (
	publishTo      string
	publishOwner   string
	publishRepo    string
	publishProject string
	publishHost    string
	publishLabels  []string
	publishDryRun  bool
	publishJSON    bool
)

var publishCmd = &cobra.Command{
	Use:     "publish <id>",
	GroupID: "plans",
	Short:   "Open an issue from a plan on GitHub or GitLab",
	Long: `Create an issue whose body lists the plan's steps as a task list followed
by the plan body.

The tracker is taken from --to, then the last tracker used in this
workspace, then the host of the git remote. Repository and project default
to config.yaml and then to the git remote.

Tokens are read from PLANBOOK_GITHUB_TOKEN, GITHUB_TOKEN, config.yaml or
'gh auth token' for GitHub, and from PLANBOOK_GITLAB_TOKEN, GITLAB_TOKEN or
config.yaml for GitLab.`,
	Example: `  planbook publish 1a2b3c4d
  planbook publish 1a2b3c4d --to gitlab --project group/app
  planbook publish 1a2b3c4d --to github --owner acme --repo api --label plan
  planbook publish 1a2b3c4d --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	f := publishCmd.Flags()
	f.StringVar(&publishTo, "to", "", "Tracker: github or gitlab")
	f.StringVar(&publishOwner, "owner", "", "GitHub repository owner")
	f.StringVar(&publishRepo, "repo", "", "GitHub repository name")
	f.StringVar(&publishProject, "project", "", "GitLab project path (group/project)")
	f.StringVar(&publishHost, "host", "", "GitHub Enterprise API URL or GitLab host")
	f.StringSliceVarP(&publishLabels, "label", "l", nil, "Issue label (repeatable)")
	f.BoolVar(&publishDryRun, "dry-run", false, "Print the issue instead of creating it")
	f.BoolVar(&publishJSON, "json", false, "Output the created issue as JSON")
}

// newRegistry returns the trackers plans can be published to.
func newRegistry() *provider.Registry {
	r := provider.NewRegistry()
	github.Register(r)
	gitlab.Register(r)
	return r
}

func runPublish(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, actions.Request{Action: actions.ActionGet, ID: args[0]})
		if err != nil {
			return err
		}
		plan := res.Plan

		if publishDryRun {
			printf(a.out, "%s\n\n%s", display.Bold(provider.IssueTitle(plan)), provider.IssueBody(plan))
			return nil
		}

		remote := remoteURL(ctx)
		name := trackerName(publishTo, a.prefs.LastProvider, remote)
		pcfg, err := trackerConfig(name, remote)
		if err != nil {
			return err
		}

		pub, err := newRegistry().Create(ctx, name, pcfg)
		if err != nil {
			return err
		}
		issue, err := pub.Publish(ctx, plan)
		if err != nil {
			return err
		}

		a.prefs.LastProvider = name
		a.prefsDirty = true
		log.Info("plan published", log.PlanID(plan.ID), "provider", name, "issue", issue.Reference)

		if jsonOutput(publishJSON) {
			return printJSON(a.out, issue)
		}
		printf(a.out, "%s\n", display.SuccessMsg("Published plan %s as %s", plan.DisplayID(), issue.Reference))
		if issue.URL != "" {
			printf(a.out, "  %s\n", display.Cyan(issue.URL))
		}
		return nil
	})
}

// remoteURL returns the workspace's default git remote, or "" outside a
// repository.
func remoteURL(ctx context.Context) string {
	g, err := vcs.New(ctx, workDir)
	if err != nil {
		return ""
	}
	url, err := g.DefaultRemoteURL(ctx)
	if err != nil {
		log.Debug("no git remote for publishing", log.Err(err))
		return ""
	}
	return url
}

// trackerName picks the flag, then the last tracker used, then guesses from
// the remote host.
func trackerName(flag, last, remote string) string {
	switch {
	case flag != "":
		return strings.ToLower(flag)
	case last != "":
		return last
	case strings.Contains(remote, "gitlab"):
		return gitlab.ProviderName
	default:
		return github.ProviderName
	}
}

// trackerConfig merges flags, config.yaml and the git remote.
func trackerConfig(name, remote string) (provider.Config, error) {
	labels := publishLabels
	if len(labels) == 0 {
		labels = cfg.Publish.Labels
	}

	switch name {
	case github.ProviderName:
		gh := cfg.Publish.GitHub
		pc := provider.Config{
			Token:  gh.Token,
			Host:   firstNonEmpty(publishHost, gh.Host),
			Owner:  firstNonEmpty(publishOwner, gh.Owner),
			Repo:   firstNonEmpty(publishRepo, gh.Repo),
			Labels: labels,
		}
		if (pc.Owner == "" || pc.Repo == "") && remote != "" {
			owner, repo, err := github.DetectRepository(remote)
			if err != nil {
				return pc, err
			}
			pc.Owner = firstNonEmpty(pc.Owner, owner)
			pc.Repo = firstNonEmpty(pc.Repo, repo)
		}
		return pc, nil

	case gitlab.ProviderName:
		gl := cfg.Publish.GitLab
		pc := provider.Config{
			Token:   gl.Token,
			Host:    firstNonEmpty(publishHost, gl.Host, gitlab.DefaultHost),
			Project: firstNonEmpty(publishProject, gl.Project),
			Labels:  labels,
		}
		if pc.Project == "" && remote != "" {
			project, err := gitlab.DetectProject(remote, pc.Host)
			if err != nil {
				return pc, err
			}
			pc.Project = project
		}
		return pc, nil
	}
	return provider.Config{}, fmt.Errorf("unknown tracker %q (want %s or %s)", name, github.ProviderName, gitlab.ProviderName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
