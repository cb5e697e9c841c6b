package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// PlanbookDir is the name of the planbook configuration directory.
	PlanbookDir = ".planbook"
	// ConfigFileName is the name of the workspace configuration file.
	ConfigFileName = "config.yaml"
)

// Config holds the workspace configuration (.planbook/config.yaml)
type Config struct {
	SessionID  string        `yaml:"session_id,omitempty"`
	PolicyFile string        `yaml:"policy_file,omitempty"`
	UI         UIConfig      `yaml:"ui"`
	Publish    PublishConfig `yaml:"publish,omitempty"`
}

// UIConfig holds UI settings
type UIConfig struct {
	Color  bool   `yaml:"color"`
	Format string `yaml:"format"`
}

// PublishConfig holds issue tracker settings
type PublishConfig struct {
	Labels []string       `yaml:"labels,omitempty"`
	GitHub GitHubSettings `yaml:"github,omitempty"`
	GitLab GitLabSettings `yaml:"gitlab,omitempty"`
}

// GitHubSettings holds GitHub publishing settings
type GitHubSettings struct {
	Token string `yaml:"token,omitempty"`
	Owner string `yaml:"owner,omitempty"`
	Repo  string `yaml:"repo,omitempty"`
	Host  string `yaml:"host,omitempty"` // API base URL for GitHub Enterprise
}

// GitLabSettings holds GitLab publishing settings
type GitLabSettings struct {
	Token   string `yaml:"token,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Project string `yaml:"project,omitempty"`
}

// NewDefault creates a Config with default values
func NewDefault() *Config {
	return &Config{
		UI: UIConfig{
			Color:  true,
			Format: "text",
		},
	}
}

// Dir returns <workDir>/.planbook
func Dir(workDir string) string {
	return filepath.Join(workDir, PlanbookDir)
}

// Path returns the config file path for workDir
func Path(workDir string) string {
	return filepath.Join(Dir(workDir), ConfigFileName)
}

// Exists reports whether workDir has a config file
func Exists(workDir string) bool {
	_, err := os.Stat(Path(workDir))
	return err == nil
}

// Load reads .planbook/config.yaml. A missing file yields the defaults.
func Load(workDir string) (*Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(Path(workDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .planbook/config.yaml
func (c *Config) Save(workDir string) error {
	if err := os.MkdirAll(Dir(workDir), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := `# Planbook workspace configuration
# Run 'planbook init' to regenerate with defaults

`
	content := header + string(data)

	if c.PolicyFile == "" {
		content += `
# Command policy used while planning mode is on
# Example:
# policy_file: .planbook/policy.yaml
`
	}

	if c.Publish.GitHub.Repo == "" && c.Publish.GitLab.Project == "" {
		content += `
# Issue trackers for 'planbook publish'
# Tokens are better kept in .planbook/.env (PLANBOOK_GITHUB_TOKEN, PLANBOOK_GITLAB_TOKEN)
# Example:
# publish:
#     labels: [plan]
#     github:
#         owner: my-org
#         repo: my-repo
#     gitlab:
#         host: gitlab.example.com
#         project: group/project
`
	}

	if err := os.WriteFile(Path(workDir), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate performs validation beyond what YAML decoding checks
func (c *Config) Validate() error {
	switch c.UI.Format {
	case "text", "json":
		// OK
	default:
		return fmt.Errorf("invalid UI format: %s (must be text or json)", c.UI.Format)
	}

	if c.Publish.GitLab.Project != "" && !strings.Contains(c.Publish.GitLab.Project, "/") {
		return fmt.Errorf("invalid gitlab project: %s (must be group/project)", c.Publish.GitLab.Project)
	}

	return nil
}

// ResolvePolicyFile returns the policy file path, relative values joined onto workDir.
func (c *Config) ResolvePolicyFile(workDir string) string {
	if c.PolicyFile == "" || filepath.IsAbs(c.PolicyFile) {
		return c.PolicyFile
	}
	return filepath.Join(workDir, c.PolicyFile)
}
