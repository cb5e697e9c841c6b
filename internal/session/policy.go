package session

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Verdict is the outcome of classifying a shell command.
type Verdict struct {
	Allowed bool
	// Rule is the pattern that decided, empty when nothing matched.
	Rule   string
	Reason string
}

// Policy classifies shell commands while planning mode is on. Destructive
// patterns always win over safe ones. A command matching neither list is
// allowed unless DenyUnmatched is set.
type Policy struct {
	Destructive   []*regexp.Regexp
	Safe          []*regexp.Regexp
	DenyUnmatched bool
}

// Classify decides whether command may run in planning mode.
func (p *Policy) Classify(command string) Verdict {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return Verdict{Allowed: true, Reason: "empty command"}
	}

	for _, re := range p.Destructive {
		if re.MatchString(cmd) {
			return Verdict{Rule: re.String(), Reason: "matches destructive pattern " + re.String()}
		}
	}
	for _, re := range p.Safe {
		if re.MatchString(cmd) {
			return Verdict{Allowed: true, Rule: re.String(), Reason: "matches safe pattern " + re.String()}
		}
	}

	if p.DenyUnmatched {
		return Verdict{Reason: "not in the safe command list"}
	}
	return Verdict{Allowed: true, Reason: "no rule matched"}
}

// IsSafe reports whether command may run in planning mode.
func (p *Policy) IsSafe(command string) bool {
	return p.Classify(command).Allowed
}

// defaultDestructive are commands that change files, packages, processes or
// repository state.
var defaultDestructive = []string{
	`(^|[;&|]\s*)(sudo|su|doas)\b`,
	`(^|[;&|]\s*)(rm|rmdir|mv|cp|mkdir|touch|ln|install|shred|truncate|dd|mkfs\S*)\b`,
	`(^|[;&|]\s*)(chmod|chown|chgrp|chattr)\b`,
	`(^|[;&|]\s*)(vi|vim|nvim|nano|emacs|code|subl|ed)\b`,
	`(^|[;&|]\s*)(kill|pkill|killall|reboot|shutdown|halt|poweroff)\b`,
	`(^|[;&|]\s*)tee\b`,
	`(^|[^<>&0-9])>{1,2}\s*[^&\s]`,
	`\bsed\b[^|;&]*\s-i`,
	`\bfind\b.*\s-(delete|exec|execdir|ok|fprint)\b`,
	`\bgit\s+(add|commit|push|pull|merge|rebase|reset|checkout|switch|restore|stash|cherry-pick|revert|tag|init|clone|clean|rm|mv|am|apply|fetch)\b`,
	`\bgit\s+branch\s+-[dDmM]\b`,
	`\b(npm|pnpm|yarn|bun)\s+(install|i|add|remove|rm|uninstall|un|update|up|upgrade|ci|link|publish|run|exec|dlx|init|create)\b`,
	`\b(pip|pip3|pipx|uv)\s+(install|uninstall|sync|add|remove)\b`,
	`\b(apt|apt-get|yum|dnf|pacman|apk|zypper|brew|port|snap|flatpak)\s+(install|remove|purge|update|upgrade|uninstall|reinstall|-S|-R)\b`,
	`\b(go)\s+(install|get|mod\s+tidy|generate)\b`,
	`\bcargo\s+(install|add|remove|update|publish)\b`,
	`\b(systemctl|service|launchctl)\s+\S*\s*(start|stop|restart|reload|enable|disable|load|unload)\b`,
	`\b(docker|podman)\s+(run|rm|rmi|stop|kill|build|push|pull|exec|compose)\b`,
	`\bkubectl\s+(apply|delete|create|edit|patch|scale|rollout|replace)\b`,
	`\bterraform\s+(apply|destroy|import)\b`,
	`\bcurl\b.*\s(-X\s*(POST|PUT|PATCH|DELETE)|-d|--data)\b`,
	`\bcurl\b.*\|\s*(sh|bash|zsh)\b`,
	`\bwget\b`,
}

// defaultSafe are read-only inspection commands.
var defaultSafe = []string{
	`^\s*(cat|head|tail|less|more|bat)\b`,
	`^\s*(grep|egrep|fgrep|rg|ag|ack)\b`,
	`^\s*(find|fd|locate|ls|tree|exa|eza|pwd|cd)\b`,
	`^\s*(wc|sort|uniq|cut|tr|column|diff|cmp|comm|nl|jq|yq|awk)\b`,
	`^\s*(file|stat|du|df|which|whereis|type|realpath|basename|dirname)\b`,
	`^\s*(echo|printf|env|printenv|uname|whoami|id|date|uptime|hostname)\b`,
	`^\s*(ps|top|htop|free|lsof)\b`,
	`^\s*sed\s+-n\b`,
	`^\s*git\s+(status|log|diff|show|blame|branch|remote|ls-files|ls-tree|rev-parse|describe|shortlog|grep|config\s+--get)\b`,
	`^\s*(npm|yarn|pnpm)\s+(list|ls|view|info|why|outdated|audit|search)\b`,
	`^\s*go\s+(list|doc|version|env|vet)\b`,
	`^\s*(node|python|python3|go|ruby|java|cargo|rustc)\s+(--version|-v|version)\b`,
	`^\s*curl\s+(-s\s+)?(-I|--head)\b`,
}

// DefaultPolicy returns the production rule set.
func DefaultPolicy() *Policy {
	return &Policy{
		Destructive: mustCompileAll(defaultDestructive),
		Safe:        mustCompileAll(defaultSafe),
	}
}

func mustCompileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// policyFile is the YAML form of a Policy. Absent lists keep the defaults.
type policyFile struct {
	Destructive   []string `yaml:"destructive"`
	Safe          []string `yaml:"safe"`
	DenyUnmatched bool     `yaml:"deny_unmatched"`
}

// MarshalYAML renders p in the policy file format.
func (p *Policy) MarshalYAML() (any, error) {
	return policyFile{
		Destructive:   patterns(p.Destructive),
		Safe:          patterns(p.Safe),
		DenyUnmatched: p.DenyUnmatched,
	}, nil
}

func patterns(res []*regexp.Regexp) []string {
	out := make([]string, len(res))
	for i, re := range res {
		out[i] = re.String()
	}
	return out
}

// ParsePolicy builds a policy from YAML. Lists present in data replace the
// corresponding default list.
func ParsePolicy(data []byte) (*Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	p := DefaultPolicy()
	p.DenyUnmatched = pf.DenyUnmatched
	if pf.Destructive != nil {
		re, err := compileAll(pf.Destructive)
		if err != nil {
			return nil, err
		}
		p.Destructive = re
	}
	if pf.Safe != nil {
		re, err := compileAll(pf.Safe)
		if err != nil {
			return nil, err
		}
		p.Safe = re
	}
	return p, nil
}

// LoadPolicy reads a YAML rule file. An empty path yields the default policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}
