package gitlab

import "github.com/valksor/go-planbook/internal/provider"

// Register adds the GitLab provider to the registry.
func Register(r *provider.Registry) {
	_ = r.Register(Info(), New)
}
