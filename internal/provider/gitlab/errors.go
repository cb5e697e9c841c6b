package gitlab

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/valksor/go-planbook/internal/provider/token"
)

// Error types for the GitLab provider.
var (
	ErrNoToken              = token.ErrNoToken
	ErrProjectNotDetected   = errors.New("could not detect project from git remote")
	ErrProjectNotConfigured = errors.New("project not configured")
	ErrProjectNotFound      = errors.New("project not found")
	ErrRateLimited          = errors.New("gitlab api rate limit exceeded")
	ErrNetworkError         = errors.New("network error communicating with gitlab")
	ErrUnauthorized         = errors.New("gitlab token unauthorized or expired")
	ErrInsufficientScope    = errors.New("gitlab token lacks required scope")
)

// wrapAPIError converts GitLab API errors to typed errors.
func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "401") || strings.Contains(errMsg, "403 Unauthorized") {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if strings.Contains(errMsg, "429") || (strings.Contains(errMsg, "403") && strings.Contains(errMsg, "rate limit")) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	if strings.Contains(errMsg, "404") {
		return fmt.Errorf("%w: %w", ErrProjectNotFound, err)
	}
	if strings.Contains(errMsg, "403") {
		return fmt.Errorf("%w: %w", ErrInsufficientScope, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrNetworkError, err)
	}

	return err
}
