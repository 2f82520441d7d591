// Package revision identifies the checkout a ruleset tree was taken from.
package revision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ShortLength is the number of revision characters recorded in generated files
const ShortLength = 12

// Func returns the current revision of a source tree
type Func func(ctx context.Context) (string, error)

// Short truncates rev to ShortLength characters
func Short(rev string) string {
	rev = strings.TrimSpace(rev)
	if len(rev) > ShortLength {
		return rev[:ShortLength]
	}
	return rev
}

// Git returns the short HEAD commit of the git checkout at repo
func Git(ctx context.Context, repo string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "-C", repo, "rev-parse", "HEAD")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git rev-parse in %s: %s: %w", repo, msg, err)
		}
		return "", fmt.Errorf("git rev-parse in %s: %w", repo, err)
	}

	rev := Short(stdout.String())
	if rev == "" {
		return "", errors.New("git rev-parse returned no revision")
	}
	return rev, nil
}

// Resolver returns a Func that yields override when set and the git HEAD of
// repo otherwise
func Resolver(repo, override string) Func {
	if override = strings.TrimSpace(override); override != "" {
		return func(context.Context) (string, error) {
			return Short(override), nil
		}
	}
	return func(ctx context.Context) (string, error) {
		return Git(ctx, repo)
	}
}
