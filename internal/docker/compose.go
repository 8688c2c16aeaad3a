package docker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ComposeUp applies one compose file with `<engine> compose -f <file>
// up -d`. Applying is a deliberate step separate from writing the
// file; stderr is surfaced on failure so the user sees why the apply
// did not take effect.
func (c *Client) ComposeUp(ctx context.Context, file string) error {
	cmd := exec.CommandContext(ctx, c.ComposeCommand(), "compose", "-f", file, "up", "-d")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s compose up -d failed: %s", c.ComposeCommand(), stderr.String())
		}
		return fmt.Errorf("%s compose up -d failed: %w", c.ComposeCommand(), err)
	}
	return nil
}
