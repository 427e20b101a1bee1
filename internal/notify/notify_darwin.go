//go:build darwin

package notify

import (
	"context"
	"fmt"
	"os/exec"
)

func send(ctx context.Context, title, body string, _ Options) error {
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}
