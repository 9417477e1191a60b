//go:build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// restartService runs E2E_RESTART_CMD through the shell, e.g.
// "docker compose restart store" or "systemctl restart entrega".
func restartService(t *testing.T, ctx context.Context, command string) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("restart %q failed: %v\n%s", command, err, string(out))
	}
}
