//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// Carts only survive this when the storefront runs with REDIS_ADDR set.
func restartStorefrontContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", "compose", "restart", "storefront")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart storefront failed: %v\n%s", err, string(out))
	}
}
