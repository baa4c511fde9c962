package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/guilt/groupenc/internal/configs"
)

// setupTestEnvironment isolates the CLI from the user's config and keeps
// generated keys small. It returns the directory holding the vault and keys.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	t.Setenv(configs.EnvConfigFile, filepath.Join(dir, "missing.toml"))
	t.Setenv(configs.EnvKeyBits, "1024")
	t.Setenv(configs.EnvAllowListing, "")
	t.Setenv(configs.EnvAudit, "")
	t.Setenv(configs.EnvValueEncoding, "")

	t.Cleanup(ResetGlobalState)
	return dir
}

// runCLI executes the command tree as user against dir/vault.json and
// returns stdout and stderr.
func runCLI(t *testing.T, dir, user, stdin string, args ...string) (string, string, error) {
	t.Helper()
	ResetGlobalState()

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetIn(strings.NewReader(stdin))

	full := append([]string{}, args...)
	full = append(full,
		"--vault-file", vaultPath(dir),
		"--private-key-file", filepath.Join(dir, user+"_private"),
		"--public-key-file", filepath.Join(dir, user+"_public"),
	)
	RootCmd.SetArgs(full)

	err := RootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun is runCLI that fails the test on error.
func mustRun(t *testing.T, dir, user string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, dir, user, "", args...)
	if err != nil {
		t.Fatalf("groupenc %v failed: %v\nstderr: %s", args, err, stderr)
	}
	return stdout
}

func vaultPath(dir string) string {
	return filepath.Join(dir, "vault.json")
}

// writePublicKey saves user's public key, as printed by 'id', to a file and
// returns the '@path' argument naming it.
func writePublicKey(t *testing.T, dir, user string) string {
	t.Helper()
	pem := mustRun(t, dir, user, "id")
	path := filepath.Join(dir, user+".pem")
	if err := os.WriteFile(path, []byte(pem), 0644); err != nil {
		t.Fatalf("Failed to write public key: %v", err)
	}
	return "@" + path
}
