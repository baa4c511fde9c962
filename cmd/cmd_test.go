package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guilt/groupenc/internal/audit"
	"github.com/guilt/groupenc/internal/configs"
	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/vault"
	"gopkg.in/yaml.v3"
)

func TestBootstrapCommand(t *testing.T) {
	dir := setupTestEnvironment(t)

	out := mustRun(t, dir, "alice", "bootstrap")
	if !strings.Contains(out, "Created") || !strings.Contains(out, "Vault Ready.") {
		t.Errorf("unexpected bootstrap output: %q", out)
	}
	for _, name := range []string{"vault.json", "alice_private", "alice_public"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	before, err := os.ReadFile(vaultPath(dir))
	if err != nil {
		t.Fatalf("Failed to read vault: %v", err)
	}
	out = mustRun(t, dir, "alice", "bootstrap")
	if strings.Contains(out, "Created") {
		t.Errorf("second bootstrap should not create the vault: %q", out)
	}
	after, _ := os.ReadFile(vaultPath(dir))
	if string(before) != string(after) {
		t.Error("second bootstrap modified the vault")
	}
}

func TestIDCommand(t *testing.T) {
	dir := setupTestEnvironment(t)

	// The first run generates the keypair; its progress note must stay off
	// stdout so the output can be piped into induct.
	out, stderr, err := runCLI(t, dir, "alice", "", "id")
	if err != nil {
		t.Fatalf("id failed: %v", err)
	}
	if !strings.HasPrefix(out, "-----BEGIN PUBLIC KEY-----") {
		t.Errorf("expected a PEM public key, got %q", out)
	}
	if !strings.Contains(stderr, "Identity written") {
		t.Errorf("expected the key generation note on stderr, got %q", stderr)
	}
	public, err := os.ReadFile(filepath.Join(dir, "alice_public"))
	if err != nil {
		t.Fatalf("Failed to read public key: %v", err)
	}
	if strings.TrimSpace(out) != strings.TrimSpace(string(public)) {
		t.Error("id output does not match the public key file")
	}
}

func TestSecretCommands(t *testing.T) {
	dir := setupTestEnvironment(t)

	out := mustRun(t, dir, "alice", "secret", "add", "db_password", "hunter2")
	if !strings.Contains(out, "Key Added") {
		t.Errorf("unexpected add output: %q", out)
	}

	if out := mustRun(t, dir, "alice", "secret", "show", "db_password"); out != "hunter2\n" {
		t.Errorf("show = %q, want %q", out, "hunter2\n")
	}

	// Names are hashed by default.
	stdout, stderr, err := runCLI(t, dir, "alice", "", "secret", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("hashed vault should list nothing, got %q", stdout)
	}
	if !strings.Contains(stderr, "hashed names") {
		t.Errorf("expected a hashed names warning, got %q", stderr)
	}

	out = mustRun(t, dir, "alice", "secret", "remove", "db_password")
	if !strings.Contains(out, "Key Removed") {
		t.Errorf("unexpected remove output: %q", out)
	}

	stdout, stderr, err = runCLI(t, dir, "alice", "", "secret", "show", "db_password")
	if err != nil {
		t.Fatalf("show of a removed secret should not fail: %v", err)
	}
	if stdout != "" || !strings.Contains(stderr, "No secret named") {
		t.Errorf("unexpected output for missing secret: stdout %q, stderr %q", stdout, stderr)
	}
}

func TestSecretListWithListing(t *testing.T) {
	dir := setupTestEnvironment(t)
	t.Setenv(configs.EnvAllowListing, "true")

	for _, name := range []string{"b", "a", "c"} {
		mustRun(t, dir, "alice", "secret", "add", name, "value-"+name)
	}

	out := mustRun(t, dir, "alice", "secret", "list")
	names := strings.Fields(out)
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %q", out)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestSecretAddFromFile(t *testing.T) {
	dir := setupTestEnvironment(t)

	path := filepath.Join(dir, "cert.pem")
	if err := os.WriteFile(path, []byte("line one\nline two"), 0600); err != nil {
		t.Fatalf("Failed to write value file: %v", err)
	}

	mustRun(t, dir, "alice", "secret", "add", "cert", "@"+path)
	if out := mustRun(t, dir, "alice", "secret", "show", "cert"); out != "line one\nline two\n" {
		t.Errorf("show = %q", out)
	}

	// A missing file is taken literally.
	mustRun(t, dir, "alice", "secret", "add", "handle", "@nobody")
	if out := mustRun(t, dir, "alice", "secret", "show", "handle"); out != "@nobody\n" {
		t.Errorf("show = %q", out)
	}
}

func TestMembershipCommands(t *testing.T) {
	dir := setupTestEnvironment(t)

	mustRun(t, dir, "alice", "secret", "add", "token", "s3cret")
	bob := writePublicKey(t, dir, "bob")

	_, _, err := runCLI(t, dir, "bob", "", "secret", "show", "token")
	if !errors.Is(err, kerrors.ErrNotMember) {
		t.Fatalf("expected ErrNotMember before induct, got %v", err)
	}

	if out := mustRun(t, dir, "alice", "induct", bob); !strings.Contains(out, "Inducted") {
		t.Errorf("unexpected induct output: %q", out)
	}
	if out := mustRun(t, dir, "bob", "secret", "show", "token"); out != "s3cret\n" {
		t.Errorf("bob show = %q", out)
	}

	var members []vault.Member
	if err := json.Unmarshal([]byte(mustRun(t, dir, "alice", "member", "list", "--output", "json")), &members); err != nil {
		t.Fatalf("member list json: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	for _, m := range members {
		if !strings.HasPrefix(m.PublicKey, "-----BEGIN PUBLIC KEY-----") {
			t.Errorf("member %s has no PEM public key", m.ID)
		}
	}

	var yamlMembers []vault.Member
	if err := yaml.Unmarshal([]byte(mustRun(t, dir, "alice", "member", "list", "-o", "yaml")), &yamlMembers); err != nil {
		t.Fatalf("member list yaml: %v", err)
	}
	if len(yamlMembers) != 2 || yamlMembers[0].ID != members[0].ID {
		t.Errorf("yaml members %+v do not match json members %+v", yamlMembers, members)
	}

	text := mustRun(t, dir, "alice", "member", "list")
	if lines := strings.Split(strings.TrimSpace(text), "\n"); len(lines) != 2 {
		t.Errorf("expected 2 lines, got %q", text)
	}
	if !strings.Contains(text, "(you)") {
		t.Errorf("expected the caller to be marked, got %q", text)
	}

	out := mustRun(t, dir, "alice", "disown", "--identity", bob)
	if !strings.Contains(out, "Disowned") || !strings.Contains(out, "groupenc rotate") {
		t.Errorf("unexpected disown output: %q", out)
	}
	if out := mustRun(t, dir, "alice", "rotate", "--force"); !strings.Contains(out, "Rotated.") {
		t.Errorf("unexpected rotate output: %q", out)
	}

	_, _, err = runCLI(t, dir, "bob", "", "secret", "show", "token")
	if !errors.Is(err, kerrors.ErrNotMember) {
		t.Fatalf("expected ErrNotMember after disown, got %v", err)
	}
	if code := kerrors.ExitCode(err); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if out := mustRun(t, dir, "alice", "secret", "show", "token"); out != "s3cret\n" {
		t.Errorf("alice show after rotate = %q", out)
	}
}

func TestDisownSelfRequiresConfirm(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRun(t, dir, "alice", "bootstrap")

	_, _, err := runCLI(t, dir, "alice", "", "disown")
	if !errors.Is(err, kerrors.ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}

	out := mustRun(t, dir, "alice", "disown", "--confirm")
	if !strings.Contains(out, "Disowned") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "groupenc rotate") {
		t.Errorf("self-removal should not suggest rotate: %q", out)
	}
}

func TestRotatePrompt(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRun(t, dir, "alice", "secret", "add", "k", "v")

	before, err := os.ReadFile(vaultPath(dir))
	if err != nil {
		t.Fatalf("Failed to read vault: %v", err)
	}

	out, _, err := runCLI(t, dir, "alice", "n\n", "rotate")
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if !strings.Contains(out, "cancelled") {
		t.Errorf("expected cancellation, got %q", out)
	}
	after, _ := os.ReadFile(vaultPath(dir))
	if string(before) != string(after) {
		t.Error("cancelled rotate modified the vault")
	}

	out, _, err = runCLI(t, dir, "alice", "yes\n", "rotate")
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if !strings.Contains(out, "Rotated.") {
		t.Errorf("expected rotation, got %q", out)
	}
	after, _ = os.ReadFile(vaultPath(dir))
	if string(before) == string(after) {
		t.Error("confirmed rotate left the vault unchanged")
	}
}

func TestArgumentErrors(t *testing.T) {
	dir := setupTestEnvironment(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"MissingValue", []string{"secret", "add", "only-key"}, kerrors.ErrMissingArgument},
		{"MissingIdentity", []string{"induct"}, kerrors.ErrMissingArgument},
		{"ExtraArgument", []string{"secret", "show", "a", "b"}, kerrors.ErrInvalidArgument},
		{"BadOutput", []string{"member", "list", "--output", "xml"}, kerrors.ErrInvalidArgument},
		{"BadIdentity", []string{"induct", "not a key"}, kerrors.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, dir, "alice", "", tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLogCommand(t *testing.T) {
	dir := setupTestEnvironment(t)

	if out := mustRun(t, dir, "alice", "log"); !strings.Contains(out, "No audit log entries found.") {
		t.Errorf("unexpected output for empty log: %q", out)
	}
	if _, err := os.Stat(vaultPath(dir)); !os.IsNotExist(err) {
		t.Error("log should not create the vault")
	}

	mustRun(t, dir, "alice", "secret", "add", "k", "v")
	mustRun(t, dir, "alice", "secret", "show", "k")
	mustRun(t, dir, "alice", "rotate", "--force")

	var entries []audit.Entry
	if err := json.Unmarshal([]byte(mustRun(t, dir, "alice", "log", "--json")), &entries); err != nil {
		t.Fatalf("log json: %v", err)
	}
	var ops []string
	for _, e := range entries {
		ops = append(ops, e.Operation)
	}
	want := []string{audit.OpBootstrap, audit.OpAddSecret, audit.OpShowSecret, audit.OpRotate}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Errorf("ops = %v, want %v", ops, want)
	}

	out := mustRun(t, dir, "alice", "log", "--operation", "rotate")
	if !strings.Contains(out, "1 secrets") || strings.Contains(out, audit.OpAddSecret) {
		t.Errorf("unexpected filtered log: %q", out)
	}

	_, _, err := runCLI(t, dir, "alice", "", "log", "--since", "last week")
	if !errors.Is(err, kerrors.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFirstRunIDInducts(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRun(t, dir, "alice", "secret", "add", "k", "v")

	// carol has no keys yet; her very first id output is handed to alice.
	carol, _, err := runCLI(t, dir, "carol", "", "id")
	if err != nil {
		t.Fatalf("id failed: %v", err)
	}
	if out, _, err := runCLI(t, dir, "alice", carol, "induct", "-"); err != nil || !strings.Contains(out, "Inducted") {
		t.Fatalf("induct from stdin failed: %v (output %q)", err, out)
	}
	if out := mustRun(t, dir, "carol", "secret", "show", "k"); out != "v\n" {
		t.Errorf("carol show = %q", out)
	}
}

func TestSecretAddFromStdin(t *testing.T) {
	dir := setupTestEnvironment(t)

	if _, _, err := runCLI(t, dir, "alice", "line one\nline two", "secret", "add", "k", "-"); err != nil {
		t.Fatalf("add from stdin failed: %v", err)
	}
	if out := mustRun(t, dir, "alice", "secret", "show", "k"); out != "line one\nline two\n" {
		t.Errorf("show = %q", out)
	}

	_, _, err := runCLI(t, dir, "alice", "", "secret", "add", "empty", "-")
	if err == nil {
		t.Error("expected an error for empty stdin")
	}
}

func TestSecretBinaryValue(t *testing.T) {
	dir := setupTestEnvironment(t)

	binary := []byte{0xff, 0xfe, 0x00, 0x80}
	path := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(path, binary, 0600); err != nil {
		t.Fatalf("Failed to write value file: %v", err)
	}

	// The default utf-8 value encoding refuses bytes it would corrupt.
	_, _, err := runCLI(t, dir, "alice", "", "secret", "add", "blob", "@"+path)
	if !errors.Is(err, kerrors.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if code := kerrors.ExitCode(err); code != 4 {
		t.Errorf("expected exit code 4, got %d", code)
	}

	t.Setenv(configs.EnvValueEncoding, "raw")
	mustRun(t, dir, "alice", "secret", "add", "blob", "@"+path)
	out := mustRun(t, dir, "alice", "secret", "show", "blob")
	if out != string(binary)+"\n" {
		t.Errorf("show = %x, want %x", out, string(binary)+"\n")
	}
}

func TestVerboseKeepsStdoutForData(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRun(t, dir, "alice", "secret", "add", "k", "v")

	out, stderr, err := runCLI(t, dir, "alice", "", "-v", "secret", "show", "k")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if out != "v\n" {
		t.Errorf("stdout = %q, want only the value", out)
	}
	if !strings.Contains(stderr, "[info]") {
		t.Errorf("expected info lines on stderr, got %q", stderr)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := setupTestEnvironment(t)
	configPath := os.Getenv(configs.EnvConfigFile)

	t.Setenv(configs.EnvAllowListing, "true")
	out := mustRun(t, dir, "alice", "config", "init")
	if !strings.Contains(out, "Config written") {
		t.Errorf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// The written file now supplies the setting on its own.
	t.Setenv(configs.EnvAllowListing, "")
	out = mustRun(t, dir, "alice", "config", "show")
	if !strings.Contains(out, "allow_listing = true") {
		t.Errorf("expected allow_listing from the file, got %q", out)
	}

	_, _, err := runCLI(t, dir, "alice", "", "config", "init")
	if !errors.Is(err, kerrors.ErrConfirmationRequired) {
		t.Errorf("expected ErrConfirmationRequired, got %v", err)
	}
	mustRun(t, dir, "alice", "config", "init", "--force")
}
