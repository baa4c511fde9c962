package configs

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "config.toml")

	original := Default()
	original.KeyBits = 4096
	original.AllowListing = true
	original.ValueEncoding = "iso-8859-1"

	if err := SaveTOML(testFile, original); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded := &Config{}
	if err := LoadTOML(testFile, loaded); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if *loaded != *original {
		t.Errorf("loaded config %+v does not match saved %+v", loaded, original)
	}
}

func TestLoadTOMLKeepsUnsetFields(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "partial.toml")
	if err := os.WriteFile(testFile, []byte("group_key_bits = 192\n"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cfg := Default()
	if err := LoadTOML(testFile, cfg); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if cfg.GroupKeyBits != 192 {
		t.Errorf("expected GroupKeyBits 192, got %d", cfg.GroupKeyBits)
	}
	if cfg.KeyBits != DefaultKeyBits {
		t.Errorf("expected default KeyBits to survive, got %d", cfg.KeyBits)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "nonexistent.toml")

	if err := LoadTOML(testFile, &Config{}); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestSaveTOMLCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "subdir", "config.toml")

	if err := SaveTOML(testFile, Default()); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("File was not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestLoadTOMLRejectsUnknownKeys(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "typo.toml")
	if err := os.WriteFile(testFile, []byte("key_bitz = 4096\n"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	err := LoadTOML(testFile, Default())
	if err == nil || !strings.Contains(err.Error(), "key_bitz") {
		t.Errorf("expected an unknown key error naming key_bitz, got %v", err)
	}
}

func TestEncodeTOML(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeTOML(&buf, Default()); err != nil {
		t.Fatalf("EncodeTOML failed: %v", err)
	}
	for _, want := range []string{"key_bits = 8192", `key_encoding = "raw"`, "audit = true"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("encoded config missing %q:\n%s", want, buf.String())
		}
	}
}
