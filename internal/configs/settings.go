package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults for a fresh installation.
const (
	DefaultKeyBits        = 8192
	DefaultGroupKeyBits   = 256
	DefaultKeyEncoding    = "raw"
	DefaultValueEncoding  = "utf-8"
	DefaultVaultFile      = ".groupenc.json"
	DefaultPrivateKeyFile = "~/.groupenc_private"
	DefaultPublicKeyFile  = "~/.groupenc_public"
)

// Environment variables recognized by Load.
const (
	EnvConfigFile       = "GROUPENC_CONFIG"
	EnvKeyBits          = "GROUPENC_KEY_BITS"
	EnvGroupKeyBits     = "GROUPENC_GROUP_KEY_BITS"
	EnvIVBits           = "GROUPENC_IV_BITS"
	EnvPadBits          = "GROUPENC_PAD_BITS"
	EnvKeyEncoding      = "GROUPENC_KEY_ENCODING"
	EnvValueEncoding    = "GROUPENC_VALUE_ENCODING"
	EnvAllowListing     = "GROUPENC_ALLOW_LISTING"
	EnvRandomValueNonce = "GROUPENC_RANDOM_VALUE_NONCE"
	EnvAudit            = "GROUPENC_AUDIT"
	EnvVaultFile        = "GROUPENC_FILE"
	EnvPrivateKeyFile   = "GROUPENC_PRIVATE_KEY"
	EnvPublicKeyFile    = "GROUPENC_PUBLIC_KEY"
)

// DefaultConfigPath returns <UserConfigDir>/groupenc/config.toml, or the
// GROUPENC_CONFIG override when set.
func DefaultConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "groupenc", "config.toml"), nil
}
