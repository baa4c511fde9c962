package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/utils"
)

// Config is the complete runtime configuration. It is threaded explicitly
// through workflows; nothing in the core reads the environment directly.
type Config struct {
	// KeyBits is the RSA modulus size for newly generated identities.
	KeyBits int `toml:"key_bits"`

	// GroupKeyBits is the size of the symmetric group key (128, 192 or 256).
	GroupKeyBits int `toml:"group_key_bits"`

	// IVBits is the nonce size. Zero means GroupKeyBits.
	IVBits int `toml:"iv_bits"`

	// PadBits is the padding block size. Zero means GroupKeyBits.
	PadBits int `toml:"pad_bits"`

	// KeyEncoding encodes secret names before indexing ("raw" keeps bytes as-is).
	KeyEncoding string `toml:"key_encoding"`

	// ValueEncoding encodes secret values before encryption.
	ValueEncoding string `toml:"value_encoding"`

	// AllowListing selects the reversible secret-name index. It must stay
	// fixed for the life of a vault file.
	AllowListing bool `toml:"allow_listing"`

	// RandomValueNonce seals values with a random nonce instead of the
	// key-derived one. It must stay fixed for the life of a vault file.
	RandomValueNonce bool `toml:"random_value_nonce"`

	// Audit enables the JSON-lines audit trail next to the vault file.
	Audit bool `toml:"audit"`

	VaultFile      string `toml:"vault_file"`
	PrivateKeyFile string `toml:"private_key_file"`
	PublicKeyFile  string `toml:"public_key_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		KeyBits:        DefaultKeyBits,
		GroupKeyBits:   DefaultGroupKeyBits,
		KeyEncoding:    DefaultKeyEncoding,
		ValueEncoding:  DefaultValueEncoding,
		Audit:          true,
		VaultFile:      DefaultVaultFile,
		PrivateKeyFile: DefaultPrivateKeyFile,
		PublicKeyFile:  DefaultPublicKeyFile,
	}
}

// Load builds a Config from defaults, the TOML file at path (DefaultConfigPath
// when empty; a missing file is not an error) and GROUPENC_* environment
// variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: loading %s: %v", kerrors.ErrInvalidConfig, path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: checking config file %s: %v", kerrors.ErrIO, path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg as TOML to path.
func Save(path string, cfg *Config) error {
	if err := SaveTOML(path, cfg); err != nil {
		return fmt.Errorf("%w: saving config %s: %v", kerrors.ErrIO, path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	ints := []struct {
		env string
		dst *int
	}{
		{EnvKeyBits, &c.KeyBits},
		{EnvGroupKeyBits, &c.GroupKeyBits},
		{EnvIVBits, &c.IVBits},
		{EnvPadBits, &c.PadBits},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.env)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", kerrors.ErrInvalidConfig, v.env, raw)
		}
		*v.dst = n
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{EnvAllowListing, &c.AllowListing},
		{EnvRandomValueNonce, &c.RandomValueNonce},
		{EnvAudit, &c.Audit},
	}
	for _, v := range bools {
		raw, ok := os.LookupEnv(v.env)
		if !ok || raw == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", kerrors.ErrInvalidConfig, v.env, raw)
		}
		*v.dst = b
	}

	strs := []struct {
		env string
		dst *string
	}{
		{EnvKeyEncoding, &c.KeyEncoding},
		{EnvValueEncoding, &c.ValueEncoding},
		{EnvVaultFile, &c.VaultFile},
		{EnvPrivateKeyFile, &c.PrivateKeyFile},
		{EnvPublicKeyFile, &c.PublicKeyFile},
	}
	for _, v := range strs {
		if raw := os.Getenv(v.env); raw != "" {
			*v.dst = raw
		}
	}

	return nil
}

// Validate checks sizes and required fields.
func (c *Config) Validate() error {
	if c.KeyBits < 1024 || c.KeyBits%8 != 0 {
		return fmt.Errorf("%w: key bits %d must be a multiple of 8 and at least 1024", kerrors.ErrInvalidConfig, c.KeyBits)
	}

	switch c.GroupKeyBits {
	case 128, 192, 256:
	default:
		return fmt.Errorf("%w: group key bits %d must be 128, 192 or 256", kerrors.ErrInvalidConfig, c.GroupKeyBits)
	}

	if iv := c.EffectiveIVBits(); iv < 8 || iv > 256 || iv%8 != 0 {
		return fmt.Errorf("%w: iv bits %d must be a multiple of 8 between 8 and 256", kerrors.ErrInvalidConfig, iv)
	}

	if pad := c.EffectivePadBits(); pad < 8 || pad > 2040 || pad%8 != 0 {
		return fmt.Errorf("%w: pad bits %d must be a multiple of 8 between 8 and 2040", kerrors.ErrInvalidConfig, pad)
	}

	if c.KeyEncoding == "" || c.ValueEncoding == "" {
		return fmt.Errorf("%w: key and value encodings must be set", kerrors.ErrInvalidConfig)
	}

	if c.VaultFile == "" || c.PrivateKeyFile == "" || c.PublicKeyFile == "" {
		return fmt.Errorf("%w: vault, private key and public key paths must be set", kerrors.ErrInvalidConfig)
	}

	return nil
}

// EffectiveIVBits returns IVBits, defaulting to GroupKeyBits.
func (c *Config) EffectiveIVBits() int {
	if c.IVBits == 0 {
		return c.GroupKeyBits
	}
	return c.IVBits
}

// EffectivePadBits returns PadBits, defaulting to GroupKeyBits.
func (c *Config) EffectivePadBits() int {
	if c.PadBits == 0 {
		return c.GroupKeyBits
	}
	return c.PadBits
}

// ExpandPaths resolves a leading "~" in the vault and key file paths.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.VaultFile, &c.PrivateKeyFile, &c.PublicKeyFile} {
		expanded, err := utils.ExpandHome(*p)
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
		}
		*p = expanded
	}
	return nil
}
