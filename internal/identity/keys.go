package identity

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/utils"

	"golang.org/x/crypto/ssh"
)

// Parse builds an Identity from key material. Accepted forms: PKCS#1 and
// PKCS#8 private keys, PKIX and PKCS#1 public keys, OpenSSH private keys
// (passphrase optional) and authorized_keys "ssh-rsa" lines.
func Parse(material []byte, passphrase []byte) (*Identity, error) {
	trimmed := normalizePEM(material)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty key material", kerrors.ErrParse)
	}

	if !bytes.HasPrefix(trimmed, []byte("-----BEGIN")) {
		return parseAuthorizedKey(trimmed)
	}

	block, _ := pem.Decode(trimmed)
	if block == nil {
		return nil, fmt.Errorf("%w: failed to decode PEM block", kerrors.ErrParse)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrParse, err)
		}
		return FromPrivateKey(priv)

	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrParse, err)
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T", kerrors.ErrUnsupportedKey, key)
		}
		return FromPrivateKey(priv)

	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrParse, err)
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T", kerrors.ErrUnsupportedKey, key)
		}
		return FromPublicKey(pub)

	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrParse, err)
		}
		return FromPublicKey(pub)

	case "OPENSSH PRIVATE KEY":
		priv, err := parseOpenSSHPrivateKey(trimmed, passphrase)
		if err != nil {
			return nil, err
		}
		return FromPrivateKey(priv)

	default:
		return nil, fmt.Errorf("%w: unsupported PEM block %q", kerrors.ErrParse, block.Type)
	}
}

// normalizePEM trims surrounding whitespace and per-line indentation so keys
// pasted from indented text still decode.
func normalizePEM(material []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(material), []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimSpace(line)
	}
	return bytes.Join(lines, []byte("\n"))
}

func parseAuthorizedKey(data []byte) (*Identity, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrParse, err)
	}

	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUnsupportedKey, pub.Type())
	}
	rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUnsupportedKey, pub.Type())
	}
	return FromPublicKey(rsaPub)
}

// parseOpenSSHPrivateKey parses an OpenSSH-format RSA private key.
// Protected keys without a passphrase return ErrPassphraseRequired.
func parseOpenSSHPrivateKey(data []byte, passphrase []byte) (*rsa.PrivateKey, error) {
	var (
		raw interface{}
		err error
	)
	if len(passphrase) > 0 {
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
	} else {
		raw, err = ssh.ParseRawPrivateKey(data)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, kerrors.ErrPassphraseRequired
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrParse, err)
	}

	switch key := raw.(type) {
	case *rsa.PrivateKey:
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %T", kerrors.ErrUnsupportedKey, raw)
	}
}

// Generate creates a new RSA identity and writes the private key (PKCS#1 PEM,
// 0600) and public key (PKIX PEM, 0644) to the given paths.
func Generate(bits int, privatePath, publicPath string) (*Identity, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	id, err := FromPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	privPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	if err := utils.AtomicWriteFile(privatePath, privPem, 0600); err != nil {
		return nil, fmt.Errorf("%w: saving private key to %s: %v", kerrors.ErrIO, privatePath, err)
	}

	pubText, err := id.ExportPublicKey()
	if err != nil {
		return nil, err
	}
	// #nosec G306 -- public keys are meant to be shared.
	if err := utils.AtomicWriteFile(publicPath, []byte(pubText+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("%w: saving public key to %s: %v", kerrors.ErrIO, publicPath, err)
	}

	return id, nil
}

// LoadOptions configures Load.
type LoadOptions struct {
	// KeyMaterial, when set, is parsed directly and takes priority over files.
	KeyMaterial []byte

	PrivateKeyFile string
	PublicKeyFile  string

	// KeyBits is the modulus size used when a keypair has to be generated.
	KeyBits int

	// Passphrase is called when an OpenSSH key turns out to be protected.
	Passphrase func() ([]byte, error)

	// NoBootstrap fails with ErrMissingArgument instead of generating keys.
	NoBootstrap bool
}

// NeedsBootstrap reports whether Load would generate a new keypair.
func NeedsBootstrap(opts LoadOptions) bool {
	return len(opts.KeyMaterial) == 0 &&
		!utils.FileExists(opts.PrivateKeyFile) &&
		!utils.FileExists(opts.PublicKeyFile)
}

// Load resolves an identity in priority order: explicit key material, the
// private key file, the public key file, and finally a freshly generated
// keypair written to both paths.
func Load(opts LoadOptions) (*Identity, error) {
	if len(opts.KeyMaterial) > 0 {
		return parseWithPassphrase(opts.KeyMaterial, opts.Passphrase)
	}

	for _, path := range []string{opts.PrivateKeyFile, opts.PublicKeyFile} {
		if path == "" || !utils.FileExists(path) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrIO, path, err)
		}
		id, err := parseWithPassphrase(data, opts.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("loading key from %s: %w", path, err)
		}
		return id, nil
	}

	if opts.NoBootstrap {
		return nil, fmt.Errorf("%w: no key at %s or %s", kerrors.ErrMissingArgument, opts.PrivateKeyFile, opts.PublicKeyFile)
	}
	if opts.PrivateKeyFile == "" || opts.PublicKeyFile == "" {
		return nil, fmt.Errorf("%w: key file paths are required to bootstrap", kerrors.ErrMissingArgument)
	}
	return Generate(opts.KeyBits, opts.PrivateKeyFile, opts.PublicKeyFile)
}

func parseWithPassphrase(material []byte, prompt func() ([]byte, error)) (*Identity, error) {
	id, err := Parse(material, nil)
	if !errors.Is(err, kerrors.ErrPassphraseRequired) || prompt == nil {
		return id, err
	}

	passphrase, err := prompt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrPassphraseRequired, err)
	}
	return Parse(material, passphrase)
}
