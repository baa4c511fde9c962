package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- OAEP label hash used by existing vault files, not a signature.
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strings"

	kerrors "github.com/guilt/groupenc/internal/errors"
)

// oaepHashSize is the SHA-1 digest length used by OAEP padding.
const oaepHashSize = sha1.Size

// Key is either PublicOnly or KeyPair.
type Key interface {
	publicKey() *rsa.PublicKey
}

// PublicOnly can encrypt to a member but cannot unwrap anything.
type PublicOnly struct {
	Public *rsa.PublicKey
}

func (k PublicOnly) publicKey() *rsa.PublicKey { return k.Public }

// KeyPair holds a private key and therefore full capability.
type KeyPair struct {
	Private *rsa.PrivateKey
}

func (k KeyPair) publicKey() *rsa.PublicKey { return &k.Private.PublicKey }

// Identity is an immutable RSA identity with a stable fingerprint.
type Identity struct {
	key Key
	id  string
}

// New wraps key in an Identity.
func New(key Key) (*Identity, error) {
	if kp, ok := key.(KeyPair); ok && kp.Private == nil {
		return nil, fmt.Errorf("%w: no key loaded", kerrors.ErrMissingArgument)
	}
	if key == nil || key.publicKey() == nil || key.publicKey().N == nil {
		return nil, fmt.Errorf("%w: no key loaded", kerrors.ErrMissingArgument)
	}
	return &Identity{key: key, id: Fingerprint(key.publicKey())}, nil
}

// FromPrivateKey returns a full-capability Identity.
func FromPrivateKey(priv *rsa.PrivateKey) (*Identity, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: no private key", kerrors.ErrMissingArgument)
	}
	return New(KeyPair{Private: priv})
}

// FromPublicKey returns a public-only Identity.
func FromPublicKey(pub *rsa.PublicKey) (*Identity, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: no public key", kerrors.ErrMissingArgument)
	}
	return New(PublicOnly{Public: pub})
}

// Fingerprint is the hex SHA-256 of "<modulus>:<exponent>" in decimal.
func Fingerprint(pub *rsa.PublicKey) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", pub.N.String(), pub.E)))
	return hex.EncodeToString(sum[:])
}

// ID returns the identity's fingerprint.
func (i *Identity) ID() string {
	return i.id
}

// Key returns the underlying PublicOnly or KeyPair.
func (i *Identity) Key() Key {
	return i.key
}

// PublicKey returns the RSA public key.
func (i *Identity) PublicKey() *rsa.PublicKey {
	return i.key.publicKey()
}

// HasPrivateKey reports whether the identity can decrypt.
func (i *Identity) HasPrivateKey() bool {
	_, ok := i.key.(KeyPair)
	return ok
}

// Public returns a public-only copy of the identity.
func (i *Identity) Public() *Identity {
	return &Identity{key: PublicOnly{Public: i.PublicKey()}, id: i.id}
}

// ExportPublicKey returns the PKIX PEM text of the public key without a
// trailing newline.
func (i *Identity) ExportPublicKey() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(i.PublicKey())
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return strings.TrimRight(string(block), "\n"), nil
}

// MaxPayload is the largest plaintext EncryptWithPublicKey accepts.
func (i *Identity) MaxPayload() int {
	return i.PublicKey().Size() - 2*oaepHashSize - 2
}

// EncryptWithPublicKey encrypts plaintext with RSA-OAEP under the identity's
// public key and returns standard base64.
func (i *Identity) EncryptWithPublicKey(plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", kerrors.ErrEmptyPayload
	}
	if limit := i.MaxPayload(); len(plaintext) > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", kerrors.ErrPayloadTooLarge, len(plaintext), limit)
	}

	ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, i.PublicKey(), plaintext, nil) // #nosec G401
	if err != nil {
		return "", fmt.Errorf("failed to encrypt with public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses EncryptWithPublicKey. Public-only identities fail with
// ErrPublicKeyOnly.
func (i *Identity) Decrypt(ciphertext string) ([]byte, error) {
	var priv *rsa.PrivateKey
	switch k := i.key.(type) {
	case KeyPair:
		priv = k.Private
	case PublicOnly:
		return nil, kerrors.ErrPublicKeyOnly
	default:
		return nil, fmt.Errorf("%w: unknown key variant %T", kerrors.ErrUnsupportedKey, k)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapped key is not base64: %v", kerrors.ErrParse, err)
	}

	plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, raw, nil) // #nosec G401
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecrypt, err)
	}
	return plaintext, nil
}
