package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/guilt/groupenc/internal/configs"
	kerrors "github.com/guilt/groupenc/internal/errors"

	"golang.org/x/text/encoding"
)

// Codec encrypts payloads under a group key and derives secret-name indexes.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	groupKeySize     int
	nonceSize        int
	blockSize        int
	listing          bool
	randomValueNonce bool

	// nil means raw: bytes pass through unchanged.
	keyEncoding   encoding.Encoding
	valueEncoding encoding.Encoding
}

// New builds a Codec from cfg.
func New(cfg *configs.Config) (*Codec, error) {
	switch cfg.GroupKeyBits {
	case 128, 192, 256:
	default:
		return nil, fmt.Errorf("%w: group key bits %d must be 128, 192 or 256", kerrors.ErrInvalidConfig, cfg.GroupKeyBits)
	}

	iv := cfg.EffectiveIVBits()
	if iv < 8 || iv > 8*sha256.Size || iv%8 != 0 {
		return nil, fmt.Errorf("%w: iv bits %d must be a multiple of 8 between 8 and 256", kerrors.ErrInvalidConfig, iv)
	}

	pad := cfg.EffectivePadBits()
	if pad < 8 || pad > 2040 || pad%8 != 0 {
		return nil, fmt.Errorf("%w: pad bits %d must be a multiple of 8 between 8 and 2040", kerrors.ErrInvalidConfig, pad)
	}

	keyEnc, err := lookupEncoding(cfg.KeyEncoding)
	if err != nil {
		return nil, err
	}
	valueEnc, err := lookupEncoding(cfg.ValueEncoding)
	if err != nil {
		return nil, err
	}

	return &Codec{
		groupKeySize:     cfg.GroupKeyBits / 8,
		nonceSize:        iv / 8,
		blockSize:        pad / 8,
		listing:          cfg.AllowListing,
		randomValueNonce: cfg.RandomValueNonce,
		keyEncoding:      keyEnc,
		valueEncoding:    valueEnc,
	}, nil
}

// Listing reports whether secret names are indexed reversibly.
func (c *Codec) Listing() bool {
	return c.listing
}

// GroupKeySize returns the group key length in bytes.
func (c *Codec) GroupKeySize() int {
	return c.groupKeySize
}

// NewGroupKey returns a fresh random group key.
func (c *Codec) NewGroupKey() ([]byte, error) {
	key := make([]byte, c.groupKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate group key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under key with a nonce derived from the key
// itself. The same (key, plaintext) always yields the same ciphertext.
func (c *Codec) Encrypt(key, plaintext []byte) (string, error) {
	aead, err := c.aead(key)
	if err != nil {
		return "", err
	}
	sealed := aead.Seal(nil, c.derivedNonce(key), pkcs7Pad(plaintext, c.blockSize), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(key []byte, ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not base64: %v", kerrors.ErrParse, err)
	}
	return c.open(key, c.derivedNonce(key), raw)
}

// SealValue encrypts a secret value. With RandomValueNonce the nonce is
// random and stored in front of the ciphertext; otherwise it is Encrypt.
func (c *Codec) SealValue(key, plaintext []byte) (string, error) {
	if !c.randomValueNonce {
		return c.Encrypt(key, plaintext)
	}

	aead, err := c.aead(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, c.nonceSize, c.nonceSize+len(plaintext)+c.blockSize+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, pkcs7Pad(plaintext, c.blockSize), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenValue reverses SealValue.
func (c *Codec) OpenValue(key []byte, ciphertext string) ([]byte, error) {
	if !c.randomValueNonce {
		return c.Decrypt(key, ciphertext)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not base64: %v", kerrors.ErrParse, err)
	}
	if len(raw) < c.nonceSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than nonce", kerrors.ErrDecrypt)
	}
	return c.open(key, raw[:c.nonceSize], raw[c.nonceSize:])
}

// IndexName derives the map key a secret is stored under. In hashed mode it
// is the hex SHA-256 of the encoded name and does not depend on key. In
// listing mode it is Encrypt(key, name).
func (c *Codec) IndexName(key []byte, name string) (string, error) {
	if name == "" {
		return "", kerrors.ErrEmptyName
	}
	encoded, err := c.EncodeName(name)
	if err != nil {
		return "", err
	}

	if !c.listing {
		sum := sha256.Sum256(encoded)
		return hex.EncodeToString(sum[:]), nil
	}
	return c.Encrypt(key, encoded)
}

// DeindexName recovers a secret name from its index. ok is false in hashed
// mode, where the index is irreversible.
func (c *Codec) DeindexName(key []byte, indexed string) (name string, ok bool, err error) {
	if !c.listing {
		return "", false, nil
	}
	raw, err := c.Decrypt(key, indexed)
	if err != nil {
		return "", false, err
	}
	name, err = c.DecodeName(raw)
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (c *Codec) aead(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: group key: %v", kerrors.ErrFormat, err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, c.nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

func (c *Codec) derivedNonce(key []byte) []byte {
	sum := sha256.Sum256(key)
	return sum[:c.nonceSize]
}

func (c *Codec) open(key, nonce, sealed []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	padded, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecrypt, err)
	}
	plaintext, err := pkcs7Unpad(padded, c.blockSize)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)
	return append(padded, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded length %d is not a multiple of %d", kerrors.ErrDecrypt, len(data), blockSize)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", kerrors.ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", kerrors.ErrDecrypt)
		}
	}
	return data[:len(data)-n], nil
}
