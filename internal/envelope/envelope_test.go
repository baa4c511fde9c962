package envelope

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/guilt/groupenc/internal/configs"
	kerrors "github.com/guilt/groupenc/internal/errors"
)

func newCodec(t *testing.T, mutate func(*configs.Config)) *Codec {
	t.Helper()
	cfg := configs.Default()
	if mutate != nil {
		mutate(cfg)
	}
	codec, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return codec
}

func groupKey(t *testing.T, c *Codec) []byte {
	t.Helper()
	key, err := c.NewGroupKey()
	if err != nil {
		t.Fatalf("NewGroupKey failed: %v", err)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sizes := []int{128, 192, 256}
	payloads := [][]byte{
		{},
		[]byte("a"),
		[]byte("Hello Ñandú"),
		bytes.Repeat([]byte("8"), 32),
		bytes.Repeat([]byte{0}, 1000),
	}

	for _, bits := range sizes {
		codec := newCodec(t, func(c *configs.Config) { c.GroupKeyBits = bits })
		key := groupKey(t, codec)
		if len(key) != bits/8 {
			t.Fatalf("expected %d-byte key, got %d", bits/8, len(key))
		}

		for _, payload := range payloads {
			ciphertext, err := codec.Encrypt(key, payload)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			plaintext, err := codec.Decrypt(key, ciphertext)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !bytes.Equal(plaintext, payload) {
				t.Errorf("%d-bit round trip mismatch for %q", bits, payload)
			}
		}
	}
}

func TestEncryptIsDeterministic(t *testing.T) {
	codec := newCodec(t, nil)
	key := groupKey(t, codec)

	first, err := codec.Encrypt(key, []byte("same"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	second, err := codec.Encrypt(key, []byte("same"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if first != second {
		t.Error("expected identical ciphertexts under the same key")
	}

	other, err := codec.Encrypt(groupKey(t, codec), []byte("same"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if other == first {
		t.Error("expected different ciphertexts under different keys")
	}
}

func TestCiphertextIsPadded(t *testing.T) {
	codec := newCodec(t, func(c *configs.Config) { c.PadBits = 128 })
	key := groupKey(t, codec)

	for _, n := range []int{0, 1, 15, 16, 17} {
		ciphertext, err := codec.Encrypt(key, bytes.Repeat([]byte("x"), n))
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(ciphertext)
		if err != nil {
			t.Fatalf("ciphertext not base64: %v", err)
		}
		body := len(raw) - 16 // GCM tag
		if body%16 != 0 || body <= n {
			t.Errorf("payload of %d bytes produced %d-byte body", n, body)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	codec := newCodec(t, nil)
	ciphertext, err := codec.Encrypt(groupKey(t, codec), []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = codec.Decrypt(groupKey(t, codec), ciphertext)
	if !errors.Is(err, kerrors.ErrDecrypt) {
		t.Errorf("expected ErrDecrypt, got %v", err)
	}
}

func TestDecryptMalformed(t *testing.T) {
	codec := newCodec(t, nil)
	key := groupKey(t, codec)

	if _, err := codec.Decrypt(key, "%%%"); !errors.Is(err, kerrors.ErrParse) {
		t.Errorf("expected ErrParse for bad base64, got %v", err)
	}

	ciphertext, err := codec.Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(ciphertext)
	raw[0] ^= 0xff
	if _, err := codec.Decrypt(key, base64.StdEncoding.EncodeToString(raw)); !errors.Is(err, kerrors.ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for tampered ciphertext, got %v", err)
	}

	if _, err := codec.Decrypt([]byte("short"), ciphertext); !errors.Is(err, kerrors.ErrFormat) {
		t.Errorf("expected ErrFormat for bad key length, got %v", err)
	}
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []byte
		wantErr bool
	}{
		{"FullBlock", []byte{4, 4, 4, 4}, []byte{}, false},
		{"Partial", []byte{'a', 'b', 2, 2}, []byte("ab"), false},
		{"Empty", []byte{}, nil, true},
		{"ZeroPad", []byte{'a', 'b', 'c', 0}, nil, true},
		{"TooLarge", []byte{'a', 'b', 'c', 5}, nil, true},
		{"Inconsistent", []byte{'a', 'b', 3, 2}, nil, true},
		{"Unaligned", []byte{'a', 1}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tt.data, 4)
			if tt.wantErr {
				if !errors.Is(err, kerrors.ErrDecrypt) {
					t.Errorf("expected ErrDecrypt, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRandomValueNonce(t *testing.T) {
	codec := newCodec(t, func(c *configs.Config) { c.RandomValueNonce = true })
	key := groupKey(t, codec)

	first, err := codec.SealValue(key, []byte("value"))
	if err != nil {
		t.Fatalf("SealValue failed: %v", err)
	}
	second, err := codec.SealValue(key, []byte("value"))
	if err != nil {
		t.Fatalf("SealValue failed: %v", err)
	}
	if first == second {
		t.Error("random nonces should give different ciphertexts")
	}

	for _, ciphertext := range []string{first, second} {
		plaintext, err := codec.OpenValue(key, ciphertext)
		if err != nil {
			t.Fatalf("OpenValue failed: %v", err)
		}
		if string(plaintext) != "value" {
			t.Errorf("got %q", plaintext)
		}
	}

	if _, err := codec.OpenValue(key, base64.StdEncoding.EncodeToString([]byte{1})); !errors.Is(err, kerrors.ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for truncated value, got %v", err)
	}
}

func TestSealValueDefaultsToEncrypt(t *testing.T) {
	codec := newCodec(t, nil)
	key := groupKey(t, codec)

	sealed, err := codec.SealValue(key, []byte("value"))
	if err != nil {
		t.Fatalf("SealValue failed: %v", err)
	}
	encrypted, err := codec.Encrypt(key, []byte("value"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if sealed != encrypted {
		t.Error("without RandomValueNonce SealValue should match Encrypt")
	}
}

func TestIndexNameHashed(t *testing.T) {
	codec := newCodec(t, nil)

	first, err := codec.IndexName(groupKey(t, codec), "db_password")
	if err != nil {
		t.Fatalf("IndexName failed: %v", err)
	}
	second, err := codec.IndexName(groupKey(t, codec), "db_password")
	if err != nil {
		t.Fatalf("IndexName failed: %v", err)
	}
	if first != second {
		t.Error("hashed index must not depend on the group key")
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	name, ok, err := codec.DeindexName(nil, first)
	if err != nil || ok || name != "" {
		t.Errorf("hashed index should not be reversible, got %q %v %v", name, ok, err)
	}
}

func TestIndexNameListing(t *testing.T) {
	codec := newCodec(t, func(c *configs.Config) { c.AllowListing = true })
	key := groupKey(t, codec)

	indexed, err := codec.IndexName(key, "api_token")
	if err != nil {
		t.Fatalf("IndexName failed: %v", err)
	}
	again, err := codec.IndexName(key, "api_token")
	if err != nil {
		t.Fatalf("IndexName failed: %v", err)
	}
	if indexed != again {
		t.Error("listing index must be stable under the same key")
	}

	name, ok, err := codec.DeindexName(key, indexed)
	if err != nil {
		t.Fatalf("DeindexName failed: %v", err)
	}
	if !ok || name != "api_token" {
		t.Errorf("expected api_token, got %q (ok=%v)", name, ok)
	}

	if _, _, err := codec.DeindexName(groupKey(t, codec), indexed); !errors.Is(err, kerrors.ErrDecrypt) {
		t.Errorf("expected ErrDecrypt under another key, got %v", err)
	}
}

func TestIndexNameEmpty(t *testing.T) {
	codec := newCodec(t, nil)
	if _, err := codec.IndexName(nil, ""); !errors.Is(err, kerrors.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*configs.Config)
	}{
		{"GroupKeyBits", func(c *configs.Config) { c.GroupKeyBits = 64 }},
		{"IVTooLarge", func(c *configs.Config) { c.IVBits = 264 }},
		{"IVUnaligned", func(c *configs.Config) { c.IVBits = 100 }},
		{"PadTooLarge", func(c *configs.Config) { c.PadBits = 2048 }},
		{"UnknownKeyEncoding", func(c *configs.Config) { c.KeyEncoding = "klingon" }},
		{"UnknownValueEncoding", func(c *configs.Config) { c.ValueEncoding = "not-a-charset" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configs.Default()
			tt.mutate(cfg)
			if _, err := New(cfg); !errors.Is(err, kerrors.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestShortIV(t *testing.T) {
	codec := newCodec(t, func(c *configs.Config) { c.IVBits = 96 })
	key := groupKey(t, codec)

	ciphertext, err := codec.Encrypt(key, []byte("standard nonce size"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plaintext, err := codec.Decrypt(key, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(plaintext) != "standard nonce size" {
		t.Errorf("got %q", plaintext)
	}
}
