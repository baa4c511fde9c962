package envelope

import (
	"fmt"
	"strings"
	"unicode/utf8"

	kerrors "github.com/guilt/groupenc/internal/errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// RawEncoding keeps the bytes of a string as they are.
const RawEncoding = "raw"

func lookupEncoding(name string) (encoding.Encoding, error) {
	if strings.EqualFold(name, RawEncoding) {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown text encoding %q: %v", kerrors.ErrInvalidConfig, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: text encoding %q is not supported", kerrors.ErrInvalidConfig, name)
	}
	return enc, nil
}

// encodeText converts s, which must be valid UTF-8 unless enc is raw.
// x/text encoders substitute U+FFFD for invalid input instead of failing.
func encodeText(enc encoding.Encoding, s string) ([]byte, error) {
	if enc == nil {
		return []byte(s), nil
	}
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8; use the %q encoding for binary data", kerrors.ErrFormat, RawEncoding)
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode text: %v", kerrors.ErrFormat, err)
	}
	return out, nil
}

func decodeText(enc encoding.Encoding, b []byte) (string, error) {
	if enc == nil {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: cannot decode text: %v", kerrors.ErrFormat, err)
	}
	return string(out), nil
}

// EncodeName converts a secret name to bytes with the key encoding.
func (c *Codec) EncodeName(name string) ([]byte, error) {
	return encodeText(c.keyEncoding, name)
}

// DecodeName reverses EncodeName.
func (c *Codec) DecodeName(b []byte) (string, error) {
	return decodeText(c.keyEncoding, b)
}

// EncodeValue converts a secret value to bytes with the value encoding.
func (c *Codec) EncodeValue(value string) ([]byte, error) {
	return encodeText(c.valueEncoding, value)
}

// DecodeValue reverses EncodeValue.
func (c *Codec) DecodeValue(b []byte) (string, error) {
	return decodeText(c.valueEncoding, b)
}
