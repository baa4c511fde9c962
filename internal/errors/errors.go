package errors

import "errors"

// Precondition errors indicate a required input or membership is missing.
var (
	// ErrNotMember indicates the identity holds no wrapped group key in the vault.
	ErrNotMember = errors.New("identity is not a member of this vault")

	// ErrEmptyName indicates a secret operation was given an empty name.
	ErrEmptyName = errors.New("secret name must not be empty")

	// ErrEmptyPayload indicates an asymmetric encryption was given no plaintext.
	ErrEmptyPayload = errors.New("payload must not be empty")

	// ErrPayloadTooLarge indicates the plaintext exceeds what OAEP can carry for the key size.
	ErrPayloadTooLarge = errors.New("payload too large for public key")

	// ErrMissingArgument indicates a required command argument was not supplied.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrInvalidArgument indicates a command argument has the wrong form.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfirmationRequired indicates a destructive operation was not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrInvalidConfig indicates a configuration value is out of range or unknown.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPassphraseRequired indicates the private key is protected and no passphrase was given.
	ErrPassphraseRequired = errors.New("private key is passphrase-protected")
)

// Capability errors indicate the identity cannot perform the operation.
var (
	// ErrPublicKeyOnly indicates a private-key operation on a public-only identity.
	ErrPublicKeyOnly = errors.New("identity holds only a public key")
)

// Parse errors indicate malformed key material or vault content.
var (
	// ErrParse indicates key material or an encoded payload could not be parsed.
	ErrParse = errors.New("failed to parse input")

	// ErrFormat indicates the vault file is not a valid vault document.
	ErrFormat = errors.New("invalid vault format")

	// ErrUnsupportedKey indicates the key material is not an RSA key.
	ErrUnsupportedKey = errors.New("unsupported key type")
)

// Cryptographic errors indicate a decryption failure, typically a wrong group key.
var (
	// ErrDecrypt indicates authentication or padding failed during decryption.
	ErrDecrypt = errors.New("failed to decrypt")
)

// File errors indicate issues reading or writing local files.
var (
	// ErrIO indicates a file could not be read or written.
	ErrIO = errors.New("file input/output failed")
)
