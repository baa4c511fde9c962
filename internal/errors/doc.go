// Package errors provides typed error values for groupenc.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Kinds
//
// Every sentinel belongs to exactly one Kind:
//
//   - Precondition: missing input, caller not a member (ErrNotMember, ErrEmptyName)
//   - Capability: private key required but only a public key is held (ErrPublicKeyOnly)
//   - Parse: malformed key material or vault JSON (ErrParse, ErrFormat)
//   - Decryption: authentication or padding failure (ErrDecrypt)
//   - IO: local file read/write failure (ErrIO)
//
// The CLI maps kinds to distinct exit codes with ExitCode so scripts can tell
// a wrong key from a missing file.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("reading vault %s: %w: %v", path, errors.ErrIO, err)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrNotMember) {
//	    // Ask a member to induct this identity
//	}
package errors
