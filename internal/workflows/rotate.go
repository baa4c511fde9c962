package workflows

import (
	"context"

	"github.com/guilt/groupenc/internal/audit"
)

// RotateOptions configures the rotate workflow.
type RotateOptions struct {
	Env
}

// RotateResult contains the outcome of a rotate operation.
type RotateResult struct {
	// SecretsReEncrypted is the count of secrets re-encrypted.
	SecretsReEncrypted int

	// MembersRewrapped is the count of members that received the new key.
	MembersRewrapped int
}

// Rotate replaces the vault's group key.
//
// The workflow:
//  1. Unwraps the current group key with the caller's private key
//  2. Generates a new group key
//  3. Re-encrypts every secret (and re-indexes names in listing mode)
//  4. Wraps the new key for every member in public_keys
//  5. Saves the vault
//
// Nothing is written unless every step succeeds. Members disowned before the
// rotation cannot read secrets written after it.
func Rotate(ctx context.Context, opts RotateOptions) (*RotateResult, error) {
	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debugf("Rotating group key for %d member(s)", len(s.vault.Document().PublicKeys))
	if err := s.vault.Rotate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.save(); err != nil {
		return nil, err
	}

	doc := s.vault.Document()
	s.audit(audit.OpRotate, "", len(doc.Secrets))

	return &RotateResult{
		SecretsReEncrypted: len(doc.Secrets),
		MembersRewrapped:   len(doc.GroupKeys),
	}, nil
}
