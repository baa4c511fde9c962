package workflows

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/audit"
	kerrors "github.com/guilt/groupenc/internal/errors"
)

// AddSecretOptions configures the secret add workflow.
type AddSecretOptions struct {
	Env

	// Name is the plaintext secret name.
	Name string

	// Value is stored as-is; an empty value is allowed.
	Value string
}

// AddSecretResult contains the outcome of a secret add operation.
type AddSecretResult struct {
	Name      string
	VaultFile string
}

// AddSecret stores a secret and saves the vault. An existing secret with the
// same name is overwritten.
func AddSecret(ctx context.Context, opts AddSecretOptions) (*AddSecretResult, error) {
	if opts.Name == "" {
		return nil, kerrors.ErrEmptyName
	}

	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debugf("Adding secret %s", opts.Name)
	if err := s.vault.AddSecret(opts.Name, opts.Value); err != nil {
		return nil, err
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	s.audit(audit.OpAddSecret, "", 0)

	return &AddSecretResult{Name: opts.Name, VaultFile: opts.Config.VaultFile}, nil
}

// RemoveSecretOptions configures the secret remove workflow.
type RemoveSecretOptions struct {
	Env
	Name string
}

// RemoveSecretResult contains the outcome of a secret remove operation.
type RemoveSecretResult struct {
	Name string

	// Removed is false when no such secret existed.
	Removed bool
}

// RemoveSecret deletes a secret and saves the vault. Removing a secret that
// does not exist succeeds with Removed set to false.
func RemoveSecret(ctx context.Context, opts RemoveSecretOptions) (*RemoveSecretResult, error) {
	if opts.Name == "" {
		return nil, kerrors.ErrEmptyName
	}

	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := s.vault.RemoveSecret(opts.Name)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.save(); err != nil {
			return nil, err
		}
		s.audit(audit.OpRemoveSecret, "", 0)
	}

	return &RemoveSecretResult{Name: opts.Name, Removed: removed}, nil
}

// ShowSecretOptions configures the secret show workflow.
type ShowSecretOptions struct {
	Env
	Name string
}

// ShowSecretResult contains a decrypted secret.
type ShowSecretResult struct {
	Name  string
	Value string

	// Found is false when no secret has this name.
	Found bool
}

// ShowSecret decrypts one secret.
func ShowSecret(ctx context.Context, opts ShowSecretOptions) (*ShowSecretResult, error) {
	if opts.Name == "" {
		return nil, kerrors.ErrEmptyName
	}

	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	value, found, err := s.vault.GetSecret(opts.Name)
	if err != nil {
		return nil, err
	}
	if found {
		s.audit(audit.OpShowSecret, "", 0)
	}

	return &ShowSecretResult{Name: opts.Name, Value: value, Found: found}, nil
}

// ListSecretsOptions configures the secret list workflow.
type ListSecretsOptions struct {
	Env
}

// ListSecretsResult contains the recoverable secret names.
type ListSecretsResult struct {
	Names []string

	// Listable is false when names are hashed and cannot be recovered.
	Listable bool

	// Total is the number of entries in the vault, listable or not.
	Total int
}

// ListSecrets recovers the names of all secrets. With hashed names it
// returns no names and Listable false.
func ListSecrets(ctx context.Context, opts ListSecretsOptions) (*ListSecretsResult, error) {
	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	result := &ListSecretsResult{
		Names:    []string{},
		Listable: opts.Config.AllowListing,
		Total:    len(s.vault.Document().Secrets),
	}
	for name, err := range s.vault.ListSecrets() {
		if err != nil {
			return nil, err
		}
		result.Names = append(result.Names, name)
	}

	if skipped := result.Total - len(result.Names); result.Listable && skipped > 0 {
		opts.Logger.Warnf("%d secret(s) could not be decrypted with the current group key", skipped)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	return result, nil
}
