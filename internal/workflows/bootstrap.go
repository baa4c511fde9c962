package workflows

import (
	"context"
)

// BootstrapOptions configures the bootstrap workflow.
type BootstrapOptions struct {
	Env
}

// BootstrapResult contains the outcome of a bootstrap operation.
type BootstrapResult struct {
	// ID is the fingerprint of the caller's identity.
	ID string

	// GeneratedKeys is true when a new keypair was written.
	GeneratedKeys bool

	// CreatedVault is true when the vault file did not exist before.
	CreatedVault bool

	PrivateKeyFile string
	PublicKeyFile  string
	VaultFile      string
}

// Bootstrap makes sure the caller has an identity and the vault file exists.
// Missing keys are generated and a missing vault is created with the caller
// as its only member. Running it again is harmless.
func Bootstrap(ctx context.Context, opts BootstrapOptions) (*BootstrapResult, error) {
	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	return &BootstrapResult{
		ID:             s.id.ID(),
		GeneratedKeys:  s.generatedKeys,
		CreatedVault:   s.createdVault,
		PrivateKeyFile: opts.Config.PrivateKeyFile,
		PublicKeyFile:  opts.Config.PublicKeyFile,
		VaultFile:      opts.Config.VaultFile,
	}, nil
}
