package workflows

import (
	"context"
)

// ShowIDOptions configures the id workflow.
type ShowIDOptions struct {
	Env
}

// ShowIDResult describes the caller's identity.
type ShowIDResult struct {
	// ID is the fingerprint of the public key.
	ID string

	// PublicKey is the PEM text to hand to an existing member for induct.
	PublicKey string

	HasPrivateKey bool

	// Member is true when the vault holds a wrapped group key for ID.
	Member bool
}

// ShowID returns the caller's public key and fingerprint.
func ShowID(ctx context.Context, opts ShowIDOptions) (*ShowIDResult, error) {
	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	pub, err := s.id.ExportPublicKey()
	if err != nil {
		return nil, err
	}

	return &ShowIDResult{
		ID:            s.id.ID(),
		PublicKey:     pub,
		HasPrivateKey: s.id.HasPrivateKey(),
		Member:        s.vault.IsMember(),
	}, nil
}
