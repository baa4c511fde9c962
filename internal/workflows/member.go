package workflows

import (
	"context"

	"github.com/guilt/groupenc/internal/audit"
	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/vault"
)

// ListMembersOptions configures the member list workflow.
type ListMembersOptions struct {
	Env
}

// ListMembersResult contains the vault membership.
type ListMembersResult struct {
	Members []vault.Member

	// Self is the caller's fingerprint.
	Self string
}

// ListMembers returns every member's fingerprint and public key.
func ListMembers(ctx context.Context, opts ListMembersOptions) (*ListMembersResult, error) {
	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}
	return &ListMembersResult{Members: s.vault.Members(), Self: s.id.ID()}, nil
}

// InductOptions configures the induct workflow.
type InductOptions struct {
	Env

	// Identity is the new member's key material: PEM, OpenSSH or an
	// authorized_keys line. Private keys are accepted; only the public half
	// is stored.
	Identity []byte
}

// InductResult contains the outcome of an induct operation.
type InductResult struct {
	// ID is the new member's fingerprint.
	ID string

	// AlreadyMember is true when the fingerprint was present before; its
	// wrapped key has been refreshed.
	AlreadyMember bool
}

// Induct gives another identity access to the vault by wrapping the group
// key for it. The caller must be a member with a private key.
func Induct(ctx context.Context, opts InductOptions) (*InductResult, error) {
	if len(opts.Identity) == 0 {
		return nil, kerrors.ErrMissingArgument
	}

	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}
	before := len(s.vault.Document().PublicKeys)

	id, err := s.vault.Induct(opts.Identity, nil)
	if err != nil {
		return nil, err
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	s.audit(audit.OpInduct, id, 0)

	return &InductResult{ID: id, AlreadyMember: len(s.vault.Document().PublicKeys) == before}, nil
}

// DisownOptions configures the disown workflow.
type DisownOptions struct {
	Env

	// Identity is the key material of the member to remove. Empty means the
	// caller, which requires Confirm.
	Identity []byte

	// Confirm acknowledges that the caller is removing themselves.
	Confirm bool
}

// DisownResult contains the outcome of a disown operation.
type DisownResult struct {
	ID string

	// Removed is false when the identity was not a member.
	Removed bool

	// Self is true when the caller removed themselves.
	Self bool

	// RemainingMembers is the member count after removal.
	RemainingMembers int
}

// Disown removes a member from the vault. A disowned member keeps whatever
// they already decrypted and the group key they last held; rotate afterwards
// to lock them out of future secrets.
func Disown(ctx context.Context, opts DisownOptions) (*DisownResult, error) {
	self := len(opts.Identity) == 0
	if self && !opts.Confirm {
		return nil, kerrors.ErrConfirmationRequired
	}

	s, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}

	var material []byte
	if !self {
		material = opts.Identity
	}
	id, removed, err := s.vault.Disown(material)
	if err != nil {
		return nil, err
	}
	// Confirmed self-removal by naming one's own key still counts as self.
	self = self || id == s.id.ID()

	if removed {
		if err := s.save(); err != nil {
			return nil, err
		}
		s.audit(audit.OpDisown, id, 0)
	}

	return &DisownResult{
		ID:               id,
		Removed:          removed,
		Self:             self,
		RemainingMembers: len(s.vault.Document().PublicKeys),
	}, nil
}
