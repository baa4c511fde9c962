// Package workflows provides high-level orchestration for groupenc commands.
//
// Workflows coordinate identity loading, vault access and the audit trail to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else. Every workflow except Log starts the
// same way: resolve the caller's identity (generating keys on first use),
// then open the vault (creating it with the caller as sole member when the
// file is missing).
//
// # Available Workflows
//
//   - Bootstrap: Ensures keys and the vault file exist
//   - ShowID: Shows the caller's public key and fingerprint
//   - AddSecret, RemoveSecret, ShowSecret, ListSecrets: Secret management
//   - ListMembers, Induct, Disown: Membership management
//   - Rotate: Replaces the group key
//   - Log: Reads the audit trail
//
// # Error Handling
//
// Workflows return errors wrapping the sentinels in internal/errors, so the
// CLI can pick messages and exit codes with errors.Is:
//
//	result, err := workflows.ShowSecret(ctx, opts)
//	if errors.Is(err, kerrors.ErrNotMember) {
//	    // Ask an existing member to induct you
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter
// and check it between steps.
package workflows
