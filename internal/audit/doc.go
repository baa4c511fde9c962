// Package audit records who changed a vault and how.
//
// The log is stored as JSON Lines next to the vault file:
//
//	<vault file>.audit.jsonl
//
// Each entry has a UUID, a UTC timestamp, the user@host that ran the
// command, the acting member's fingerprint and the operation. Secret names
// and values are never logged.
//
// Audit logging is best-effort: Log returns an error for the caller to
// report, but callers never fail an operation because of it. Malformed
// lines are skipped when reading, which tolerates partial writes.
package audit
