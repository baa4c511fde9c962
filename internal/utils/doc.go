// Package utils provides small filesystem, terminal and input helpers shared
// by the command and workflow layers.
//
//   - ValueOrContentsOf: resolves "@file" and "-" (stdin) command-line values
//   - AtomicWriteFile: temp file + rename writes for the vault and key files
//   - ReadPassphrase: hidden passphrase prompt for protected OpenSSH keys
//   - Actor: user@host recorded in the audit trail
package utils
