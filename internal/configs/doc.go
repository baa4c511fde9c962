// Package configs manages groupenc configuration.
//
// A Config is assembled from three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file: GROUPENC_CONFIG, or <UserConfigDir>/groupenc/config.toml
//  3. GROUPENC_* environment variables
//
// The command layer applies flag overrides on top and calls ExpandPaths.
//
// # Deploy-time choices
//
// AllowListing (reversible secret-name index) and RandomValueNonce change
// the on-disk format of secrets. They must be chosen once per vault file;
// mixing them on the same file leaves entries that cannot be recovered.
//
// # Example config.toml
//
//	key_bits = 4096
//	allow_listing = true
//	vault_file = "team.groupenc.json"
package configs
