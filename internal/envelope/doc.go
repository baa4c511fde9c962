// Package envelope implements the symmetric layer of a groupenc vault:
// AES-GCM under the shared group key, PKCS#7 padding, and the function that
// turns a secret name into the key it is stored under.
//
// Encrypt derives its nonce from the key, so it is deterministic. Secret
// names rely on this in listing mode: the same name must always map to the
// same index. Values may opt into a random nonce with RandomValueNonce.
package envelope
