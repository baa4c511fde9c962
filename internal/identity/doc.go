// Package identity manages RSA identities for groupenc.
//
// An Identity wraps either a full keypair or a public key only. Its ID is a
// fingerprint derived from the public modulus and exponent, so the same key
// always yields the same ID regardless of how it was serialized.
//
// Keys can be loaded from PKCS#1, PKCS#8, PKIX, OpenSSH private key and
// authorized_keys formats. When nothing is found on disk, Load generates a
// new keypair and writes it out, which is how a first run bootstraps.
package identity
