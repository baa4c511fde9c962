// Package vault implements the groupenc vault: a JSON document holding
// member public keys, a copy of the group key wrapped for each member, and
// secrets encrypted under that group key.
//
// Membership changes (Induct, Disown, Rotate) and secret operations act on
// the in-memory Document; callers persist it with Save.
package vault
