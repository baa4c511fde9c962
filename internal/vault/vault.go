package vault

import (
	"bytes"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/guilt/groupenc/internal/envelope"
	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/identity"
	"github.com/guilt/groupenc/internal/utils"

	"github.com/awnumar/memguard"
)

// Vault binds a Document to the identity operating on it. Group keys are
// never kept on the Vault: every operation unwraps its own copy and wipes
// it before returning.
type Vault struct {
	id    *identity.Identity
	doc   *Document
	codec *envelope.Codec
}

// Member is one entry of the membership hives.
type Member struct {
	ID        string `json:"id" yaml:"id"`
	PublicKey string `json:"public_key" yaml:"public_key"`
}

// New wraps an in-memory document. A nil doc starts empty.
func New(id *identity.Identity, doc *Document, codec *envelope.Codec) *Vault {
	if doc == nil {
		doc = NewDocument()
	}
	return &Vault{id: id, doc: doc, codec: codec}
}

// Bootstrap creates a vault whose only member is id, under a fresh group key.
func Bootstrap(id *identity.Identity, codec *envelope.Codec) (*Vault, error) {
	v := New(id, nil, codec)

	key, err := codec.NewGroupKey()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	if err := v.add(id, key); err != nil {
		return nil, err
	}
	return v, nil
}

// Open loads the vault at path, or bootstraps and saves a new one when the
// file does not exist yet.
func Open(id *identity.Identity, path string, codec *envelope.Codec) (*Vault, error) {
	if utils.FileExists(path) {
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}
		return New(id, doc, codec), nil
	}

	v, err := Bootstrap(id, codec)
	if err != nil {
		return nil, err
	}
	if err := v.Save(path); err != nil {
		return nil, err
	}
	return v, nil
}

// Identity returns the identity the vault is bound to.
func (v *Vault) Identity() *identity.Identity {
	return v.id
}

// Document returns the underlying document.
func (v *Vault) Document() *Document {
	return v.doc
}

// Save writes the document to path.
func (v *Vault) Save(path string) error {
	return v.doc.Save(path)
}

// IsMember reports whether the bound identity holds a wrapped group key.
func (v *Vault) IsMember() bool {
	_, ok := v.doc.GroupKeys[v.id.ID()]
	return ok
}

// CurrentGroupKey unwraps the caller's copy of the group key. The caller
// owns the returned slice and should wipe it.
func (v *Vault) CurrentGroupKey() ([]byte, error) {
	wrapped, ok := v.doc.GroupKeys[v.id.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotMember, v.id.ID())
	}
	key, err := v.id.Decrypt(wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrapping group key: %w", err)
	}
	return key, nil
}

// AddSecret stores value under name, replacing any existing value.
func (v *Vault) AddSecret(name, value string) error {
	if name == "" {
		return kerrors.ErrEmptyName
	}

	key, err := v.CurrentGroupKey()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(key)

	indexed, err := v.codec.IndexName(key, name)
	if err != nil {
		return err
	}
	encoded, err := v.codec.EncodeValue(value)
	if err != nil {
		return err
	}
	sealed, err := v.codec.SealValue(key, encoded)
	memguard.WipeBytes(encoded)
	if err != nil {
		return err
	}

	v.doc.Secrets[indexed] = sealed
	return nil
}

// GetSecret returns the value stored under name. ok is false when there is
// no such secret.
func (v *Vault) GetSecret(name string) (value string, ok bool, err error) {
	if name == "" {
		return "", false, kerrors.ErrEmptyName
	}

	key, err := v.CurrentGroupKey()
	if err != nil {
		return "", false, err
	}
	defer memguard.WipeBytes(key)

	indexed, err := v.codec.IndexName(key, name)
	if err != nil {
		return "", false, err
	}
	sealed, found := v.doc.Secrets[indexed]
	if !found {
		return "", false, nil
	}

	plaintext, err := v.codec.OpenValue(key, sealed)
	if err != nil {
		return "", false, fmt.Errorf("decrypting secret %q: %w", name, err)
	}
	value, err = v.codec.DecodeValue(plaintext)
	memguard.WipeBytes(plaintext)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// RemoveSecret deletes name. Removing a missing secret is not an error.
func (v *Vault) RemoveSecret(name string) (bool, error) {
	if name == "" {
		return false, kerrors.ErrEmptyName
	}

	key, err := v.CurrentGroupKey()
	if err != nil {
		return false, err
	}
	defer memguard.WipeBytes(key)

	indexed, err := v.codec.IndexName(key, name)
	if err != nil {
		return false, err
	}
	if _, ok := v.doc.Secrets[indexed]; !ok {
		return false, nil
	}
	delete(v.doc.Secrets, indexed)
	return true, nil
}

// ListSecrets yields secret names. Each range re-reads the document and
// unwraps the current group key, so the sequence reflects rotations made
// between iterations. Hashed indexes cannot be reversed and yield nothing;
// entries that do not decrypt under the current key are skipped.
func (v *Vault) ListSecrets() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !v.codec.Listing() {
			return
		}

		key, err := v.CurrentGroupKey()
		if err != nil {
			yield("", err)
			return
		}
		defer memguard.WipeBytes(key)

		for _, indexed := range slices.Sorted(maps.Keys(v.doc.Secrets)) {
			name, ok, err := v.codec.DeindexName(key, indexed)
			if err != nil || !ok {
				continue
			}
			if !yield(name, nil) {
				return
			}
		}
	}
}

// ListMembers yields (fingerprint, public key) pairs sorted by fingerprint.
func (v *Vault) ListMembers() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, id := range slices.Sorted(maps.Keys(v.doc.PublicKeys)) {
			if !yield(id, v.doc.PublicKeys[id]) {
				return
			}
		}
	}
}

// Members returns the membership as a slice, sorted by fingerprint.
func (v *Vault) Members() []Member {
	members := make([]Member, 0, len(v.doc.PublicKeys))
	for id, pub := range v.ListMembers() {
		members = append(members, Member{ID: id, PublicKey: pub})
	}
	return members
}

// Induct adds the holder of material as a member. A nil groupKey means the
// caller's current group key. It returns the new member's fingerprint.
func (v *Vault) Induct(material []byte, groupKey []byte) (string, error) {
	if len(material) == 0 {
		return "", fmt.Errorf("%w: member key material", kerrors.ErrMissingArgument)
	}
	member, err := identity.Parse(material, nil)
	if err != nil {
		return "", err
	}

	if groupKey == nil {
		key, err := v.CurrentGroupKey()
		if err != nil {
			return "", err
		}
		defer memguard.WipeBytes(key)
		groupKey = key
	}

	if err := v.add(member, groupKey); err != nil {
		return "", err
	}
	return member.ID(), nil
}

// Disown removes the holder of material from the vault. Nil material means
// the bound identity. removed is false when it was not a member.
func (v *Vault) Disown(material []byte) (id string, removed bool, err error) {
	target := v.id
	if material != nil {
		target, err = identity.Parse(material, nil)
		if err != nil {
			return "", false, err
		}
	}

	id = target.ID()
	_, inPublic := v.doc.PublicKeys[id]
	_, inGroup := v.doc.GroupKeys[id]
	delete(v.doc.PublicKeys, id)
	delete(v.doc.GroupKeys, id)
	return id, inPublic || inGroup, nil
}

// Rotate replaces the group key. Every value is re-encrypted, listing-mode
// names are re-indexed and every member gets a freshly wrapped copy. The
// new state is built on the side and only replaces the document when all
// of it succeeded.
func (v *Vault) Rotate() error {
	old, err := v.CurrentGroupKey()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(old)

	fresh, err := v.codec.NewGroupKey()
	if err != nil {
		return err
	}
	for bytes.Equal(fresh, old) {
		if fresh, err = v.codec.NewGroupKey(); err != nil {
			return err
		}
	}
	defer memguard.WipeBytes(fresh)

	staged := NewDocument()

	for indexed, sealed := range v.doc.Secrets {
		value, err := v.codec.OpenValue(old, sealed)
		if err != nil {
			return fmt.Errorf("rotating secret %s: %w", indexed, err)
		}

		newIndex := indexed
		if v.codec.Listing() {
			name, err := v.codec.Decrypt(old, indexed)
			if err != nil {
				return fmt.Errorf("rotating secret name %s: %w", indexed, err)
			}
			newIndex, err = v.codec.Encrypt(fresh, name)
			if err != nil {
				return err
			}
		}

		resealed, err := v.codec.SealValue(fresh, value)
		memguard.WipeBytes(value)
		if err != nil {
			return err
		}
		staged.Secrets[newIndex] = resealed
	}

	rewrapped := New(v.id, staged, v.codec)
	for id, pub := range v.doc.PublicKeys {
		member, err := identity.Parse([]byte(pub), nil)
		if err != nil {
			return fmt.Errorf("rotating member %s: %w", id, err)
		}
		if member.ID() != id {
			return fmt.Errorf("%w: public key stored under %s has fingerprint %s", kerrors.ErrFormat, id, member.ID())
		}
		if err := rewrapped.add(member, fresh); err != nil {
			return fmt.Errorf("rotating member %s: %w", id, err)
		}
	}

	v.doc = staged
	return nil
}

func (v *Vault) add(member *identity.Identity, groupKey []byte) error {
	wrapped, err := member.EncryptWithPublicKey(groupKey)
	if err != nil {
		return fmt.Errorf("wrapping group key for %s: %w", member.ID(), err)
	}
	pub, err := member.ExportPublicKey()
	if err != nil {
		return err
	}
	v.doc.PublicKeys[member.ID()] = pub
	v.doc.GroupKeys[member.ID()] = wrapped
	return nil
}
