package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/utils"
)

// Document is the on-disk form of a vault: three maps keyed by member
// fingerprint or indexed secret name. Fields are declared in key order so
// the encoded object has sorted keys at every level.
type Document struct {
	GroupKeys  map[string]string `json:"group_keys"`
	PublicKeys map[string]string `json:"public_keys"`
	Secrets    map[string]string `json:"secrets"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		PublicKeys: map[string]string{},
		GroupKeys:  map[string]string{},
		Secrets:    map[string]string{},
	}
}

// Load reads a document from path. Missing hives load as empty maps.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: vault file %s does not exist", kerrors.ErrIO, path)
		}
		return nil, fmt.Errorf("%w: reading vault %s: %v", kerrors.ErrIO, path, err)
	}
	return Parse(data)
}

// Parse decodes a document from JSON and checks that the membership hives
// agree.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: vault is not valid JSON: %v", kerrors.ErrFormat, err)
	}
	if doc.PublicKeys == nil {
		doc.PublicKeys = map[string]string{}
	}
	if doc.GroupKeys == nil {
		doc.GroupKeys = map[string]string{}
	}
	if doc.Secrets == nil {
		doc.Secrets = map[string]string{}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks that public_keys and group_keys have the same fingerprints.
func (d *Document) Validate() error {
	if len(d.PublicKeys) != len(d.GroupKeys) {
		return fmt.Errorf("%w: %d public keys but %d group keys", kerrors.ErrFormat, len(d.PublicKeys), len(d.GroupKeys))
	}
	for id := range d.PublicKeys {
		if _, ok := d.GroupKeys[id]; !ok {
			return fmt.Errorf("%w: member %s has no wrapped group key", kerrors.ErrFormat, id)
		}
	}
	return nil
}

// Marshal encodes the document as indented JSON with sorted keys and a
// trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode vault: %w", err)
	}
	return append(data, '\n'), nil
}

// Save replaces the file at path with the document.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := utils.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: saving vault %s: %v", kerrors.ErrIO, path, err)
	}
	return nil
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	return &Document{
		PublicKeys: cloneMap(d.PublicKeys),
		GroupKeys:  cloneMap(d.GroupKeys),
		Secrets:    cloneMap(d.Secrets),
	}
}

// Equal reports whether two documents hold the same entries.
func (d *Document) Equal(other *Document) bool {
	a, errA := d.Marshal()
	b, errB := other.Marshal()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
