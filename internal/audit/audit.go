package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/utils"

	"github.com/google/uuid"
)

// Operation names recorded in the log.
const (
	OpBootstrap    = "bootstrap"
	OpAddSecret    = "secret.add"
	OpRemoveSecret = "secret.remove"
	OpShowSecret   = "secret.show"
	OpInduct       = "induct"
	OpDisown       = "disown"
	OpRotate       = "rotate"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID string `json:"id"`

	// Timestamp is RFC3339 with microseconds.
	Timestamp string `json:"ts"`

	// Actor is the user@host of the process, Member the acting fingerprint.
	Actor     string `json:"actor"`
	Member    string `json:"member,omitempty"`
	Operation string `json:"op"`

	// Optional fields depending on operation.
	Target string `json:"target,omitempty"` // Fingerprint for induct/disown.
	Count  int    `json:"count,omitempty"`  // Secrets re-encrypted by rotate.
}

// PathFor returns the audit log path that belongs to a vault file.
func PathFor(vaultPath string) string {
	return vaultPath + ".audit.jsonl"
}

// NewEntry returns an entry for op with ID, timestamp and actor filled in.
func NewEntry(op, member string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000000Z"),
		Actor:     utils.Actor(),
		Member:    member,
		Operation: op,
	}
}

// Log appends an entry to the audit log next to vaultPath.
// Operations should not fail just because audit logging failed, so the
// error is only returned for the caller to report.
func Log(vaultPath string, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	// #nosec G302 -- audit log carries no secrets and is shared with the vault.
	f, err := os.OpenFile(PathFor(vaultPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: opening audit log: %v", kerrors.ErrIO, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: writing audit log: %v", kerrors.ErrIO, err)
	}
	return nil
}

// ReadEntries reads all entries from the audit log of vaultPath.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(vaultPath string) ([]Entry, error) {
	data, err := os.ReadFile(PathFor(vaultPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading audit log: %v", kerrors.ErrIO, err)
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries
}
