package configs

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/guilt/groupenc/internal/utils"
)

// EncodeTOML writes data to w as TOML.
func EncodeTOML(w io.Writer, data any) error {
	return toml.NewEncoder(w).Encode(data)
}

// SaveTOML replaces filePath with data encoded as TOML. Parent directories
// are created and the file is readable only by its owner.
func SaveTOML(filePath string, data any) error {
	var buf bytes.Buffer
	if err := EncodeTOML(&buf, data); err != nil {
		return err
	}
	return utils.AtomicWriteFile(filePath, buf.Bytes(), 0600)
}

// LoadTOML decodes filePath into data. Fields missing from the file keep
// their current values; keys data does not declare are an error.
func LoadTOML(filePath string, data any) error {
	md, err := toml.DecodeFile(filePath, data)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys %v", keys)
	}
	return nil
}
