package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadStdin reads all of r, normally the command's stdin. It fails when r is
// an interactive terminal or yields no data.
func ReadStdin(r io.Reader) ([]byte, error) {
	if f, ok := r.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat stdin: %w", err)
		}
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return nil, fmt.Errorf("no data provided on stdin (hint: pipe the value to this command)")
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("stdin is empty")
	}
	return data, nil
}

// ValueOrContentsOf resolves a command-line value.
//
// A value of "-" is read from stdin. A value starting with "@" names a file
// whose contents are returned when the file exists; otherwise the literal
// value is returned unchanged.
func ValueOrContentsOf(value string, stdin io.Reader) ([]byte, error) {
	if value == "-" {
		return ReadStdin(stdin)
	}
	if !strings.HasPrefix(value, "@") {
		return []byte(value), nil
	}

	path := strings.TrimPrefix(value, "@")
	if !FileExists(path) {
		return []byte(value), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
