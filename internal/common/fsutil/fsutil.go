package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/resnet.onnx
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// windows device names that must never be used as a stored file stem
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename reduces an uploaded filename to a safe base name.
// Directory components (either separator) are dropped, whitespace becomes '_',
// anything outside [A-Za-z0-9._-] is removed and leading dots/underscores are
// trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeNameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	stem := name
	if i := strings.Index(stem, "."); i >= 0 {
		stem = stem[:i]
	}
	if _, bad := reservedNames[strings.ToUpper(stem)]; bad {
		name = "_" + name
	}
	return name
}

// WriteFileNoClobber writes r to dir/name without ever exposing a partially
// written file under the final name. Data goes to a temp file in dir first and
// is then hard-linked into place; if dir/name already exists, os.ErrExist is
// returned and nothing is left behind.
func WriteFileNoClobber(dir, name string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp: %w", err)
	}
	if err := os.Link(tmpName, filepath.Join(dir, name)); err != nil {
		if errors.Is(err, os.ErrExist) {
			return n, os.ErrExist
		}
		return n, fmt.Errorf("link %s: %w", name, err)
	}
	return n, nil
}
