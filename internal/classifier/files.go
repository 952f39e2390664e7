package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"imgclassd/internal/common/fsutil"
)

// UploadedAsset records where an upload was stored.
type UploadedAsset struct {
	Original string
	Stored   string
	Path     string
}

// collision retries before giving up; each retry draws a fresh suffix
const maxNameAttempts = 5

// FileStore writes uploads into a single directory. Existing files are never
// overwritten: a colliding name gets a short random suffix instead.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	dir, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, errors.New("upload dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the upload directory.
func (f *FileStore) Dir() string { return f.dir }

// Save stores data under a sanitized form of original. ext is the validated,
// lower-case extension without the dot.
func (f *FileStore) Save(original, ext string, data []byte) (UploadedAsset, error) {
	stem, _ := splitUploadName(original)
	stem = fsutil.SanitizeFilename(stem)
	if stem == "" {
		stem = uuid.NewString()
	}
	name := stem + "." + ext
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		_, err := fsutil.WriteFileNoClobber(f.dir, name, bytes.NewReader(data))
		if err == nil {
			return UploadedAsset{Original: original, Stored: name, Path: filepath.Join(f.dir, name)}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return UploadedAsset{}, storeError{op: "save upload", err: err}
		}
		name = stem + "-" + uuid.NewString()[:8] + "." + ext
	}
	return UploadedAsset{}, storeError{op: "save upload", err: fmt.Errorf("no free name for %q", original)}
}

// splitUploadName returns the base name of a client-supplied filename (either
// separator) split into stem and lower-case extension without the dot.
func splitUploadName(name string) (stem, ext string) {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	dot := path.Ext(name)
	return strings.TrimSuffix(name, dot), strings.ToLower(strings.TrimPrefix(dot, "."))
}
