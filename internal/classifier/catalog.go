package classifier

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"imgclassd/internal/common/fsutil"
)

// Catalog maps model output indices to human-readable labels. It is fixed at
// construction and safe for concurrent reads.
type Catalog struct {
	labels []string
}

// NewCatalog builds a catalog from an ordered label list.
func NewCatalog(labels []string) (*Catalog, error) {
	if len(labels) == 0 {
		return nil, errors.New("catalog: no labels")
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, fmt.Errorf("catalog: empty label at index %d", i)
		}
		out[i] = l
	}
	return &Catalog{labels: out}, nil
}

// Len returns the number of labels.
func (c *Catalog) Len() int { return len(c.labels) }

// Label resolves an output index. Indices outside [0, Len()) are an
// IndexOutOfRange error, never a placeholder label.
func (c *Catalog) Label(i int) (string, error) {
	if i < 0 || i >= len(c.labels) {
		return "", indexOutOfRangeError{index: i, size: len(c.labels)}
	}
	return c.labels[i], nil
}

// Labels returns a copy of the ordered labels.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// classesDoc is the metadata shape {"classes": [...]} used by exported models.
type classesDoc struct {
	Classes []string `json:"classes" yaml:"classes"`
}

// LoadCatalog reads labels from a file chosen by extension:
// .txt (one label per line, blank lines and '#' comments skipped),
// .json or .yaml/.yml (either a bare list or {"classes": [...]}).
func LoadCatalog(path string) (*Catalog, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var labels []string
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".txt", ".labels", "":
		sc := bufio.NewScanner(bytes.NewReader(b))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			labels = append(labels, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("scan labels: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &labels); err != nil {
			var doc classesDoc
			if err2 := json.Unmarshal(b, &doc); err2 != nil {
				return nil, fmt.Errorf("parse labels: %w", err2)
			}
			labels = doc.Classes
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &labels); err != nil {
			var doc classesDoc
			if err2 := yaml.Unmarshal(b, &doc); err2 != nil {
				return nil, fmt.Errorf("parse labels: %w", err2)
			}
			labels = doc.Classes
		}
	default:
		return nil, fmt.Errorf("unsupported labels extension: %s", ext)
	}
	return NewCatalog(labels)
}
