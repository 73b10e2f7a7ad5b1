// Package store persists markdown documents with YAML frontmatter under
// cross-process file locks. Session transcripts are stored this way.
package store

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Document is a markdown body with a metadata header.
type Document struct {
	Meta map[string]any
	Body string
}

// ReadDocument parses the file at path. A file without a frontmatter block
// is returned with empty Meta and the whole file as Body.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		slog.Debug("document has no frontmatter", "path", path, "error", err)
		return &Document{Meta: map[string]any{}, Body: string(data)}, nil
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return &Document{Meta: meta, Body: string(body)}, nil
}

// WriteDocument renders doc and replaces the file at path atomically,
// creating parent directories as needed.
func WriteDocument(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	var buf bytes.Buffer
	if len(doc.Meta) > 0 {
		header, err := yaml.Marshal(doc.Meta)
		if err != nil {
			return fmt.Errorf("marshaling frontmatter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(header)
		buf.WriteString("---\n\n")
	}
	buf.WriteString(doc.Body)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ListDocuments returns the markdown files directly under dir, sorted by
// name. A missing directory yields an empty list.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
