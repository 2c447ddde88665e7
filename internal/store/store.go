// Package store persists search service responses and reads JSON schema files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

const maxStemLength = 200

// ResponseStore writes pretty-printed JSON documents into a single directory.
type ResponseStore struct {
	basePath string
	mu       sync.Mutex
}

// NewResponseStore returns a store rooted at basePath. The directory is created on first write.
func NewResponseStore(basePath string) *ResponseStore {
	return &ResponseStore{basePath: basePath}
}

// Dir returns the directory files are written to.
func (s *ResponseStore) Dir() string {
	return s.basePath
}

// PathFor returns the file a given stem is persisted to.
func (s *ResponseStore) PathFor(stem string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.json", stem))
}

// Save re-indents a raw JSON payload and writes it to <dir>/<stem>.json.
func (s *ResponseStore) Save(stem string, payload []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	return s.SaveValue(stem, doc)
}

// SaveValue serializes v with two-space indentation and writes it to <dir>/<stem>.json.
func (s *ResponseStore) SaveValue(stem string, v any) (string, error) {
	if err := validateStem(stem); err != nil {
		return "", err
	}

	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", stem, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	target := s.PathFor(stem)
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

func validateStem(stem string) error {
	if strings.TrimSpace(stem) == "" {
		return errors.New("file name is required")
	}
	if len(stem) > maxStemLength {
		return fmt.Errorf("file name must be <= %d characters", maxStemLength)
	}
	if strings.ContainsAny(stem, `/\`) || stem == "." || stem == ".." {
		return fmt.Errorf("file name %q must not contain path separators", stem)
	}
	return nil
}

// SchemaReader loads JSON schema documents from a filesystem.
type SchemaReader struct {
	fsys fs.FS
	dir  string
}

// NewSchemaReader reads schemas from disk. Bare names resolve to <dir>/<name>.json.
func NewSchemaReader(dir string) *SchemaReader {
	return &SchemaReader{fsys: nil, dir: dir}
}

// NewSchemaReaderFS reads schemas from an fs.FS, useful for testing.
func NewSchemaReaderFS(fsys fs.FS, dir string) *SchemaReader {
	return &SchemaReader{fsys: fsys, dir: dir}
}

// Resolve maps a schema reference to a file path. References that already name a
// .json file are used as given; bare names are looked up in the schema directory.
func (r *SchemaReader) Resolve(ref string) string {
	if strings.EqualFold(filepath.Ext(ref), ".json") {
		return ref
	}
	if r.fsys != nil {
		return path.Join(r.dir, ref+".json")
	}
	return filepath.Join(r.dir, ref+".json")
}

// Read loads a JSON object and applies top-level overrides on top of it.
func (r *SchemaReader) Read(ref string, overrides map[string]any) (map[string]any, error) {
	target := r.Resolve(ref)

	var (
		content []byte
		err     error
	)
	if r.fsys != nil {
		content, err = fs.ReadFile(r.fsys, target)
	} else {
		content, err = os.ReadFile(target)
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", target, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", target, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("schema %s is not a JSON object", target)
	}

	for key, value := range overrides {
		doc[key] = value
	}
	return doc, nil
}
