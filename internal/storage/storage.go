// Package storage reads and writes directories of tree-IR documents.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/opeo/pkg/treeir"
)

// Entry is one document and its path relative to the storage root.
type Entry struct {
	Relative string
	Doc      *treeir.Document
}

// Storage is a source and sink of documents.
type Storage interface {
	All(ctx context.Context) ([]Entry, error)
	Save(entry Entry) error
}

// FileStorage reads documents with Extension under Input and writes them
// under Output, keeping relative paths.
type FileStorage struct {
	Input     string
	Output    string
	Extension string
}

// All parses every matching file under Input, in path order.
func (s *FileStorage) All(ctx context.Context) ([]Entry, error) {
	if s.Input == "" {
		return nil, fmt.Errorf("storage: no input directory")
	}
	var paths []string
	err := filepath.WalkDir(s.Input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, s.Extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: walk %s: %w", s.Input, err)
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		doc, err := treeir.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: %w", path, err)
		}
		rel, err := filepath.Rel(s.Input, path)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		entries = append(entries, Entry{Relative: rel, Doc: doc})
	}
	return entries, nil
}

// Save writes the entry under Output, creating directories as needed.
func (s *FileStorage) Save(entry Entry) error {
	if s.Output == "" {
		return fmt.Errorf("storage: no output directory")
	}
	var buf bytes.Buffer
	if _, err := entry.Doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("storage: encode %s: %w", entry.Relative, err)
	}
	return s.WriteFile(entry.Relative, buf.Bytes())
}

// WriteFile stores raw bytes at rel under Output.
func (s *FileStorage) WriteFile(rel string, data []byte) error {
	path := filepath.Join(s.Output, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

// Discard holds nothing and drops every saved entry.
type Discard struct{}

func (Discard) All(context.Context) ([]Entry, error) { return nil, nil }
func (Discard) Save(Entry) error { return nil }
