package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"restaurant-orders/internal/domain"
)

// FileSnapshotter keeps the document as indented UTF-8 JSON in a single file.
type FileSnapshotter struct {
	path string
}

func NewFileSnapshotter(path string) *FileSnapshotter {
	return &FileSnapshotter{path: path}
}

func (f *FileSnapshotter) Path() string {
	return f.path
}

// Load reads the file. An undecodable file is moved aside so the next save cannot clobber it.
func (f *FileSnapshotter) Load(_ context.Context) (domain.Document, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Document{}, ErrNoSnapshot
		}
		return domain.Document{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().UnixMilli())
		if rerr := os.Rename(f.path, aside); rerr != nil {
			return domain.Document{}, fmt.Errorf("decode %s: %w (move aside: %v)", f.path, err, rerr)
		}
		return domain.Document{}, fmt.Errorf("%w: decode %s: %v (moved to %s)", ErrSnapshotQuarantined, f.path, err, aside)
	}
	return doc, nil
}

// Save writes to a temp file in the same directory and renames it over the target.
func (f *FileSnapshotter) Save(_ context.Context, doc domain.Document) error {
	raw, err := Encode(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}

// Encode renders a document the way it is stored and exported: 4-space indent, no HTML escaping.
func Encode(doc domain.Document) ([]byte, error) {
	doc.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
