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
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const categoryFileExt = ".json"

// JSONRepository keeps one <category>.json file per category in a directory.
type JSONRepository struct {
	dir    string
	logger zerolog.Logger
}

func NewJSONRepository(dir string, logger zerolog.Logger) (*JSONRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure knowledge base dir: %w", err)
	}
	return &JSONRepository{dir: dir, logger: logger}, nil
}

// Dir is the directory holding the category files.
func (r *JSONRepository) Dir() string { return r.dir }

func (r *JSONRepository) path(name string) string {
	return filepath.Join(r.dir, name+categoryFileExt)
}

func (r *JSONRepository) ListCategories(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), categoryFileExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), categoryFileExt)
		if !ValidCategoryName(name) {
			r.logger.Warn().Str("file", e.Name()).Msg("Skipping knowledge file with unusable name")
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *JSONRepository) ReadCategory(ctx context.Context, name string) ([]KnowledgeRecord, error) {
	if !ValidCategoryName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}

	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("category %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read category file: %w", err)
	}

	records, isList, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	if !isList {
		r.logger.Warn().Str("category", name).Msg("Category file is not a JSON array, treating it as empty")
	}
	return records, nil
}

// WriteCategory replaces the category file atomically (temp file + rename).
func (r *JSONRepository) WriteCategory(ctx context.Context, name string, records []KnowledgeRecord) error {
	if !ValidCategoryName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	if records == nil {
		records = []KnowledgeRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode category: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path(name)); err != nil {
		return fmt.Errorf("failed to replace category file: %w", err)
	}
	return nil
}
