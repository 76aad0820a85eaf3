package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Repository is the persistence collaborator: one ordered record list per
// category name.
type Repository interface {
	ListCategories(ctx context.Context) ([]string, error)
	// ReadCategory returns ErrNotFound (wrapped) for an unknown category.
	ReadCategory(ctx context.Context, name string) ([]KnowledgeRecord, error)
	WriteCategory(ctx context.Context, name string, records []KnowledgeRecord) error
}

var categoryNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidCategoryName reports whether name can be used as a category key.
func ValidCategoryName(name string) bool {
	return categoryNamePattern.MatchString(name)
}

// DecodeRecords parses a JSON category document. Anything other than an
// array yields no records; array elements that are not objects, and fields
// that are missing or not strings, decode as empty strings so positions stay
// aligned with the source document.
func DecodeRecords(data []byte) ([]KnowledgeRecord, bool, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("decode category document: %w", err)
	}

	items, ok := doc.([]any)
	if !ok {
		return []KnowledgeRecord{}, false, nil
	}

	records := make([]KnowledgeRecord, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		records = append(records, KnowledgeRecord{
			Question: stringField(obj, "question"),
			Answer:   stringField(obj, "answer"),
		})
	}
	return records, true, nil
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

// Copy writes every category of src into dst and returns the number of
// records copied.
func Copy(ctx context.Context, src, dst Repository) (int, error) {
	names, err := src.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list source categories: %w", err)
	}

	count := 0
	for _, name := range names {
		records, err := src.ReadCategory(ctx, name)
		if err != nil {
			return count, fmt.Errorf("read category %s: %w", name, err)
		}
		if err := dst.WriteCategory(ctx, name, records); err != nil {
			return count, fmt.Errorf("write category %s: %w", name, err)
		}
		count += len(records)
	}
	return count, nil
}
