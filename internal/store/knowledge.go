package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gwi.com/induction-assistant/internal/utils"
)

// Entry is a stored record along with its normalized text, computed once
// per load.
type Entry struct {
	Category     string
	Position     int
	Record       KnowledgeRecord
	NormQuestion string
	NormAnswer   string
}

// Snapshot is an immutable view of the knowledge base. A query works on a
// single snapshot from start to finish.
type Snapshot struct {
	fixedName  string
	fixed      []Entry
	categories []string // general categories, sorted
	entries    map[string][]Entry
	loadedAt   time.Time
}

func emptySnapshot(fixedName string) *Snapshot {
	return &Snapshot{fixedName: fixedName, entries: map[string][]Entry{}}
}

// Fixed returns the exact-match set.
func (s *Snapshot) Fixed() []Entry { return s.fixed }

// Categories returns general category names in enumeration order.
func (s *Snapshot) Categories() []string { return s.categories }

// Entries returns the entries of a general category.
func (s *Snapshot) Entries(category string) []Entry { return s.entries[category] }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Size counts general records, excluding the exact-match set.
func (s *Snapshot) Size() int {
	n := 0
	for _, es := range s.entries {
		n += len(es)
	}
	return n
}

func (s *Snapshot) info(name string) (CategoryInfo, bool) {
	var es []Entry
	if name == s.fixedName && s.fixed != nil {
		es = s.fixed
	} else {
		var ok bool
		if es, ok = s.entries[name]; !ok {
			return CategoryInfo{}, false
		}
	}
	items := make([]KnowledgeRecord, len(es))
	for i, e := range es {
		items[i] = e.Record
	}
	return CategoryInfo{Category: name, Count: len(items), Items: items}, true
}

// KnowledgeStore serves snapshots of the repository content. Reloads build a
// new snapshot and publish it in one atomic swap; mutations go through the
// repository and end with a full reload.
type KnowledgeStore struct {
	repo      Repository
	fixedName string
	logger    zerolog.Logger

	current atomic.Pointer[Snapshot]
	writeMu sync.Mutex // serializes reloads and read-modify-write cycles
}

func NewKnowledgeStore(repo Repository, fixedCategory string, logger zerolog.Logger) *KnowledgeStore {
	s := &KnowledgeStore{repo: repo, fixedName: fixedCategory, logger: logger}
	s.current.Store(emptySnapshot(fixedCategory))
	return s
}

// FixedCategory is the name of the exact-match category.
func (s *KnowledgeStore) FixedCategory() string { return s.fixedName }

// Snapshot returns the currently published snapshot.
func (s *KnowledgeStore) Snapshot() *Snapshot { return s.current.Load() }

// Load replaces the in-memory state with the full repository content. On
// failure the previous snapshot stays published.
func (s *KnowledgeStore) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.load(ctx)
}

func (s *KnowledgeStore) load(ctx context.Context) error {
	names, err := s.repo.ListCategories(ctx)
	if err != nil {
		return persistenceErr("list", "", err)
	}

	next := emptySnapshot(s.fixedName)
	for _, name := range names {
		records, err := s.repo.ReadCategory(ctx, name)
		if err != nil {
			return persistenceErr("read", name, err)
		}
		entries := make([]Entry, len(records))
		for i, rec := range records {
			entries[i] = Entry{
				Category:     name,
				Position:     i,
				Record:       rec,
				NormQuestion: utils.Normalize(rec.Question),
				NormAnswer:   utils.Normalize(rec.Answer),
			}
		}
		if name == s.fixedName {
			next.fixed = entries
			continue
		}
		next.entries[name] = entries
		next.categories = append(next.categories, name)
	}
	next.loadedAt = time.Now()

	s.current.Store(next)
	s.logger.Info().
		Int("categories", len(next.categories)).
		Int("records", next.Size()).
		Int("fixed_qa", len(next.fixed)).
		Msg("Knowledge base loaded")
	return nil
}

// Categories lists the general categories of the current snapshot.
func (s *KnowledgeStore) Categories() []string {
	return append([]string(nil), s.Snapshot().Categories()...)
}

// CategoryInfo reports a category's records; the exact-match category can be
// looked up by name as well.
func (s *KnowledgeStore) CategoryInfo(name string) (CategoryInfo, error) {
	info, ok := s.Snapshot().info(name)
	if !ok {
		return CategoryInfo{}, fmt.Errorf("category %s: %w", name, ErrNotFound)
	}
	return info, nil
}

// Items reads a category straight from the repository. A missing category
// yields an empty list.
func (s *KnowledgeStore) Items(ctx context.Context, name string) ([]KnowledgeRecord, error) {
	if !ValidCategoryName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	records, err := s.repo.ReadCategory(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return []KnowledgeRecord{}, nil
	}
	if err != nil {
		return nil, persistenceErr("read", name, err)
	}
	return records, nil
}

// ReplaceCategory overwrites a category with records, creating it if needed.
func (s *KnowledgeStore) ReplaceCategory(ctx context.Context, name string, records []KnowledgeRecord) error {
	if err := validateWrite(name, records...); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.WriteCategory(ctx, name, records); err != nil {
		return persistenceErr("write", name, err)
	}
	return s.load(ctx)
}

// AppendItem adds rec to the end of a category, creating it if needed.
func (s *KnowledgeStore) AppendItem(ctx context.Context, name string, rec KnowledgeRecord) error {
	if err := validateWrite(name, rec); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, err := s.repo.ReadCategory(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return persistenceErr("read", name, err)
	}
	records = append(records, rec)

	if err := s.repo.WriteCategory(ctx, name, records); err != nil {
		return persistenceErr("write", name, err)
	}
	return s.load(ctx)
}

// DeleteItem removes the record at index from a category.
func (s *KnowledgeStore) DeleteItem(ctx context.Context, name string, index int) error {
	if !ValidCategoryName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, err := s.repo.ReadCategory(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("category %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return persistenceErr("read", name, err)
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("delete %s[%d] of %d: %w", name, index, len(records), ErrIndexOutOfRange)
	}

	records = append(records[:index:index], records[index+1:]...)
	if err := s.repo.WriteCategory(ctx, name, records); err != nil {
		return persistenceErr("write", name, err)
	}
	return s.load(ctx)
}

func validateWrite(name string, records ...KnowledgeRecord) error {
	if !ValidCategoryName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.Question) == "" {
			return fmt.Errorf("%w: record %d has an empty question", ErrInvalidRecord, i)
		}
	}
	return nil
}
