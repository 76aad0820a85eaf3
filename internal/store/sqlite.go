package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteRepository stores categories as rows ordered by position.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dataSourceName string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db}
	if err = repo.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return repo, nil
}

func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func (s *SQLiteRepository) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS categories (
        name TEXT PRIMARY KEY,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS knowledge_records (
        category TEXT NOT NULL,
        position INTEGER NOT NULL,
        question TEXT NOT NULL DEFAULT '',
        answer TEXT NOT NULL DEFAULT '',
        PRIMARY KEY (category, position),
        FOREIGN KEY (category) REFERENCES categories (name)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteRepository) ReadCategory(ctx context.Context, name string) ([]KnowledgeRecord, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM categories WHERE name = ?", name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("category %s: %w", name, ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT question, answer FROM knowledge_records WHERE category = ? ORDER BY position ASC", name)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []KnowledgeRecord{}
	for rows.Next() {
		var rec KnowledgeRecord
		var question, answer sql.NullString
		if err := rows.Scan(&question, &answer); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		rec.Question = question.String
		rec.Answer = answer.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// WriteCategory replaces the whole record list of a category in one
// transaction.
func (s *SQLiteRepository) WriteCategory(ctx context.Context, name string, records []KnowledgeRecord) error {
	if !ValidCategoryName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)
        ON CONFLICT(name) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`, name); err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM knowledge_records WHERE category = ?", name); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO knowledge_records (category, position, question, answer) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, name, i, rec.Question, rec.Answer); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category: %w", err)
	}
	return nil
}
