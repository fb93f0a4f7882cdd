package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/store"
	"github.com/cognicore/cognate/pkg/cognate/story"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements store.Store on SQLite.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled
// and creates the schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS stories (
	id TEXT PRIMARY KEY,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	created_at TEXT NOT NULL,
	difficulty_counts TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sentences (
	story_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	sentence TEXT NOT NULL,
	actual_score REAL NOT NULL,
	cognate_words TEXT NOT NULL,
	difficulty INTEGER NOT NULL,
	breakdown TEXT NOT NULL,
	PRIMARY KEY(story_id, position),
	FOREIGN KEY(story_id) REFERENCES stories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS translations (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveStory inserts or replaces a story and all of its sentences.
func (s *sqliteStore) SaveStory(ctx context.Context, st story.Story) error {
	if st.ID == "" {
		return fmt.Errorf("save story: empty id: %w", internalerr.ErrInvalidArgument)
	}
	counts, err := json.Marshal(st.DifficultyCounts)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `
INSERT INTO stories (id, source_lang, target_lang, created_at, difficulty_counts)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source_lang=excluded.source_lang,
	target_lang=excluded.target_lang,
	created_at=excluded.created_at,
	difficulty_counts=excluded.difficulty_counts;
`
	if _, err := tx.ExecContext(ctx, upsert, st.ID, st.SourceLang, st.TargetLang,
		st.CreatedAt.UTC().Format(timeLayout), string(counts)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sentences WHERE story_id = ?`, st.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO sentences (story_id, position, sentence, actual_score, cognate_words, difficulty, breakdown)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range st.Sentences {
		cognates, err := json.Marshal(nonNil(rec.CognateWords))
		if err != nil {
			return err
		}
		breakdown, err := json.Marshal(rec.Breakdown)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, st.ID, i, rec.Sentence, rec.ActualScore,
			string(cognates), rec.Difficulty, string(breakdown)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetStory loads a story by ID.
func (s *sqliteStore) GetStory(ctx context.Context, id string) (story.Story, error) {
	var (
		st      story.Story
		created string
		counts  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source_lang, target_lang, created_at, difficulty_counts FROM stories WHERE id = ?`, id,
	).Scan(&st.ID, &st.SourceLang, &st.TargetLang, &created, &counts)
	if errors.Is(err, sql.ErrNoRows) {
		return story.Story{}, fmt.Errorf("story %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return story.Story{}, err
	}
	if st.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return story.Story{}, fmt.Errorf("story %s: created_at: %w", id, err)
	}
	if err := json.Unmarshal([]byte(counts), &st.DifficultyCounts); err != nil {
		return story.Story{}, fmt.Errorf("story %s: difficulty_counts: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT sentence, actual_score, cognate_words, difficulty, breakdown
FROM sentences WHERE story_id = ? ORDER BY position`, id)
	if err != nil {
		return story.Story{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec       story.SentenceRecord
			cognates  string
			breakdown string
		)
		if err := rows.Scan(&rec.Sentence, &rec.ActualScore, &cognates, &rec.Difficulty, &breakdown); err != nil {
			return story.Story{}, err
		}
		if err := json.Unmarshal([]byte(cognates), &rec.CognateWords); err != nil {
			return story.Story{}, err
		}
		if err := json.Unmarshal([]byte(breakdown), &rec.Breakdown); err != nil {
			return story.Story{}, err
		}
		st.Sentences = append(st.Sentences, rec)
	}
	return st, rows.Err()
}

// ListStories returns up to limit stories, newest first. limit <= 0 means
// no limit.
func (s *sqliteStore) ListStories(ctx context.Context, limit int) ([]story.Story, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM stories ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]story.Story, 0, len(ids))
	for _, id := range ids {
		st, err := s.GetStory(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// DeleteStory removes a story and its sentences.
func (s *sqliteStore) DeleteStory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("story %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

// GetTranslation reads the translation memo.
func (s *sqliteStore) GetTranslation(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM translations WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// PutTranslation upserts a memo entry.
func (s *sqliteStore) PutTranslation(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO translations (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
