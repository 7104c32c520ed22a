// Package lexicon is a SQLite-backed pronunciation dictionary. Phrases added
// to a corpus without an explicit pronunciation can be annotated from it.
package lexicon

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DBExecutor allows store functions to accept either *sql.DB or *sql.Tx.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS pronunciations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL,
	variant INTEGER NOT NULL DEFAULT 0,
	xsampa TEXT NOT NULL,
	UNIQUE(word, variant)
);
CREATE INDEX IF NOT EXISTS idx_pronunciations_word ON pronunciations(word)
`

// Init runs migrations on the given DB connection.
func Init(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Open opens (creating if needed) a lexicon database at path and runs
// migrations on it.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon db: %w", err)
	}
	if err := Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init lexicon db: %w", err)
	}
	return conn, nil
}

// Normalize returns the canonical lookup form of a word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Put upserts a pronunciation for a word. variant 0 is the primary
// pronunciation; later imports of the same (word, variant) replace the
// stored transcription.
func Put(db DBExecutor, word string, variant int, xsampa string) error {
	w := Normalize(word)
	if w == "" {
		return fmt.Errorf("word must be non-empty")
	}
	if xsampa == "" {
		return fmt.Errorf("word %q: transcription must be non-empty", word)
	}
	_, err := db.Exec(`INSERT INTO pronunciations (word, variant, xsampa)
		VALUES (?, ?, ?)
		ON CONFLICT(word, variant) DO UPDATE SET xsampa = excluded.xsampa`,
		w, variant, xsampa)
	if err != nil {
		return fmt.Errorf("upsert pronunciation for %q: %w", word, err)
	}
	return nil
}

// Lookup returns all stored pronunciations for a word ordered by variant,
// primary first. A missing word yields an empty slice and no error.
func Lookup(db DBExecutor, word string) ([]string, error) {
	rows, err := db.Query(`SELECT xsampa FROM pronunciations WHERE word = ? ORDER BY variant`, Normalize(word))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var x string
		if err := rows.Scan(&x); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// Count reports the number of stored pronunciation rows.
func Count(db DBExecutor) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pronunciations`).Scan(&n)
	return n, err
}
