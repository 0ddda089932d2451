// Package sqlite persists the board registry in an embedded SQLite
// database. Schema: boards, boardvars, forums, forumvars. Threads and
// posts are transient and never stored.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/zethon/Owl-sub001/internal/crypto"
	"github.com/zethon/Owl-sub001/internal/errors"
)

type Store struct {
	db *sql.DB
	// cipher seals credentials before they hit a row; nil stores them
	// as-is for setups that keep the database itself encrypted.
	cipher *crypto.CredentialCipher
}

// New opens or creates the database at path. Use ":memory:" for an
// ephemeral store.
func New(path string, cipher *crypto.CredentialCipher) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from silently forking per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, cipher: cipher}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS boards (
		boardid INTEGER PRIMARY KEY AUTOINCREMENT,
		enabled INTEGER NOT NULL DEFAULT 1,
		autologin INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		parser TEXT NOT NULL,
		serviceUrl TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		lastupdate DATETIME,
		uuid TEXT NOT NULL UNIQUE
	);
	CREATE TABLE IF NOT EXISTS boardvars (
		boardvarid INTEGER PRIMARY KEY AUTOINCREMENT,
		boardid INTEGER NOT NULL REFERENCES boards(boardid) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS forums (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		boardId INTEGER NOT NULL REFERENCES boards(boardid) ON DELETE CASCADE,
		forumId TEXT NOT NULL,
		parentId TEXT NOT NULL,
		forumName TEXT NOT NULL,
		forumType TEXT NOT NULL,
		forumOrder INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS forumvars (
		forumvarid INTEGER PRIMARY KEY AUTOINCREMENT,
		forumsid INTEGER NOT NULL REFERENCES forums(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_boardvars_boardid ON boardvars(boardid);
	CREATE INDEX IF NOT EXISTS idx_forums_boardid ON forums(boardId);
	CREATE INDEX IF NOT EXISTS idx_forumvars_forumsid ON forumvars(forumsid);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) sealPassword(plaintext string) (string, error) {
	if s.cipher == nil || plaintext == "" {
		return plaintext, nil
	}
	return s.cipher.Encrypt(plaintext)
}

func (s *Store) openPassword(stored string) (string, error) {
	if s.cipher == nil || stored == "" {
		return stored, nil
	}
	return s.cipher.Decrypt(stored)
}

func storageErr(msg, query string, err error) error {
	return &errors.StorageError{Message: msg, Query: query, Err: err}
}
