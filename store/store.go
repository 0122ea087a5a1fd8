// store.go - Persistenter Gespraechsverlauf fuer den interaktiven Chat
// Enthaelt: Store, Open, Close, Schema-Initialisierung
//
// Nachrichten werden nur angehaengt. /clear verschiebt lediglich eine Marke
// am Chat; aeltere Nachrichten bleiben in der Datenbank erhalten.

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren
)

// currentSchemaVersion wird bei Schema-Aenderungen erhoeht
const currentSchemaVersion = 1

// Store umhuellt die SQLite-Verbindung.
// SQLite verwaltet sein eigenes Locking; im WAL-Modus blockieren Leser den
// Schreiber nicht. Application-Level-Locks sind nicht noetig.
type Store struct {
	conn *sql.DB
}

// Open oeffnet (oder erstellt) die Datenbank unter path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return s, nil
}

// Close schliesst die Datenbankverbindung
func (s *Store) Close() error {
	_, _ = s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return s.conn.Close()
}

func (s *Store) init() error {
	var version int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		template TEXT NOT NULL DEFAULT '',
		cleared_after INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (chat_id) REFERENCES chats(id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id);

	CREATE TRIGGER IF NOT EXISTS messages_no_update BEFORE UPDATE ON messages
	BEGIN
		SELECT RAISE(ABORT, 'messages are append-only');
	END;

	CREATE TRIGGER IF NOT EXISTS messages_no_delete BEFORE DELETE ON messages
	BEGIN
		SELECT RAISE(ABORT, 'messages are append-only');
	END;

	PRAGMA user_version = %d;
	`, currentSchemaVersion)

	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}

	return nil
}
