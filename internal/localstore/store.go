// Package localstore provides the synchronous durable local cache for pet
// records. It is the single source of truth for synchronous reads; the
// remote document store is the eventual source of truth across devices.
//
// The store runs on embedded SQLite with WAL mode so a second process on the
// same machine (another session) can read concurrently. One JSON blob row is
// kept per pet id, one row for global settings, and one table for the
// pending-sync queue used while the remote store is unreachable.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pawsync/pawsync/internal/pet"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ChangeKind distinguishes change notification payloads.
type ChangeKind string

const (
	// ChangeRecord means a pet record was written or removed. Record is nil
	// on removal.
	ChangeRecord ChangeKind = "record"
	// ChangeSettings means the global settings were written.
	ChangeSettings ChangeKind = "settings"
)

// ChangeEvent is delivered to subscribers after a successful write.
type ChangeEvent struct {
	Kind     ChangeKind
	PetID    string
	Record   *pet.Record
	Settings *pet.GlobalSettings
}

// Store is the local persistence layer. All operations are synchronous.
type Store struct {
	conn   *sql.DB
	path   string
	logger *log.Logger

	subMu sync.Mutex
	subs  []chan ChangeEvent
}

// Open creates a store at the given path, creating the database and schema
// if needed. The caller must Close it.
//
// If logger is nil, a default logger writing to stderr is used.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[localstore] ", log.LstdFlags)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path, logger: logger}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pets (
		pet_id     TEXT PRIMARY KEY,
		doc        TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id  INTEGER PRIMARY KEY CHECK (id = 1),
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pending_sync (
		pet_id    TEXT PRIMARY KEY,
		doc       TEXT NOT NULL,
		queued_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pending_queued ON pending_sync(queued_at);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Path returns the database file path. The sync coordinator watches it for
// writes from other processes.
func (s *Store) Path() string {
	return s.path
}

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Printf("Warning: failed to checkpoint WAL: %v", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	s.conn = nil
	return nil
}

// Get returns the stored record for petID, or nil if none exists. Old blob
// formats are upgraded to the current shape at read time. A corrupt blob is
// logged and treated as missing; gameplay must not halt on storage damage.
func (s *Store) Get(petID string) *pet.Record {
	var doc string
	err := s.conn.QueryRow("SELECT doc FROM pets WHERE pet_id = ?", petID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logger.Printf("Warning: failed to read record %s: %v", petID, err)
		return nil
	}
	rec, err := pet.Decode([]byte(doc))
	if err != nil {
		s.logger.Printf("Warning: discarding unreadable record %s: %v", petID, err)
		return nil
	}
	return rec
}

// Put writes a record and notifies subscribers. Serialization or storage
// failures are logged and swallowed: callers proceed with their in-memory
// copy and must tolerate that the write silently did not happen.
func (s *Store) Put(rec *pet.Record) {
	data, err := pet.Encode(rec)
	if err != nil {
		s.logger.Printf("Warning: failed to encode record %s: %v", rec.PetID, err)
		return
	}
	query := `
	INSERT INTO pets (pet_id, doc, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(pet_id) DO UPDATE SET
		doc = excluded.doc,
		updated_at = excluded.updated_at
	`
	_, err = s.conn.Exec(query, rec.PetID, string(data), rec.General.LastUpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Printf("Warning: failed to write record %s: %v", rec.PetID, err)
		return
	}
	s.publish(ChangeEvent{Kind: ChangeRecord, PetID: rec.PetID, Record: rec.Clone()})
}

// Remove deletes the local copy of one record. Remote deletion is out of
// scope; this is the "reset pet" operation.
func (s *Store) Remove(petID string) {
	if _, err := s.conn.Exec("DELETE FROM pets WHERE pet_id = ?", petID); err != nil {
		s.logger.Printf("Warning: failed to remove record %s: %v", petID, err)
		return
	}
	if _, err := s.conn.Exec("DELETE FROM pending_sync WHERE pet_id = ?", petID); err != nil {
		s.logger.Printf("Warning: failed to drop pending entry %s: %v", petID, err)
	}
	s.publish(ChangeEvent{Kind: ChangeRecord, PetID: petID})
}

// ListIDs returns the locally known pet ids.
func (s *Store) ListIDs() []string {
	rows, err := s.conn.Query("SELECT pet_id FROM pets ORDER BY pet_id")
	if err != nil {
		s.logger.Printf("Warning: failed to list records: %v", err)
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Printf("Warning: failed to scan record id: %v", err)
			return ids
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		s.logger.Printf("Warning: error iterating record ids: %v", err)
	}
	return ids
}

// GetSettings returns the global settings, or defaults if none are stored.
func (s *Store) GetSettings() *pet.GlobalSettings {
	var doc string
	err := s.conn.QueryRow("SELECT doc FROM settings WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return &pet.GlobalSettings{GlobalAudioEnabled: true}
	}
	if err != nil {
		s.logger.Printf("Warning: failed to read settings: %v", err)
		return &pet.GlobalSettings{GlobalAudioEnabled: true}
	}
	settings, err := decodeSettings([]byte(doc))
	if err != nil {
		s.logger.Printf("Warning: discarding unreadable settings: %v", err)
		return &pet.GlobalSettings{GlobalAudioEnabled: true}
	}
	return settings
}

// PutSettings writes the global settings and notifies subscribers.
func (s *Store) PutSettings(settings *pet.GlobalSettings) {
	data, err := encodeSettings(settings)
	if err != nil {
		s.logger.Printf("Warning: failed to encode settings: %v", err)
		return
	}
	query := `
	INSERT INTO settings (id, doc) VALUES (1, ?)
	ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`
	if _, err := s.conn.Exec(query, string(data)); err != nil {
		s.logger.Printf("Warning: failed to write settings: %v", err)
		return
	}
	cp := *settings
	s.publish(ChangeEvent{Kind: ChangeSettings, Settings: &cp})
}

// RemoveAll wipes every record, the settings, and the pending queue.
func (s *Store) RemoveAll() {
	for _, table := range []string{"pets", "settings", "pending_sync"} {
		if _, err := s.conn.Exec("DELETE FROM " + table); err != nil {
			s.logger.Printf("Warning: failed to clear %s: %v", table, err)
		}
	}
}

// Subscribe returns a channel that receives change events for every
// successful write. Events are dropped, not blocked on, when the subscriber
// falls behind; consumers needing a consistent view should re-read the
// store. Call Unsubscribe when done.
func (s *Store) Subscribe() <-chan ChangeEvent {
	ch := make(chan ChangeEvent, 64)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel and closes it.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

func (s *Store) publish(ev ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- ev:
		default:
			s.logger.Printf("Warning: dropping change event for slow subscriber")
		}
	}
}
