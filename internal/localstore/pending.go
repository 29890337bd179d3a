package localstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pawsync/pawsync/internal/pet"
)

// EnqueuePending stores a record snapshot for later upload. At most one
// entry exists per pet id: a newer snapshot replaces an older one in place,
// keeping the original queue position, so the queue cannot grow without
// bound under repeated offline mutations.
func (s *Store) EnqueuePending(rec *pet.Record, queuedAt time.Time) error {
	data, err := pet.Encode(rec)
	if err != nil {
		return fmt.Errorf("failed to encode pending snapshot %s: %w", rec.PetID, err)
	}
	query := `
	INSERT INTO pending_sync (pet_id, doc, queued_at) VALUES (?, ?, ?)
	ON CONFLICT(pet_id) DO UPDATE SET doc = excluded.doc
	`
	_, err = s.conn.Exec(query, rec.PetID, string(data), queuedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to enqueue pending snapshot %s: %w", rec.PetID, err)
	}
	return nil
}

// PendingEntries returns queued snapshots in arrival order.
func (s *Store) PendingEntries() ([]pet.PendingEntry, error) {
	rows, err := s.conn.Query("SELECT doc, queued_at FROM pending_sync ORDER BY queued_at ASC, pet_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query pending queue: %w", err)
	}
	defer rows.Close()

	var entries []pet.PendingEntry
	for rows.Next() {
		var doc, queuedAt string
		if err := rows.Scan(&doc, &queuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending entry: %w", err)
		}
		rec, err := pet.Decode([]byte(doc))
		if err != nil {
			s.logger.Printf("Warning: skipping unreadable pending entry: %v", err)
			continue
		}
		entry := pet.PendingEntry{Record: rec}
		if t, err := time.Parse(time.RFC3339Nano, queuedAt); err == nil {
			entry.QueuedAt = t
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending queue: %w", err)
	}
	return entries, nil
}

// RemovePending drops the queued snapshot for a pet id after a successful
// upload. Removing a missing entry is a no-op.
func (s *Store) RemovePending(petID string) error {
	if _, err := s.conn.Exec("DELETE FROM pending_sync WHERE pet_id = ?", petID); err != nil {
		return fmt.Errorf("failed to remove pending entry %s: %w", petID, err)
	}
	return nil
}

// PendingCount returns the number of queued snapshots.
func (s *Store) PendingCount() (int, error) {
	var n int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM pending_sync").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending queue: %w", err)
	}
	return n, nil
}

func encodeSettings(settings *pet.GlobalSettings) ([]byte, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

func decodeSettings(data []byte) (*pet.GlobalSettings, error) {
	var settings pet.GlobalSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &settings, nil
}
