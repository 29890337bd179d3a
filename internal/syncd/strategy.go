package syncd

import "github.com/pawsync/pawsync/internal/pet"

// ConflictStrategy decides which copy survives when the local and remote
// versions of a record have diverged. The coordinator's control flow never
// inspects the copies itself, so a field-level merge strategy could be
// substituted here without touching it.
type ConflictStrategy interface {
	// Resolve picks the record to keep. local may be nil when the record
	// only exists remotely; remote is never nil.
	Resolve(local, remote *pet.Record) *pet.Record
}

// RemoteWins replaces the local copy wholesale with the remote one. A single
// account drives at most one active session at a time, so the coordinator
// treats the last pulled remote copy as the truth.
type RemoteWins struct{}

func (RemoteWins) Resolve(local, remote *pet.Record) *pet.Record {
	return remote
}
