package remote

import "errors"

var (
	// ErrUnavailable means the remote store could not be reached (offline,
	// connection lost, timeout). Writers queue and retry on reconnect.
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrRejected means the remote store refused the operation (validation
	// or auth failure). Not fatal; entries stay on the normal retry path.
	ErrRejected = errors.New("remote store rejected request")

	// ErrNotFound means no remote copy exists yet. Not an error condition
	// for callers: the local copy is authoritative until one does.
	ErrNotFound = errors.New("remote record not found")
)
