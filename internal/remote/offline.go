package remote

import "context"

// Offline is a stand-in client used when the remote store cannot be reached
// at start-up. Every call reports ErrUnavailable, which routes mutations
// into the persisted pending queue for a later session to flush.
type Offline struct{}

func (Offline) FetchPet(context.Context, string, string) (*Doc, error) {
	return nil, ErrUnavailable
}

func (Offline) FetchAll(context.Context, string) ([]*Doc, error) {
	return nil, ErrUnavailable
}

func (Offline) UpsertPet(context.Context, string, *Doc, string) error {
	return ErrUnavailable
}

func (Offline) FetchSettings(context.Context, string) (*SettingsDoc, error) {
	return nil, ErrUnavailable
}

func (Offline) UpsertSettings(context.Context, string, *SettingsDoc, string) error {
	return ErrUnavailable
}
