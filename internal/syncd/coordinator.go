// Package syncd provides the sync coordinator that keeps the local store
// and the remote document store converging.
//
// The coordinator:
//  1. Uploads record snapshots in the background after local writes,
//     queueing them in the persisted pending queue while offline
//  2. Drains the pending queue at start-up and on reconnection
//  3. Periodically pulls the remote record set and reconciles divergent
//     copies into the local store (remote wins, behind ConflictStrategy)
//  4. Suppresses upload scheduling for records it is itself writing during
//     a pull, so a pull never echoes straight back to the remote store
package syncd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawsync/pawsync/internal/collab"
	"github.com/pawsync/pawsync/internal/localstore"
	"github.com/pawsync/pawsync/internal/pet"
	"github.com/pawsync/pawsync/internal/remote"
)

// RemoteStore is the slice of the remote client the coordinator needs.
type RemoteStore interface {
	FetchPet(ctx context.Context, accountID, petID string) (*remote.Doc, error)
	FetchAll(ctx context.Context, accountID string) ([]*remote.Doc, error)
	UpsertPet(ctx context.Context, accountID string, doc *remote.Doc, sessionID string) error
	FetchSettings(ctx context.Context, accountID string) (*remote.SettingsDoc, error)
	UpsertSettings(ctx context.Context, accountID string, doc *remote.SettingsDoc, sessionID string) error
}

// Config holds coordinator tuning knobs.
type Config struct {
	// PullInterval is how often the periodic reconcile runs.
	PullInterval time.Duration

	// WatchDebounce batches local database file events before triggering a
	// reconcile, and is the minimum gap between watcher-triggered pulls.
	WatchDebounce time.Duration

	// Strategy resolves divergent copies. Defaults to RemoteWins.
	Strategy ConflictStrategy

	// Logger for coordinator activity.
	Logger *log.Logger

	// Now is the clock; it defaults to time.Now and is injectable for tests.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PullInterval:  5 * time.Minute,
		WatchDebounce: 30 * time.Second,
		Strategy:      RemoteWins{},
		Logger:        log.New(os.Stderr, "[syncd] ", log.LstdFlags),
		Now:           time.Now,
	}
}

// Coordinator orchestrates reads and writes between the local store and the
// remote document store. Its reentrancy and online flags are instance
// fields, not globals, so coordinators under test do not interfere.
type Coordinator struct {
	store   *localstore.Store
	remote  RemoteStore
	account collab.AccountProvider
	conn    collab.Connectivity
	config  *Config

	// sessionID identifies this coordinator instance on remote writes.
	sessionID string

	guardMu          sync.Mutex
	pullWrites       map[string]bool
	settingsPullOpen bool

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	uploads sync.WaitGroup
}

// New creates a coordinator. Use Start to begin background syncing;
// ScheduleUpload works without Start for one-shot commands.
func New(store *localstore.Store, remoteStore RemoteStore, account collab.AccountProvider, conn collab.Connectivity, config *Config) (*Coordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if remoteStore == nil {
		return nil, fmt.Errorf("remote store cannot be nil")
	}
	if account == nil {
		account = collab.StaticAccount("")
	}
	if conn == nil {
		conn = collab.AlwaysOnline{}
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Strategy == nil {
		config.Strategy = RemoteWins{}
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[syncd] ", log.LstdFlags)
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		store:      store,
		remote:     remoteStore,
		account:    account,
		conn:       conn,
		config:     config,
		sessionID:  uuid.NewString(),
		pullWrites: make(map[string]bool),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start runs the coordinator until ctx is cancelled: an initial pending
// flush and reconcile, then the periodic pull loop, the connectivity
// listener, and the local database watcher.
func (c *Coordinator) Start(ctx context.Context) error {
	c.config.Logger.Println("Starting sync coordinator")

	if err := c.FlushPending(c.ctx); err != nil {
		c.config.Logger.Printf("Start-up flush incomplete: %v", err)
	}
	if err := c.Reconcile(c.ctx); err != nil {
		c.config.Logger.Printf("Start-up reconcile failed: %v", err)
	}

	c.wg.Add(2)
	go c.pullLoop()
	go c.connectivityLoop()

	if err := c.watchLocalDB(); err != nil {
		c.config.Logger.Printf("Local database watcher disabled: %v", err)
	}

	select {
	case <-ctx.Done():
		c.config.Logger.Println("Shutdown signal received")
		return c.Stop()
	case <-c.ctx.Done():
		return nil
	}
}

// Stop shuts down background work and waits for in-flight uploads.
func (c *Coordinator) Stop() error {
	c.config.Logger.Println("Stopping sync coordinator")
	// Let in-flight uploads finish before the context is cancelled; failed
	// ones land in the pending queue either way.
	c.uploads.Wait()
	c.cancel()
	c.wg.Wait()
	c.config.Logger.Println("Sync coordinator stopped")
	return nil
}

// ScheduleUpload queues a background remote upsert of the record. The
// snapshot is taken at schedule time; the caller keeps mutating its copy.
// Calls for records currently being written by a pull are suppressed so a
// pull never triggers its own re-upload.
func (c *Coordinator) ScheduleUpload(rec *pet.Record) {
	if c.isPullWrite(rec.PetID) {
		return
	}
	snapshot := rec.Clone()
	c.uploads.Add(1)
	go func() {
		defer c.uploads.Done()
		c.upload(snapshot)
	}()
}

func (c *Coordinator) upload(snapshot *pet.Record) {
	accountID := c.account.CurrentAccountID()
	if accountID == "" {
		return // signed out: local-only mode
	}

	if !c.conn.IsOnline() {
		c.enqueue(snapshot)
		return
	}

	err := c.remote.UpsertPet(c.ctx, accountID, remote.ToDoc(snapshot), c.sessionID)
	if err != nil {
		c.config.Logger.Printf("Upload of %s failed, queueing: %v", snapshot.PetID, err)
		c.enqueue(snapshot)
		return
	}
	// A fresh upload supersedes any older queued snapshot for this pet.
	if err := c.store.RemovePending(snapshot.PetID); err != nil {
		c.config.Logger.Printf("Warning: %v", err)
	}
}

func (c *Coordinator) enqueue(snapshot *pet.Record) {
	if err := c.store.EnqueuePending(snapshot, c.config.Now()); err != nil {
		c.config.Logger.Printf("Warning: failed to queue snapshot of %s: %v", snapshot.PetID, err)
	}
}

// ScheduleSettingsUpload queues a background upsert of global settings.
func (c *Coordinator) ScheduleSettingsUpload(settings *pet.GlobalSettings) {
	if c.isSettingsPullWrite() {
		return
	}
	snapshot := *settings
	c.uploads.Add(1)
	go func() {
		defer c.uploads.Done()
		accountID := c.account.CurrentAccountID()
		if accountID == "" || !c.conn.IsOnline() {
			return
		}
		if err := c.remote.UpsertSettings(c.ctx, accountID, remote.ToSettingsDoc(&snapshot), c.sessionID); err != nil {
			c.config.Logger.Printf("Settings upload failed: %v", err)
		}
	}()
}

// FlushPending drains the pending queue in arrival order. Entries are
// removed on success; failed entries stay queued for the next attempt.
func (c *Coordinator) FlushPending(ctx context.Context) error {
	accountID := c.account.CurrentAccountID()
	if accountID == "" {
		return nil
	}

	entries, err := c.store.PendingEntries()
	if err != nil {
		return fmt.Errorf("failed to read pending queue: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	c.config.Logger.Printf("Flushing %d pending snapshot(s)", len(entries))
	for _, entry := range entries {
		err := c.remote.UpsertPet(ctx, accountID, remote.ToDoc(entry.Record), c.sessionID)
		if errors.Is(err, remote.ErrUnavailable) {
			// Still offline; the rest of the queue waits too.
			return fmt.Errorf("flush interrupted: %w", err)
		}
		if err != nil {
			c.config.Logger.Printf("Warning: pending upload of %s rejected, keeping queued: %v", entry.Record.PetID, err)
			continue
		}
		if err := c.store.RemovePending(entry.Record.PetID); err != nil {
			c.config.Logger.Printf("Warning: %v", err)
		}
	}
	return nil
}

// Reconcile pulls the authoritative remote record set, unions it with the
// locally known ids, and replaces local copies whose fingerprint diverged
// from the remote one. Remote errors leave the local copy untouched. A
// record that exists only locally is scheduled for upload (first-device
// bootstrap); a record that exists only remotely is adopted.
//
// Reconcile is idempotent, so overlapping runs are tolerated.
func (c *Coordinator) Reconcile(ctx context.Context) error {
	accountID := c.account.CurrentAccountID()
	if accountID == "" {
		return nil
	}

	docs, err := c.remote.FetchAll(ctx, accountID)
	if err != nil && !errors.Is(err, remote.ErrNotFound) {
		return fmt.Errorf("failed to fetch remote records: %w", err)
	}

	byID := make(map[string]*remote.Doc, len(docs))
	for _, doc := range docs {
		byID[doc.PetID] = doc
	}
	ids := make(map[string]bool, len(byID))
	for id := range byID {
		ids[id] = true
	}
	for _, id := range c.store.ListIDs() {
		ids[id] = true
	}

	for id := range ids {
		local := c.store.Get(id)
		doc, ok := byID[id]
		if !ok {
			// No remote copy yet; local is authoritative, push it up.
			if local != nil {
				c.ScheduleUpload(local)
			}
			continue
		}
		merged := doc.Record(local)
		if local != nil && Fingerprint(local) == Fingerprint(merged) {
			continue
		}
		resolved := c.config.Strategy.Resolve(local, merged)
		c.beginPullWrite(id)
		c.store.Put(resolved)
		c.endPullWrite(id)
	}

	c.reconcileSettings(ctx, accountID)
	return nil
}

func (c *Coordinator) reconcileSettings(ctx context.Context, accountID string) {
	local := c.store.GetSettings()

	doc, err := c.remote.FetchSettings(ctx, accountID)
	if errors.Is(err, remote.ErrNotFound) {
		if !local.LastUpdatedAt.IsZero() {
			c.ScheduleSettingsUpload(local)
		}
		return
	}
	if err != nil {
		c.config.Logger.Printf("Settings pull failed, keeping local copy: %v", err)
		return
	}

	remoteSettings := doc.Settings()
	switch {
	case remoteSettings.LastUpdatedAt.After(local.LastUpdatedAt):
		c.beginSettingsPullWrite()
		c.store.PutSettings(remoteSettings)
		c.endSettingsPullWrite()
	case local.LastUpdatedAt.After(remoteSettings.LastUpdatedAt):
		c.ScheduleSettingsUpload(local)
	}
}

func (c *Coordinator) pullLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := c.Reconcile(c.ctx); err != nil {
				c.config.Logger.Printf("Periodic reconcile failed: %v", err)
			}
		}
	}
}

// connectivityLoop reacts to online transitions with a flush and a pull.
func (c *Coordinator) connectivityLoop() {
	defer c.wg.Done()

	events := c.conn.Events()
	if events == nil {
		return
	}
	for {
		select {
		case <-c.ctx.Done():
			return
		case online, ok := <-events:
			if !ok {
				return
			}
			if !online {
				c.config.Logger.Println("Offline; mutations will queue")
				continue
			}
			c.config.Logger.Println("Back online; flushing and reconciling")
			if err := c.FlushPending(c.ctx); err != nil {
				c.config.Logger.Printf("Reconnect flush incomplete: %v", err)
			}
			if err := c.Reconcile(c.ctx); err != nil {
				c.config.Logger.Printf("Reconnect reconcile failed: %v", err)
			}
		}
	}
}

// reentrancy guard

func (c *Coordinator) beginPullWrite(petID string) {
	c.guardMu.Lock()
	c.pullWrites[petID] = true
	c.guardMu.Unlock()
}

func (c *Coordinator) endPullWrite(petID string) {
	c.guardMu.Lock()
	delete(c.pullWrites, petID)
	c.guardMu.Unlock()
}

func (c *Coordinator) isPullWrite(petID string) bool {
	c.guardMu.Lock()
	defer c.guardMu.Unlock()
	return c.pullWrites[petID]
}

func (c *Coordinator) beginSettingsPullWrite() {
	c.guardMu.Lock()
	c.settingsPullOpen = true
	c.guardMu.Unlock()
}

func (c *Coordinator) endSettingsPullWrite() {
	c.guardMu.Lock()
	c.settingsPullOpen = false
	c.guardMu.Unlock()
}

func (c *Coordinator) isSettingsPullWrite() bool {
	c.guardMu.Lock()
	defer c.guardMu.Unlock()
	return c.settingsPullOpen
}
