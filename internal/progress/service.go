// Package progress is the public facade over the pet progress engine. Every
// read settles the record against the current clock first, so callers always
// observe post-reset state; every mutation persists locally and schedules a
// background remote upload through the sync coordinator.
package progress

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pawsync/pawsync/internal/localstore"
	"github.com/pawsync/pawsync/internal/pet"
)

// Syncer is the slice of the sync coordinator the facade needs. A nil Syncer
// leaves the engine fully functional in local-only mode.
type Syncer interface {
	ScheduleUpload(rec *pet.Record)
	ScheduleSettingsUpload(settings *pet.GlobalSettings)
}

type nopSyncer struct{}

func (nopSyncer) ScheduleUpload(*pet.Record)                 {}
func (nopSyncer) ScheduleSettingsUpload(*pet.GlobalSettings) {}

// Service coordinates the pure state machines in pet with the local store
// and the sync coordinator.
type Service struct {
	store  *localstore.Store
	sync   Syncer
	logger *log.Logger
	now    func() time.Time
}

// New creates a facade. sync and logger may be nil.
func New(store *localstore.Store, sync Syncer, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if sync == nil {
		sync = nopSyncer{}
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[progress] ", log.LstdFlags)
	}
	return &Service{
		store:  store,
		sync:   sync,
		logger: logger,
		now:    time.Now,
	}, nil
}

// load fetches the record for petID, creating it lazily on first use, and
// settles it against now. Settlement changes are persisted and synced right
// away so a later pull cannot resurrect the pre-reset state.
func (s *Service) load(petID string, now time.Time) *pet.Record {
	rec := s.store.Get(petID)
	if rec == nil {
		rec = pet.NewRecord(petID, now)
		s.store.Put(rec)
		s.sync.ScheduleUpload(rec)
		return rec
	}
	if pet.Settle(rec, now) {
		s.save(rec, now)
	}
	return rec
}

// save stamps, persists and schedules an upload of rec.
func (s *Service) save(rec *pet.Record, now time.Time) {
	rec.Touch(now)
	s.store.Put(rec)
	s.sync.ScheduleUpload(rec)
}

// Get returns the settled record for petID, creating it on first use.
func (s *Service) Get(petID string) *pet.Record {
	return s.load(petID, s.now())
}

// List returns the settled records for every known pet.
func (s *Service) List() []*pet.Record {
	now := s.now()
	ids := s.store.ListIDs()
	recs := make([]*pet.Record, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, s.load(id, now))
	}
	return recs
}

// Feed records a feeding. Feeding is a care action: it bumps the cycle's
// feed counter, clears post-wake sadness, and advances the daily care streak.
func (s *Service) Feed(petID string) (*pet.Record, error) {
	now := s.now()
	rec := s.load(petID, now)

	rec.Heart.FeedCount++
	rec.Sleep.WillBeSadOnWake = false
	pet.RecordFeed(rec, now)
	if pet.UpdateStreak(rec, now) {
		pet.RecordStreakMilestones(rec)
	}
	s.save(rec, now)
	return rec, nil
}

// AddAdventureCurrency credits currency earned in an adventure of the given
// category. It feeds every downstream system at once: the per-category
// totals, the heart cycle counter, the daily counter, level progression,
// quest completion pinning, lifetime achievements and the care streak.
func (s *Service) AddAdventureCurrency(petID string, c pet.Category, amount int) (*pet.Record, error) {
	if !pet.ValidCategory(c) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	now := s.now()
	rec := s.load(petID, now)

	before := rec.Currency[c]
	rec.Currency[c] += amount
	rec.Heart.AdventureCurrency += amount
	rec.Daily.TodayAmount += amount
	rec.Sleep.WillBeSadOnWake = false

	if pet.ApplyEarnedCurrency(rec, amount, now) {
		s.logger.Printf("Pet %s reached level %d", petID, rec.Level.CurrentLevel)
	}
	pet.PinQuestIfCrossed(rec, c, before, now)
	pet.RecordAdventure(rec, now)
	if pet.UpdateStreak(rec, now) {
		pet.RecordStreakMilestones(rec)
	}
	s.save(rec, now)
	return rec, nil
}

// AddSpentCurrency records currency spent in the shop. The cumulative spend
// counter only ever grows; earned totals and level progression are untouched.
func (s *Service) AddSpentCurrency(petID string, amount int) (*pet.Record, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	now := s.now()
	rec := s.load(petID, now)
	rec.CumulativeCurrencySpent += amount
	s.save(rec, now)
	return rec, nil
}

// PutToSleep starts a nap. A zero duration uses the default.
func (s *Service) PutToSleep(petID string, d time.Duration) (*pet.Record, error) {
	now := s.now()
	rec := s.load(petID, now)

	started, completedHeart := pet.PutToSleep(rec, d, now)
	if !started {
		return nil, ErrAlreadyAsleep
	}
	if completedHeart {
		s.logger.Printf("Pet %s completed the sleep requirement this cycle", petID)
	}
	pet.RecordSleep(rec, now)
	s.save(rec, now)
	return rec, nil
}

// Wake ends a nap early. The pet wakes sad; a care action cheers it up.
func (s *Service) Wake(petID string) (*pet.Record, error) {
	now := s.now()
	rec := s.load(petID, now)

	if !pet.Wake(rec, now) {
		return nil, ErrNotAsleep
	}
	s.save(rec, now)
	return rec, nil
}

// HeartFillPercentage returns the settled heart fill for petID.
func (s *Service) HeartFillPercentage(petID string) int {
	return pet.HeartFillPercent(s.load(petID, s.now()))
}

// LevelInfo describes level progression for display.
type LevelInfo struct {
	Level               int
	TotalEarnedCurrency int
	// CurrencyForNextLevel is the cumulative total at which the next
	// level is reached.
	CurrencyForNextLevel int
}

// LevelInfo returns level progression details for petID.
func (s *Service) LevelInfo(petID string) LevelInfo {
	rec := s.load(petID, s.now())
	return LevelInfo{
		Level:                rec.Level.CurrentLevel,
		TotalEarnedCurrency:  rec.Level.TotalEarnedCurrency,
		CurrencyForNextLevel: pet.CurrencyRequiredFor(rec.Level.CurrentLevel + 1),
	}
}

// SetOwnership marks petID as owned (adopted) or not.
func (s *Service) SetOwnership(petID string, owned bool) *pet.Record {
	now := s.now()
	rec := s.load(petID, now)
	rec.General.IsOwned = owned
	s.save(rec, now)
	return rec
}

// SetName renames the pet.
func (s *Service) SetName(petID, name string) *pet.Record {
	now := s.now()
	rec := s.load(petID, now)
	rec.PetName = name
	s.save(rec, now)
	return rec
}

// SetAudioEnabled toggles per-pet audio.
func (s *Service) SetAudioEnabled(petID string, enabled bool) *pet.Record {
	now := s.now()
	rec := s.load(petID, now)
	rec.General.AudioEnabled = enabled
	s.save(rec, now)
	return rec
}

// SelectPet makes petID the single selected pet. Every other record's
// selection flag is cleared and the global settings pointer follows.
func (s *Service) SelectPet(petID string) *pet.Record {
	now := s.now()
	selected := s.load(petID, now)

	for _, id := range s.store.ListIDs() {
		if id == petID {
			continue
		}
		rec := s.store.Get(id)
		if rec == nil || !rec.General.IsCurrentlySelected {
			continue
		}
		rec.General.IsCurrentlySelected = false
		s.save(rec, now)
	}

	if !selected.General.IsCurrentlySelected {
		selected.General.IsCurrentlySelected = true
		s.save(selected, now)
	}

	settings := s.store.GetSettings()
	if settings.CurrentSelectedPetID != petID {
		settings.CurrentSelectedPetID = petID
		s.touchSettings(settings, now)
	}
	return selected
}

// SetGlobalAudio toggles the account-wide audio preference.
func (s *Service) SetGlobalAudio(enabled bool) *pet.GlobalSettings {
	settings := s.store.GetSettings()
	if settings.GlobalAudioEnabled != enabled {
		settings.GlobalAudioEnabled = enabled
		s.touchSettings(settings, s.now())
	}
	return settings
}

// Settings returns the global settings record.
func (s *Service) Settings() *pet.GlobalSettings {
	return s.store.GetSettings()
}

func (s *Service) touchSettings(settings *pet.GlobalSettings, now time.Time) {
	if !now.After(settings.LastUpdatedAt) {
		now = settings.LastUpdatedAt.Add(time.Millisecond)
	}
	settings.LastUpdatedAt = now
	s.store.PutSettings(settings)
	s.sync.ScheduleSettingsUpload(settings)
}

// UnlockImage adds an image to the pet's unlocked set.
func (s *Service) UnlockImage(petID, imageID string) *pet.Record {
	now := s.now()
	rec := s.load(petID, now)
	if !contains(rec.Customization.UnlockedImages, imageID) {
		rec.Customization.UnlockedImages = append(rec.Customization.UnlockedImages, imageID)
		s.save(rec, now)
	}
	return rec
}

// UnlockAccessory adds an accessory to the pet's unlocked set.
func (s *Service) UnlockAccessory(petID, accessoryID string) *pet.Record {
	now := s.now()
	rec := s.load(petID, now)
	if !contains(rec.Customization.UnlockedAccessories, accessoryID) {
		rec.Customization.UnlockedAccessories = append(rec.Customization.UnlockedAccessories, accessoryID)
		s.save(rec, now)
	}
	return rec
}

// EquipAccessory equips an already-unlocked accessory. An empty id unequips.
func (s *Service) EquipAccessory(petID, accessoryID string) (*pet.Record, error) {
	now := s.now()
	rec := s.load(petID, now)
	if accessoryID != "" && !contains(rec.Customization.UnlockedAccessories, accessoryID) {
		return nil, fmt.Errorf("%w: %q", ErrNotUnlocked, accessoryID)
	}
	rec.Customization.EquippedAccessory = accessoryID
	s.save(rec, now)
	return rec, nil
}

// ResetPet discards all progress for petID and starts over with a fresh
// record. Name and ownership do not survive a reset.
func (s *Service) ResetPet(petID string) *pet.Record {
	now := s.now()
	rec := pet.NewRecord(petID, now)
	s.store.Put(rec)
	s.sync.ScheduleUpload(rec)
	return rec
}

// ResetAll wipes every local record and the global settings.
func (s *Service) ResetAll() {
	s.store.RemoveAll()
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
