package progress

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pawsync/pawsync/internal/localstore"
	"github.com/pawsync/pawsync/internal/pet"
)

var testEpoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// recordingSyncer counts what the facade hands to the sync coordinator.
type recordingSyncer struct {
	uploads         []*pet.Record
	settingsUploads []*pet.GlobalSettings
}

func (r *recordingSyncer) ScheduleUpload(rec *pet.Record) {
	r.uploads = append(r.uploads, rec.Clone())
}

func (r *recordingSyncer) ScheduleSettingsUpload(s *pet.GlobalSettings) {
	cp := *s
	r.settingsUploads = append(r.settingsUploads, &cp)
}

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time          { return c.current }
func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func setupTestService(t *testing.T) (*Service, *localstore.Store, *recordingSyncer, *testClock) {
	t.Helper()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "pawsync.db"), log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	syncer := &recordingSyncer{}
	svc, err := New(store, syncer, log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	clock := &testClock{current: testEpoch}
	svc.now = clock.now
	return svc, store, syncer, clock
}

func TestGet_CreatesRecordLazily(t *testing.T) {
	svc, store, syncer, _ := setupTestService(t)

	rec := svc.Get("dog")
	if rec == nil || rec.PetID != "dog" {
		t.Fatalf("expected a fresh record, got %+v", rec)
	}
	if rec.Level.CurrentLevel != 1 || !rec.General.AudioEnabled {
		t.Errorf("fresh record defaults wrong: %+v", rec)
	}
	if store.Get("dog") == nil {
		t.Error("lazily created record must be persisted")
	}
	if len(syncer.uploads) != 1 {
		t.Errorf("creation should schedule one upload, got %d", len(syncer.uploads))
	}
}

func TestGet_SettlesExpiredStateAndPersists(t *testing.T) {
	svc, store, _, clock := setupTestService(t)

	if _, err := svc.Feed("dog"); err != nil {
		t.Fatal(err)
	}
	clock.advance(pet.ResetPeriod + time.Minute)

	rec := svc.Get("dog")
	if rec.Heart.FeedCount != 0 {
		t.Errorf("expired cycle must be reset on read, feedCount = %d", rec.Heart.FeedCount)
	}
	// The settled state was written back, not just returned.
	if store.Get("dog").Heart.FeedCount != 0 {
		t.Error("settled state must be persisted")
	}
}

func TestFeed_AdvancesCountersAndClearsSadness(t *testing.T) {
	svc, _, _, clock := setupTestService(t)

	if _, err := svc.PutToSleep("dog", time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Wake("dog"); err != nil {
		t.Fatal(err)
	}
	rec := svc.Get("dog")
	if !rec.Sleep.WillBeSadOnWake {
		t.Fatal("manual wake must leave the pet sad")
	}

	clock.advance(time.Minute)
	rec, err := svc.Feed("dog")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Heart.FeedCount != 1 {
		t.Errorf("feedCount = %d, want 1", rec.Heart.FeedCount)
	}
	if rec.Sleep.WillBeSadOnWake {
		t.Error("feeding is a care action and must cheer the pet up")
	}
	if rec.Achievements.LifetimeFeeds != 1 || rec.Achievements.FirstFeedAt == nil {
		t.Errorf("lifetime feed bookkeeping missing: %+v", rec.Achievements)
	}
	if rec.Evolution.Streak != 1 {
		t.Errorf("first care action should start the streak, got %d", rec.Evolution.Streak)
	}
}

func TestAddAdventureCurrency_FeedsEverySystem(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	rec, err := svc.AddAdventureCurrency("dog", pet.CategoryHouse, 60)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Currency[pet.CategoryHouse] != 60 {
		t.Errorf("category total = %d, want 60", rec.Currency[pet.CategoryHouse])
	}
	if rec.Heart.AdventureCurrency != 60 {
		t.Errorf("cycle counter = %d, want 60", rec.Heart.AdventureCurrency)
	}
	if rec.Daily.TodayAmount != 60 {
		t.Errorf("daily counter = %d, want 60", rec.Daily.TodayAmount)
	}
	if rec.Level.TotalEarnedCurrency != 60 {
		t.Errorf("earned total = %d, want 60", rec.Level.TotalEarnedCurrency)
	}
	// 60 crosses the quest threshold for house, so the pointer pins there.
	if rec.Quest.CurrentCategory != pet.CategoryHouse || rec.Quest.PinnedUntil.IsZero() {
		t.Errorf("crossing the threshold must pin the quest: %+v", rec.Quest)
	}
	if rec.Achievements.LifetimeAdventures != 1 {
		t.Errorf("lifetime adventures = %d, want 1", rec.Achievements.LifetimeAdventures)
	}
	if rec.Evolution.Streak != 1 {
		t.Errorf("adventure is a care action, streak = %d", rec.Evolution.Streak)
	}
}

func TestAddAdventureCurrency_LevelUp(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	rec, err := svc.AddAdventureCurrency("dog", pet.CategoryFood, 100)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Level.CurrentLevel != 2 {
		t.Errorf("level = %d, want 2 at 100 earned", rec.Level.CurrentLevel)
	}
	if rec.Level.PreviousLevel != 1 || rec.Level.LevelUpAt.IsZero() {
		t.Errorf("level-up bookkeeping missing: %+v", rec.Level)
	}

	info := svc.LevelInfo("dog")
	if info.Level != 2 || info.CurrencyForNextLevel != 300 {
		t.Errorf("LevelInfo = %+v, want level 2 next at 300", info)
	}
}

func TestAddAdventureCurrency_Validation(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	if _, err := svc.AddAdventureCurrency("dog", "bogus", 10); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("unknown category error = %v", err)
	}
	if _, err := svc.AddAdventureCurrency("dog", pet.CategoryFood, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount error = %v", err)
	}
	if _, err := svc.AddAdventureCurrency("dog", pet.CategoryFood, -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount error = %v", err)
	}
}

func TestAddSpentCurrency_OnlyGrows(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	if _, err := svc.AddSpentCurrency("dog", 30); err != nil {
		t.Fatal(err)
	}
	rec, err := svc.AddSpentCurrency("dog", 20)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CumulativeCurrencySpent != 50 {
		t.Errorf("cumulative spend = %d, want 50", rec.CumulativeCurrencySpent)
	}
	if rec.Level.TotalEarnedCurrency != 0 {
		t.Error("spending must not affect earned totals")
	}
	if _, err := svc.AddSpentCurrency("dog", -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative spend error = %v", err)
	}
}

func TestSleepLifecycle(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	rec, err := svc.PutToSleep("dog", 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Sleep.IsAsleep || rec.Sleep.SleepCycles != 1 {
		t.Errorf("sleep state wrong: %+v", rec.Sleep)
	}
	if rec.Achievements.LifetimeSleeps != 1 {
		t.Errorf("lifetime sleeps = %d, want 1", rec.Achievements.LifetimeSleeps)
	}

	if _, err := svc.PutToSleep("dog", time.Hour); !errors.Is(err, ErrAlreadyAsleep) {
		t.Errorf("double sleep error = %v", err)
	}

	rec, err = svc.Wake("dog")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Sleep.IsAsleep || !rec.Sleep.WillBeSadOnWake {
		t.Errorf("wake state wrong: %+v", rec.Sleep)
	}
	if _, err := svc.Wake("dog"); !errors.Is(err, ErrNotAsleep) {
		t.Errorf("double wake error = %v", err)
	}
}

func TestHeartFillPercentage(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	if got := svc.HeartFillPercentage("dog"); got != 0 {
		t.Errorf("fresh pet fill = %d, want 0", got)
	}
	svc.Feed("dog")
	svc.Feed("dog")
	if got := svc.HeartFillPercentage("dog"); got != 40 {
		t.Errorf("two feeds fill = %d, want 40", got)
	}
	svc.AddAdventureCurrency("dog", pet.CategoryTravel, 100)
	if got := svc.HeartFillPercentage("dog"); got != 90 {
		t.Errorf("two feeds + 100 currency fill = %d, want 90", got)
	}
}

func TestSelectPet_SingleSelection(t *testing.T) {
	svc, store, syncer, _ := setupTestService(t)

	svc.SelectPet("dog")
	svc.SelectPet("cat")

	if store.Get("dog").General.IsCurrentlySelected {
		t.Error("previous selection must be cleared")
	}
	if !store.Get("cat").General.IsCurrentlySelected {
		t.Error("new selection must be set")
	}
	settings := store.GetSettings()
	if settings.CurrentSelectedPetID != "cat" {
		t.Errorf("settings pointer = %q, want cat", settings.CurrentSelectedPetID)
	}
	if len(syncer.settingsUploads) != 2 {
		t.Errorf("each selection change should sync settings, got %d", len(syncer.settingsUploads))
	}
}

func TestSelectPet_RepeatIsIdempotent(t *testing.T) {
	svc, _, syncer, _ := setupTestService(t)

	svc.SelectPet("dog")
	before := len(syncer.settingsUploads)
	svc.SelectPet("dog")
	if len(syncer.settingsUploads) != before {
		t.Error("re-selecting the same pet must not re-sync settings")
	}
}

func TestSetGlobalAudio(t *testing.T) {
	svc, store, syncer, _ := setupTestService(t)

	svc.SetGlobalAudio(false)
	if store.GetSettings().GlobalAudioEnabled {
		t.Error("global audio should be off")
	}
	if len(syncer.settingsUploads) != 1 {
		t.Errorf("toggle should sync once, got %d", len(syncer.settingsUploads))
	}
	svc.SetGlobalAudio(false)
	if len(syncer.settingsUploads) != 1 {
		t.Error("no-op toggle must not re-sync")
	}
}

func TestOwnershipNameAudio(t *testing.T) {
	svc, store, _, _ := setupTestService(t)

	svc.SetOwnership("dog", true)
	svc.SetName("dog", "Rex")
	svc.SetAudioEnabled("dog", false)

	rec := store.Get("dog")
	if !rec.General.IsOwned || rec.PetName != "Rex" || rec.General.AudioEnabled {
		t.Errorf("adoption state wrong: %+v general %+v", rec.PetName, rec.General)
	}
}

func TestCustomization(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	if _, err := svc.EquipAccessory("dog", "hat"); !errors.Is(err, ErrNotUnlocked) {
		t.Fatalf("equipping a locked accessory must fail, got %v", err)
	}

	svc.UnlockAccessory("dog", "hat")
	svc.UnlockAccessory("dog", "hat") // no duplicate
	rec, err := svc.EquipAccessory("dog", "hat")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Customization.EquippedAccessory != "hat" {
		t.Errorf("equipped = %q, want hat", rec.Customization.EquippedAccessory)
	}
	if len(rec.Customization.UnlockedAccessories) != 1 {
		t.Errorf("unlock must deduplicate, got %v", rec.Customization.UnlockedAccessories)
	}

	rec, err = svc.EquipAccessory("dog", "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Customization.EquippedAccessory != "" {
		t.Error("empty id should unequip")
	}

	svc.UnlockImage("dog", "beach")
	if got := svc.Get("dog").Customization.UnlockedImages; len(got) != 1 || got[0] != "beach" {
		t.Errorf("unlocked images = %v", got)
	}
}

func TestResetPet_StartsOver(t *testing.T) {
	svc, store, _, _ := setupTestService(t)

	svc.SetName("dog", "Rex")
	svc.AddAdventureCurrency("dog", pet.CategoryFood, 200)

	rec := svc.ResetPet("dog")
	if rec.PetName != "" || rec.Level.TotalEarnedCurrency != 0 || rec.Level.CurrentLevel != 1 {
		t.Errorf("reset record not fresh: %+v", rec)
	}
	if store.Get("dog").Level.TotalEarnedCurrency != 0 {
		t.Error("reset must be persisted")
	}
}

func TestResetAll_WipesEverything(t *testing.T) {
	svc, store, _, _ := setupTestService(t)

	svc.Feed("dog")
	svc.Feed("cat")
	svc.SelectPet("dog")

	svc.ResetAll()
	if ids := store.ListIDs(); len(ids) != 0 {
		t.Errorf("records should be gone, got %v", ids)
	}
	if store.GetSettings().CurrentSelectedPetID != "" {
		t.Error("settings should be back to defaults")
	}
}

func TestLastUpdatedAt_StrictlyIncreasing(t *testing.T) {
	svc, _, _, _ := setupTestService(t)

	// The clock is frozen; the tie-breaker must still move forward.
	a, _ := svc.Feed("dog")
	first := a.General.LastUpdatedAt
	b, _ := svc.Feed("dog")
	if !b.General.LastUpdatedAt.After(first) {
		t.Errorf("lastUpdatedAt must be strictly increasing: %v then %v", first, b.General.LastUpdatedAt)
	}
}

func TestMutationsScheduleUploads(t *testing.T) {
	svc, _, syncer, _ := setupTestService(t)

	svc.Feed("dog")
	n := len(syncer.uploads)
	if n < 2 { // creation + feed
		t.Fatalf("expected creation and mutation uploads, got %d", n)
	}
	last := syncer.uploads[n-1]
	if last.Heart.FeedCount != 1 {
		t.Errorf("uploaded snapshot should carry the mutation, feedCount = %d", last.Heart.FeedCount)
	}
}
