package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsync/pawsync/internal/pet"
)

var testEpoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fullRecord(t *testing.T) *pet.Record {
	t.Helper()

	r := pet.NewRecord("dog", testEpoch)
	r.PetName = "Rex"
	r.CumulativeCurrencySpent = 240
	r.Heart.FeedCount = 2
	r.Heart.AdventureCurrency = 75
	r.Heart.SleepCompleted = true
	r.Currency[pet.CategoryHouse] = 55
	r.Currency[pet.CategoryFood] = 20
	r.Quest.CurrentCategory = pet.CategoryFood
	r.Quest.LastSwitchAt = testEpoch.Add(time.Hour)
	r.Quest.PinnedUntil = testEpoch.Add(9 * time.Hour)
	r.Daily = pet.DailyCurrency{DateKey: "2026-03-10", TodayAmount: 15}
	r.Sleep = pet.SleepState{
		IsAsleep:        true,
		SleepStartAt:    testEpoch.Add(2 * time.Hour),
		SleepEndAt:      testEpoch.Add(3 * time.Hour),
		SleepCycles:     4,
		SleepDuration:   time.Hour,
		WillBeSadOnWake: false,
	}
	r.Evolution = pet.EvolutionState{Streak: 9, Stage: pet.StageTeen, LastStreakUpdateAt: testEpoch}
	r.Level = pet.LevelState{CurrentLevel: 3, TotalEarnedCurrency: 450, LevelUpAt: testEpoch, PreviousLevel: 2}
	r.Customization = pet.CustomizationState{
		UnlockedImages:        []string{"winter", "beach"},
		UnlockedAccessories:   []string{"hat", "scarf"},
		EquippedAccessory:     "hat",
		UnlockedSpecialStates: []string{"sparkle"},
	}
	r.Achievements = pet.AchievementState{
		LifetimeFeeds:      42,
		LifetimeAdventures: 17,
		LifetimeSleeps:     8,
		LongestStreak:      12,
		Milestones:         []string{"first_feed", "feeder_10"},
	}
	r.General = pet.GeneralState{
		IsOwned:             true,
		AudioEnabled:        true,
		LastUpdatedAt:       testEpoch.Add(4 * time.Hour),
		IsCurrentlySelected: true,
	}
	return r
}

func TestRoundTrip_PreservesRemoteFields(t *testing.T) {
	local := fullRecord(t)

	got := ToDoc(local).Record(local)

	// Everything the remote schema carries must round-trip exactly.
	want := local.Clone()
	assert.Equal(t, want, got)
}

func TestRoundTrip_Idempotent(t *testing.T) {
	local := fullRecord(t)

	once := ToDoc(local)
	twice := ToDoc(once.Record(local))
	assert.Equal(t, once, twice)
}

func TestRecord_PreservesAchievementsFromPrior(t *testing.T) {
	local := fullRecord(t)
	doc := ToDoc(local)

	// The remote side never stores achievements; rebuilding from the doc
	// with a prior local copy keeps them.
	got := doc.Record(local)
	assert.Equal(t, local.Achievements, got.Achievements)

	// Without a prior copy they fall back to zero values.
	fresh := doc.Record(nil)
	assert.Zero(t, fresh.Achievements.LifetimeFeeds)
	assert.Empty(t, fresh.Achievements.Milestones)
}

func TestRecord_PriorAchievementsDoNotAlias(t *testing.T) {
	local := fullRecord(t)
	got := ToDoc(local).Record(local)

	got.Achievements.Milestones[0] = "mutated"
	assert.Equal(t, "first_feed", local.Achievements.Milestones[0])
}

func TestRecord_WithoutPriorUsesPurchaseDate(t *testing.T) {
	doc := ToDoc(fullRecord(t))
	doc.PurchaseDate = testEpoch.UnixMilli()

	got := doc.Record(nil)
	require.NotNil(t, got.Achievements.FirstFeedAt)
	assert.True(t, got.Achievements.FirstFeedAt.Equal(testEpoch))
}

func TestRecord_SanitizesBadRemoteData(t *testing.T) {
	doc := ToDoc(fullRecord(t))
	doc.CurrentTodo = "bogus"
	doc.Level = 0
	doc.Stage = ""
	doc.CategoryCoins["bogus"] = 99

	got := doc.Record(nil)
	assert.Equal(t, pet.Categories[0], got.Quest.CurrentCategory)
	assert.Equal(t, 1, got.Level.CurrentLevel)
	assert.Equal(t, pet.StageForStreak(got.Evolution.Streak), got.Evolution.Stage)
	assert.NotContains(t, got.Currency, pet.Category("bogus"))
}

func TestSettingsDoc_RoundTrip(t *testing.T) {
	s := &pet.GlobalSettings{
		CurrentSelectedPetID: "cat",
		GlobalAudioEnabled:   true,
		LastUpdatedAt:        testEpoch,
	}
	got := ToSettingsDoc(s).Settings()
	assert.Equal(t, s, got)
}
