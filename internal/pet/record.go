// Package pet provides the data model for virtual pet progress and the pure
// time-driven state machines that operate on it (heart-cycle reset, sleep
// completion, quest rotation). Nothing in this package performs I/O; stateful
// components live in localstore, remote, and syncd.
package pet

import (
	"time"
)

// Category classifies adventure currency and quest rotation slots.
type Category string

const (
	CategoryHouse  Category = "house"
	CategoryFood   Category = "food"
	CategoryTravel Category = "travel"
	CategoryFriend Category = "friend"
	CategoryStory  Category = "story"
)

// Categories is the fixed quest rotation order.
var Categories = []Category{CategoryHouse, CategoryFood, CategoryTravel, CategoryFriend, CategoryStory}

const (
	// ResetPeriod is the heart cycle length. Care counters (feeds, adventure
	// currency, sleep completion) reset every cycle.
	ResetPeriod = 8 * time.Hour

	// QuestPinWindow is how long a just-completed category stays featured
	// before rotation logic may move on.
	QuestPinWindow = 8 * time.Hour

	// QuestThreshold is the per-category currency total that counts as
	// "completed" for rotation purposes.
	QuestThreshold = 50

	// SleepCyclesForCompletion is how many sleep cycles are needed before a
	// sleep marks the heart's sleepCompleted flag.
	SleepCyclesForCompletion = 3

	// DefaultSleepDuration is used when a caller does not specify one.
	DefaultSleepDuration = time.Hour

	// CurrentSchemaVersion tags locally persisted record blobs. Older blobs
	// are upgraded at read time, see Decode.
	CurrentSchemaVersion = 1
)

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c Category) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// HeartState holds the per-cycle care counters. It is replaced wholesale by
// the heart reset; everything outside it survives the cycle.
type HeartState struct {
	FeedCount         int       `json:"feedCount"`
	AdventureCurrency int       `json:"adventureCurrency"`
	SleepCompleted    bool      `json:"sleepCompleted"`
	LastResetAt       time.Time `json:"lastResetAt"`
	NextResetAt       time.Time `json:"nextResetAt"`
}

// QuestPointer tracks which category is currently featured. PinnedUntil is
// set when a category first crosses the completion threshold so the UI can
// celebrate it before rotation moves on.
type QuestPointer struct {
	CurrentCategory Category  `json:"currentCategory"`
	LastSwitchAt    time.Time `json:"lastSwitchAt"`
	PinnedUntil     time.Time `json:"pinnedUntil,omitzero"`
}

// DailyCurrency tracks currency earned today; TodayAmount resets when
// DateKey no longer matches the current calendar date.
type DailyCurrency struct {
	DateKey     string `json:"dateKey"`
	TodayAmount int    `json:"todayAmount"`
}

// SleepState is the sleep machine's persisted state.
type SleepState struct {
	IsAsleep        bool          `json:"isAsleep"`
	SleepStartAt    time.Time     `json:"sleepStartAt,omitzero"`
	SleepEndAt      time.Time     `json:"sleepEndAt,omitzero"`
	SleepCycles     int           `json:"sleepCycles"`
	SleepDuration   time.Duration `json:"sleepDuration"`
	WillBeSadOnWake bool          `json:"willBeSadOnWake"`
}

// Stage is the evolution stage derived from the care streak.
type Stage string

const (
	StageEgg   Stage = "egg"
	StageBaby  Stage = "baby"
	StageChild Stage = "child"
	StageTeen  Stage = "teen"
	StageAdult Stage = "adult"
)

// EvolutionState tracks the daily care streak and the stage derived from it.
type EvolutionState struct {
	Streak             int       `json:"streak"`
	Stage              Stage     `json:"stage"`
	LastStreakUpdateAt time.Time `json:"lastStreakUpdateAt,omitzero"`
}

// LevelState tracks level progression driven by total earned currency.
type LevelState struct {
	CurrentLevel        int       `json:"currentLevel"`
	TotalEarnedCurrency int       `json:"totalEarnedCurrency"`
	LevelUpAt           time.Time `json:"levelUpAt,omitzero"`
	PreviousLevel       int       `json:"previousLevel"`
}

// CustomizationState holds unlocked cosmetics.
type CustomizationState struct {
	UnlockedImages        []string `json:"unlockedImages,omitempty"`
	UnlockedAccessories   []string `json:"unlockedAccessories,omitempty"`
	EquippedAccessory     string   `json:"equippedAccessory,omitempty"`
	UnlockedSpecialStates []string `json:"unlockedSpecialStates,omitempty"`
}

// AchievementState holds lifetime counters and earned milestone tags. The
// remote document schema has no representation for this; it must survive
// round-trips by falling back to the local copy.
type AchievementState struct {
	LifetimeFeeds      int        `json:"lifetimeFeeds"`
	LifetimeAdventures int        `json:"lifetimeAdventures"`
	LifetimeSleeps     int        `json:"lifetimeSleeps"`
	LongestStreak      int        `json:"longestStreak"`
	FirstFeedAt        *time.Time `json:"firstFeedAt,omitempty"`
	FirstAdventureAt   *time.Time `json:"firstAdventureAt,omitempty"`
	FirstSleepAt       *time.Time `json:"firstSleepAt,omitempty"`
	Milestones         []string   `json:"milestones,omitempty"`
}

// GeneralState holds ownership, audio, selection and the staleness signal.
type GeneralState struct {
	IsOwned             bool      `json:"isOwned"`
	AudioEnabled        bool      `json:"audioEnabled"`
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
	IsCurrentlySelected bool      `json:"isCurrentlySelected"`
}

// Record is the full persisted state for one virtual pet.
type Record struct {
	SchemaVersion int    `json:"schemaVersion"`
	PetID         string `json:"petId"`
	PetType       string `json:"petType"`
	PetName       string `json:"petName,omitempty"`

	CumulativeCurrencySpent int `json:"cumulativeCurrencySpent"`

	Heart HeartState `json:"heart"`

	// Currency totals per category. Never decreased by any operation except
	// a full record reset; in particular the heart reset leaves it alone.
	Currency map[Category]int `json:"currencyByCategory"`

	Quest         QuestPointer       `json:"quest"`
	Daily         DailyCurrency      `json:"daily"`
	Sleep         SleepState         `json:"sleep"`
	Evolution     EvolutionState     `json:"evolution"`
	Level         LevelState         `json:"level"`
	Customization CustomizationState `json:"customization"`
	Achievements  AchievementState   `json:"achievements"`
	General       GeneralState       `json:"general"`
}

// GlobalSettings is the per-account singleton record.
type GlobalSettings struct {
	CurrentSelectedPetID string    `json:"currentSelectedPetId"`
	GlobalAudioEnabled   bool      `json:"globalAudioEnabled"`
	LastUpdatedAt        time.Time `json:"lastUpdatedAt,omitzero"`
}

// PendingEntry is a not-yet-uploaded record snapshot queued while the remote
// store is unreachable.
type PendingEntry struct {
	Record   *Record   `json:"record"`
	QueuedAt time.Time `json:"queuedAt"`
}

// NewRecord creates a record with defaults. Records are created lazily the
// first time an unknown pet id is requested.
func NewRecord(petID string, now time.Time) *Record {
	currency := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		currency[c] = 0
	}
	return &Record{
		SchemaVersion: CurrentSchemaVersion,
		PetID:         petID,
		PetType:       petID,
		Currency:      currency,
		Heart: HeartState{
			LastResetAt: now,
			NextResetAt: now.Add(ResetPeriod),
		},
		Quest: QuestPointer{
			CurrentCategory: Categories[0],
			LastSwitchAt:    now,
		},
		Daily: DailyCurrency{DateKey: DateKey(now)},
		Evolution: EvolutionState{
			Stage: StageForStreak(0),
		},
		Level: LevelState{CurrentLevel: 1, PreviousLevel: 1},
		General: GeneralState{
			AudioEnabled:  true,
			LastUpdatedAt: now,
		},
	}
}

// Clone returns a deep copy. Snapshots handed to the sync coordinator must
// not alias the caller's mutable copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Currency = make(map[Category]int, len(r.Currency))
	for k, v := range r.Currency {
		cp.Currency[k] = v
	}
	cp.Customization.UnlockedImages = append([]string(nil), r.Customization.UnlockedImages...)
	cp.Customization.UnlockedAccessories = append([]string(nil), r.Customization.UnlockedAccessories...)
	cp.Customization.UnlockedSpecialStates = append([]string(nil), r.Customization.UnlockedSpecialStates...)
	cp.Achievements.Milestones = append([]string(nil), r.Achievements.Milestones...)
	cp.Achievements.FirstFeedAt = cloneTime(r.Achievements.FirstFeedAt)
	cp.Achievements.FirstAdventureAt = cloneTime(r.Achievements.FirstAdventureAt)
	cp.Achievements.FirstSleepAt = cloneTime(r.Achievements.FirstSleepAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Touch advances LastUpdatedAt. It is strictly increasing even when the
// wall clock has not moved between two mutations, because it is the sole
// tie-breaker for deciding whether a remote copy is newer.
func (r *Record) Touch(now time.Time) {
	if !now.After(r.General.LastUpdatedAt) {
		now = r.General.LastUpdatedAt.Add(time.Millisecond)
	}
	r.General.LastUpdatedAt = now
}

// DateKey formats t as the calendar date string used for daily resets.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
