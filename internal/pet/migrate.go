package pet

import (
	"encoding/json"
	"fmt"
	"time"
)

// Encode serializes a record for the local store.
func Encode(r *Record) ([]byte, error) {
	r.SchemaVersion = CurrentSchemaVersion
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record %s: %w", r.PetID, err)
	}
	return data, nil
}

// Decode parses a locally stored record blob, upgrading old formats to the
// current shape. The upgrade is total: every legacy field has a defined
// mapping and every missing field a defined default, so a decoded record is
// always fully populated.
func Decode(data []byte) (*Record, error) {
	var probe struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse record blob: %w", err)
	}
	if probe.SchemaVersion == 0 {
		return upgradeLegacy(data)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse record blob: %w", err)
	}
	normalize(&r)
	return &r, nil
}

// legacyRecord is the pre-versioning flat blob shape: one level of fields,
// epoch milliseconds for times, ad-hoc names.
type legacyRecord struct {
	PetID          string         `json:"petId"`
	PetType        string         `json:"petType"`
	PetName        string         `json:"petName"`
	FeedCount      int            `json:"feedCount"`
	AdventureCoins int            `json:"adventureCoins"`
	SleepCompleted bool           `json:"sleepCompleted"`
	LastResetMs    int64          `json:"lastResetTime"`
	CategoryCoins  map[string]int `json:"categoryCoins"`
	CurrentTodo    string         `json:"currentTodo"`
	TodoSwitchMs   int64          `json:"todoSwitchTime"`
	IsAsleep       bool           `json:"isAsleep"`
	SleepEndMs     int64          `json:"sleepEndTime"`
	SleepCycles    int            `json:"sleepCycles"`
	Streak         int            `json:"streak"`
	Level          int            `json:"level"`
	TotalEarned    int            `json:"totalEarned"`
	TotalSpent     int            `json:"totalSpent"`
	IsOwned        bool           `json:"isOwned"`
	SoundOn        *bool          `json:"soundOn"`
	IsSelected     bool           `json:"isSelected"`
	LastUpdatedMs  int64          `json:"lastUpdated"`
}

func upgradeLegacy(data []byte) (*Record, error) {
	var old legacyRecord
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("failed to parse legacy record blob: %w", err)
	}
	if old.PetID == "" {
		return nil, fmt.Errorf("legacy record blob has no pet id")
	}

	lastReset := msToTime(old.LastResetMs)
	r := NewRecord(old.PetID, lastReset)
	if old.PetType != "" {
		r.PetType = old.PetType
	}
	r.PetName = old.PetName
	r.Heart.FeedCount = old.FeedCount
	r.Heart.AdventureCurrency = old.AdventureCoins
	r.Heart.SleepCompleted = old.SleepCompleted
	for name, coins := range old.CategoryCoins {
		if ValidCategory(Category(name)) {
			r.Currency[Category(name)] = coins
		}
	}
	if ValidCategory(Category(old.CurrentTodo)) {
		r.Quest.CurrentCategory = Category(old.CurrentTodo)
	}
	r.Quest.LastSwitchAt = msToTime(old.TodoSwitchMs)
	r.Sleep.IsAsleep = old.IsAsleep
	r.Sleep.SleepEndAt = msToTime(old.SleepEndMs)
	r.Sleep.SleepCycles = old.SleepCycles
	r.Evolution.Streak = old.Streak
	r.Evolution.Stage = StageForStreak(old.Streak)
	if old.Level > 1 {
		r.Level.CurrentLevel = old.Level
		r.Level.PreviousLevel = old.Level
	}
	r.Level.TotalEarnedCurrency = old.TotalEarned
	r.CumulativeCurrencySpent = old.TotalSpent
	r.General.IsOwned = old.IsOwned
	if old.SoundOn != nil {
		r.General.AudioEnabled = *old.SoundOn
	}
	r.General.IsCurrentlySelected = old.IsSelected
	r.General.LastUpdatedAt = msToTime(old.LastUpdatedMs)
	r.Achievements.LongestStreak = old.Streak
	normalize(r)
	return r, nil
}

// normalize fills gaps in records written by older builds of the current
// schema so downstream code never sees a partially populated record.
func normalize(r *Record) {
	if r.Currency == nil {
		r.Currency = make(map[Category]int, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := r.Currency[c]; !ok {
			r.Currency[c] = 0
		}
	}
	if !ValidCategory(r.Quest.CurrentCategory) {
		r.Quest.CurrentCategory = Categories[0]
	}
	if r.Level.CurrentLevel < 1 {
		r.Level.CurrentLevel = 1
	}
	if r.Level.PreviousLevel < 1 {
		r.Level.PreviousLevel = 1
	}
	if r.Evolution.Stage == "" {
		r.Evolution.Stage = StageForStreak(r.Evolution.Streak)
	}
	if r.Heart.NextResetAt.IsZero() {
		r.Heart.NextResetAt = r.Heart.LastResetAt.Add(ResetPeriod)
	}
	r.SchemaVersion = CurrentSchemaVersion
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
