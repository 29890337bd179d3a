package remote

import (
	"time"

	"github.com/pawsync/pawsync/internal/pet"
)

// Doc is the remote document shape for one pet, one per pet per account.
// It is flatter than the local model, uses the remote service's field names
// (unlockedFeatures/purchasedItems/equippedItems, lastInteractionTime), and
// carries times as epoch milliseconds. The remote schema has no slot for
// achievement state; translation preserves it from the local copy instead.
type Doc struct {
	PetID   string `json:"petId"`
	PetType string `json:"petType"`
	PetName string `json:"petName,omitempty"`

	TotalSpent int `json:"totalSpent"`

	FeedCount      int   `json:"feedCount"`
	AdventureCoins int   `json:"adventureCoins"`
	SleepCompleted bool  `json:"sleepCompleted"`
	LastResetTime  int64 `json:"lastResetTime"`
	NextResetTime  int64 `json:"nextResetTime"`

	CategoryCoins map[string]int `json:"categoryCoins"`

	CurrentTodo     string `json:"currentTodo"`
	TodoSwitchTime  int64  `json:"todoSwitchTime"`
	TodoPinnedUntil int64  `json:"todoPinnedUntil,omitempty"`

	DailyDate  string `json:"dailyDate,omitempty"`
	DailyCoins int    `json:"dailyCoins"`

	IsAsleep        bool  `json:"isAsleep"`
	SleepStartTime  int64 `json:"sleepStartTime,omitempty"`
	SleepEndTime    int64 `json:"sleepEndTime,omitempty"`
	SleepCycles     int   `json:"sleepCycles"`
	SleepDurationMs int64 `json:"sleepDurationMs"`
	SadOnWake       bool  `json:"sadOnWake"`

	Streak           int    `json:"streak"`
	Stage            string `json:"stage"`
	StreakUpdateTime int64  `json:"streakUpdateTime,omitempty"`

	Level       int   `json:"level"`
	TotalEarned int   `json:"totalEarned"`
	LevelUpTime int64 `json:"levelUpTime,omitempty"`
	PrevLevel   int   `json:"prevLevel"`

	UnlockedFeatures []string      `json:"unlockedFeatures,omitempty"`
	PurchasedItems   []string      `json:"purchasedItems,omitempty"`
	EquippedItems    EquippedItems `json:"equippedItems"`
	SpecialStates    []string      `json:"specialStates,omitempty"`

	IsOwned             bool  `json:"isOwned"`
	SoundOn             bool  `json:"soundOn"`
	IsSelected          bool  `json:"isSelected"`
	LastInteractionTime int64 `json:"lastInteractionTime"`

	// PurchaseDate exists only remotely; it maps onto nothing in the local
	// model beyond the first-feed timestamp heuristic when importing.
	PurchaseDate int64 `json:"purchaseDate,omitempty"`
}

// EquippedItems is the remote nesting for equipped cosmetics.
type EquippedItems struct {
	Accessory string `json:"accessory,omitempty"`
}

// SettingsDoc is the remote account-settings document.
type SettingsDoc struct {
	SelectedPetID       string `json:"selectedPetId"`
	SoundOn             bool   `json:"soundOn"`
	LastInteractionTime int64  `json:"lastInteractionTime"`
}

// ToDoc translates a local record into the remote document shape. The
// mapping is pure and field-order independent.
func ToDoc(r *pet.Record) *Doc {
	coins := make(map[string]int, len(r.Currency))
	for c, v := range r.Currency {
		coins[string(c)] = v
	}
	return &Doc{
		PetID:   r.PetID,
		PetType: r.PetType,
		PetName: r.PetName,

		TotalSpent: r.CumulativeCurrencySpent,

		FeedCount:      r.Heart.FeedCount,
		AdventureCoins: r.Heart.AdventureCurrency,
		SleepCompleted: r.Heart.SleepCompleted,
		LastResetTime:  timeToMs(r.Heart.LastResetAt),
		NextResetTime:  timeToMs(r.Heart.NextResetAt),

		CategoryCoins: coins,

		CurrentTodo:     string(r.Quest.CurrentCategory),
		TodoSwitchTime:  timeToMs(r.Quest.LastSwitchAt),
		TodoPinnedUntil: timeToMs(r.Quest.PinnedUntil),

		DailyDate:  r.Daily.DateKey,
		DailyCoins: r.Daily.TodayAmount,

		IsAsleep:        r.Sleep.IsAsleep,
		SleepStartTime:  timeToMs(r.Sleep.SleepStartAt),
		SleepEndTime:    timeToMs(r.Sleep.SleepEndAt),
		SleepCycles:     r.Sleep.SleepCycles,
		SleepDurationMs: r.Sleep.SleepDuration.Milliseconds(),
		SadOnWake:       r.Sleep.WillBeSadOnWake,

		Streak:           r.Evolution.Streak,
		Stage:            string(r.Evolution.Stage),
		StreakUpdateTime: timeToMs(r.Evolution.LastStreakUpdateAt),

		Level:       r.Level.CurrentLevel,
		TotalEarned: r.Level.TotalEarnedCurrency,
		LevelUpTime: timeToMs(r.Level.LevelUpAt),
		PrevLevel:   r.Level.PreviousLevel,

		UnlockedFeatures: append([]string(nil), r.Customization.UnlockedImages...),
		PurchasedItems:   append([]string(nil), r.Customization.UnlockedAccessories...),
		EquippedItems:    EquippedItems{Accessory: r.Customization.EquippedAccessory},
		SpecialStates:    append([]string(nil), r.Customization.UnlockedSpecialStates...),

		IsOwned:             r.General.IsOwned,
		SoundOn:             r.General.AudioEnabled,
		IsSelected:          r.General.IsCurrentlySelected,
		LastInteractionTime: timeToMs(r.General.LastUpdatedAt),
	}
}

// Record translates a remote document back into the local model. prior is
// the local copy the document is replacing, if any; fields the remote
// schema does not carry (achievements) are taken from it rather than reset
// to defaults. Round-tripping a record through ToDoc then Record preserves
// every field the remote format supports.
func (d *Doc) Record(prior *pet.Record) *pet.Record {
	currency := make(map[pet.Category]int, len(pet.Categories))
	for _, c := range pet.Categories {
		currency[c] = 0
	}
	for name, v := range d.CategoryCoins {
		if pet.ValidCategory(pet.Category(name)) {
			currency[pet.Category(name)] = v
		}
	}

	r := &pet.Record{
		SchemaVersion: pet.CurrentSchemaVersion,
		PetID:         d.PetID,
		PetType:       d.PetType,
		PetName:       d.PetName,

		CumulativeCurrencySpent: d.TotalSpent,

		Heart: pet.HeartState{
			FeedCount:         d.FeedCount,
			AdventureCurrency: d.AdventureCoins,
			SleepCompleted:    d.SleepCompleted,
			LastResetAt:       msToTime(d.LastResetTime),
			NextResetAt:       msToTime(d.NextResetTime),
		},
		Currency: currency,
		Quest: pet.QuestPointer{
			CurrentCategory: pet.Category(d.CurrentTodo),
			LastSwitchAt:    msToTime(d.TodoSwitchTime),
			PinnedUntil:     msToTime(d.TodoPinnedUntil),
		},
		Daily: pet.DailyCurrency{
			DateKey:     d.DailyDate,
			TodayAmount: d.DailyCoins,
		},
		Sleep: pet.SleepState{
			IsAsleep:        d.IsAsleep,
			SleepStartAt:    msToTime(d.SleepStartTime),
			SleepEndAt:      msToTime(d.SleepEndTime),
			SleepCycles:     d.SleepCycles,
			SleepDuration:   time.Duration(d.SleepDurationMs) * time.Millisecond,
			WillBeSadOnWake: d.SadOnWake,
		},
		Evolution: pet.EvolutionState{
			Streak:             d.Streak,
			Stage:              pet.Stage(d.Stage),
			LastStreakUpdateAt: msToTime(d.StreakUpdateTime),
		},
		Level: pet.LevelState{
			CurrentLevel:        d.Level,
			TotalEarnedCurrency: d.TotalEarned,
			LevelUpAt:           msToTime(d.LevelUpTime),
			PreviousLevel:       d.PrevLevel,
		},
		Customization: pet.CustomizationState{
			UnlockedImages:        append([]string(nil), d.UnlockedFeatures...),
			UnlockedAccessories:   append([]string(nil), d.PurchasedItems...),
			EquippedAccessory:     d.EquippedItems.Accessory,
			UnlockedSpecialStates: append([]string(nil), d.SpecialStates...),
		},
		General: pet.GeneralState{
			IsOwned:             d.IsOwned,
			AudioEnabled:        d.SoundOn,
			IsCurrentlySelected: d.IsSelected,
			LastUpdatedAt:       msToTime(d.LastInteractionTime),
		},
	}

	if prior != nil {
		r.Achievements = prior.Clone().Achievements
	} else if d.PurchaseDate != 0 {
		t := msToTime(d.PurchaseDate)
		r.Achievements.FirstFeedAt = &t
	}

	if !pet.ValidCategory(r.Quest.CurrentCategory) {
		r.Quest.CurrentCategory = pet.Categories[0]
	}
	if r.Level.CurrentLevel < 1 {
		r.Level.CurrentLevel = 1
	}
	if r.Level.PreviousLevel < 1 {
		r.Level.PreviousLevel = 1
	}
	if r.Evolution.Stage == "" {
		r.Evolution.Stage = pet.StageForStreak(r.Evolution.Streak)
	}
	return r
}

// ToSettingsDoc translates global settings to the remote shape.
func ToSettingsDoc(s *pet.GlobalSettings) *SettingsDoc {
	return &SettingsDoc{
		SelectedPetID:       s.CurrentSelectedPetID,
		SoundOn:             s.GlobalAudioEnabled,
		LastInteractionTime: timeToMs(s.LastUpdatedAt),
	}
}

// Settings translates the remote account-settings document to the local
// model.
func (d *SettingsDoc) Settings() *pet.GlobalSettings {
	return &pet.GlobalSettings{
		CurrentSelectedPetID: d.SelectedPetID,
		GlobalAudioEnabled:   d.SoundOn,
		LastUpdatedAt:        msToTime(d.LastInteractionTime),
	}
}

func timeToMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
