package pet

import "time"

// PinQuestIfCrossed pins the quest pointer to category c when its total has
// just crossed the completion threshold (before was under it, the stored
// total is now at or past it). The pin holds for QuestPinWindow regardless
// of rotation logic so the UI can celebrate the completed category. While a
// pin is active a later crossing does not steal it.
func PinQuestIfCrossed(r *Record, c Category, before int, now time.Time) bool {
	if before >= QuestThreshold || r.Currency[c] < QuestThreshold {
		return false
	}
	if now.Before(r.Quest.PinnedUntil) {
		return false
	}
	r.Quest.CurrentCategory = c
	r.Quest.LastSwitchAt = now
	r.Quest.PinnedUntil = now.Add(QuestPinWindow)
	return true
}

// SettleQuest advances the quest pointer when rotation conditions are met.
//
// Rotation holds while a pin is active. Outside a pin, the pointer advances
// to the next category in the fixed order only when the featured category is
// already past threshold AND either a calendar day has passed since the last
// switch or a sleep cycle completed since then. When every category is past
// threshold the pointer parks on the last category; there is no wraparound.
func SettleQuest(r *Record, now time.Time) bool {
	q := &r.Quest
	if now.Before(q.PinnedUntil) {
		return false
	}
	if r.Currency[q.CurrentCategory] < QuestThreshold {
		return false
	}
	idx := categoryIndex(q.CurrentCategory)
	if idx < 0 || idx+1 >= len(Categories) {
		// Terminal state: last category holds forever.
		return false
	}
	dayElapsed := DateKey(now) != DateKey(q.LastSwitchAt)
	sleepDone := !r.Sleep.IsAsleep &&
		r.Sleep.SleepEndAt.After(q.LastSwitchAt) &&
		!r.Sleep.SleepEndAt.After(now)
	if !dayElapsed && !sleepDone {
		return false
	}
	q.CurrentCategory = Categories[idx+1]
	q.LastSwitchAt = now
	q.PinnedUntil = time.Time{}
	return true
}

func categoryIndex(c Category) int {
	for i, k := range Categories {
		if k == c {
			return i
		}
	}
	return -1
}
