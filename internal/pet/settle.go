package pet

import "time"

// Settle runs every time-driven state machine against now so a record read
// is always current: expired sleeps complete, expired heart cycles reset,
// the quest pointer rotates if due, and the daily counter rolls over on a
// date change. Returns true if anything changed and the record needs to be
// written back.
//
// Order matters: sleep completion is observed before the heart reset so a
// nap that ended inside an expired cycle still counts as a wake, and quest
// rotation sees the post-sleep state.
func Settle(r *Record, now time.Time) bool {
	changed := SettleSleep(r, now)
	if SettleHeart(r, now) {
		changed = true
	}
	if SettleQuest(r, now) {
		changed = true
	}
	if key := DateKey(now); r.Daily.DateKey != key {
		r.Daily = DailyCurrency{DateKey: key}
		changed = true
	}
	return changed
}
