package pet

import "time"

// SettleHeart applies the heart-cycle reset when the cycle has expired.
// The heart state is replaced with fresh defaults anchored at now; a pet
// asleep at reset time is force-woken and will be sad about it. Category
// currency totals are untouched by the reset.
//
// Running this twice with the same now is a no-op the second time.
func SettleHeart(r *Record, now time.Time) bool {
	if now.Before(r.Heart.NextResetAt) {
		return false
	}
	r.Heart = HeartState{
		LastResetAt: now,
		NextResetAt: now.Add(ResetPeriod),
	}
	if r.Sleep.IsAsleep {
		r.Sleep.IsAsleep = false
		r.Sleep.SleepEndAt = now
		r.Sleep.WillBeSadOnWake = true
	}
	return true
}

// heart fill thresholds for adventure currency
var fillSteps = []struct {
	currency int
	pct      int
}{
	{25, 60},
	{50, 70},
	{75, 80},
	{100, 90},
}

// HeartFillPercent derives the heart fill percentage from the current cycle's
// care counters. Feeds contribute 0/20/40, adventure currency lifts the
// percentage through fixed breakpoints (each applies only while the running
// percentage is still below it), and a completed sleep adds the final 10.
func HeartFillPercent(r *Record) int {
	pct := 0
	switch {
	case r.Heart.FeedCount >= 2:
		pct = 40
	case r.Heart.FeedCount == 1:
		pct = 20
	}
	for _, step := range fillSteps {
		if r.Heart.AdventureCurrency >= step.currency && pct < step.pct {
			pct = step.pct
		}
	}
	if r.Heart.SleepCompleted {
		pct += 10
		if pct > 100 {
			pct = 100
		}
	}
	return pct
}
