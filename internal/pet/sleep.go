package pet

import "time"

// SettleSleep completes an expired sleep cycle. Every wake path, manual or
// automatic, marks the pet sad; only a subsequent care action clears the
// flag. There is deliberately no happy-wake transition.
func SettleSleep(r *Record, now time.Time) bool {
	if !r.Sleep.IsAsleep || now.Before(r.Sleep.SleepEndAt) {
		return false
	}
	r.Sleep.IsAsleep = false
	r.Sleep.WillBeSadOnWake = true
	return true
}

// PutToSleep starts a nap of the given duration. Returns false if the pet is
// already asleep. The second return value reports whether this sleep crossed
// the cycle threshold and newly marked the heart's sleepCompleted flag.
func PutToSleep(r *Record, d time.Duration, now time.Time) (started, completedHeart bool) {
	if r.Sleep.IsAsleep {
		return false, false
	}
	if d <= 0 {
		d = DefaultSleepDuration
	}
	r.Sleep.IsAsleep = true
	r.Sleep.SleepStartAt = now
	r.Sleep.SleepEndAt = now.Add(d)
	r.Sleep.SleepDuration = d
	r.Sleep.SleepCycles++
	r.Sleep.WillBeSadOnWake = false
	if r.Sleep.SleepCycles >= SleepCyclesForCompletion && !r.Heart.SleepCompleted {
		r.Heart.SleepCompleted = true
		completedHeart = true
	}
	return true, completedHeart
}

// Wake ends a nap early. Returns false if the pet was not asleep.
func Wake(r *Record, now time.Time) bool {
	if !r.Sleep.IsAsleep {
		return false
	}
	r.Sleep.IsAsleep = false
	r.Sleep.SleepEndAt = now
	r.Sleep.WillBeSadOnWake = true
	return true
}
