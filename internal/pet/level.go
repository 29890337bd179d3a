package pet

import "time"

// currencyPerLevelStep is the size of each level's requirement increment:
// reaching level n+1 costs 100*n more total currency than level n did.
const currencyPerLevelStep = 100

// LevelForTotal returns the level earned by a cumulative currency total.
// Level 2 at 100, level 3 at 300, level 4 at 600, and so on.
func LevelForTotal(total int) int {
	level := 1
	for total >= CurrencyRequiredFor(level+1) {
		level++
	}
	return level
}

// CurrencyRequiredFor returns the cumulative total needed to reach level n.
func CurrencyRequiredFor(n int) int {
	return currencyPerLevelStep * (n - 1) * n / 2
}

// ApplyEarnedCurrency credits earned currency toward level progression and
// performs level-up bookkeeping. Returns true on level-up.
func ApplyEarnedCurrency(r *Record, amount int, now time.Time) bool {
	if amount <= 0 {
		return false
	}
	r.Level.TotalEarnedCurrency += amount
	next := LevelForTotal(r.Level.TotalEarnedCurrency)
	if next <= r.Level.CurrentLevel {
		return false
	}
	r.Level.PreviousLevel = r.Level.CurrentLevel
	r.Level.CurrentLevel = next
	r.Level.LevelUpAt = now
	return true
}

// StageForStreak maps the care streak to an evolution stage.
func StageForStreak(streak int) Stage {
	switch {
	case streak < 1:
		return StageEgg
	case streak < 3:
		return StageBaby
	case streak < 7:
		return StageChild
	case streak < 14:
		return StageTeen
	default:
		return StageAdult
	}
}

// streakGraceWindow is how long a streak survives without a care action.
const streakGraceWindow = 48 * time.Hour

// UpdateStreak advances the care streak for a care action at now. The streak
// grows at most once per calendar day and falls back to 1 when more than the
// grace window has passed since the previous update.
func UpdateStreak(r *Record, now time.Time) bool {
	e := &r.Evolution
	if !e.LastStreakUpdateAt.IsZero() && DateKey(e.LastStreakUpdateAt) == DateKey(now) {
		return false
	}
	if e.LastStreakUpdateAt.IsZero() || now.Sub(e.LastStreakUpdateAt) > streakGraceWindow {
		e.Streak = 1
	} else {
		e.Streak++
	}
	e.LastStreakUpdateAt = now
	e.Stage = StageForStreak(e.Streak)
	if e.Streak > r.Achievements.LongestStreak {
		r.Achievements.LongestStreak = e.Streak
	}
	return true
}
