package pet

import (
	"fmt"
	"time"
)

// Milestone tags earned at fixed lifetime counter thresholds.
const (
	MilestoneFirstFeed      = "first_feed"
	MilestoneFirstAdventure = "first_adventure"
	MilestoneFirstSleep     = "first_sleep"
)

var feedMilestones = []int{10, 50, 100}
var adventureMilestones = []int{10, 50}
var sleepMilestones = []int{10}
var streakMilestones = []int{7, 30}

// RecordFeed updates lifetime feed counters and milestone tags.
func RecordFeed(r *Record, now time.Time) {
	a := &r.Achievements
	a.LifetimeFeeds++
	if a.FirstFeedAt == nil {
		t := now
		a.FirstFeedAt = &t
		addMilestone(r, MilestoneFirstFeed)
	}
	for _, n := range feedMilestones {
		if a.LifetimeFeeds >= n {
			addMilestone(r, fmt.Sprintf("feeder_%d", n))
		}
	}
}

// RecordAdventure updates lifetime adventure counters and milestone tags.
func RecordAdventure(r *Record, now time.Time) {
	a := &r.Achievements
	a.LifetimeAdventures++
	if a.FirstAdventureAt == nil {
		t := now
		a.FirstAdventureAt = &t
		addMilestone(r, MilestoneFirstAdventure)
	}
	for _, n := range adventureMilestones {
		if a.LifetimeAdventures >= n {
			addMilestone(r, fmt.Sprintf("explorer_%d", n))
		}
	}
}

// RecordSleep updates lifetime sleep counters and milestone tags.
func RecordSleep(r *Record, now time.Time) {
	a := &r.Achievements
	a.LifetimeSleeps++
	if a.FirstSleepAt == nil {
		t := now
		a.FirstSleepAt = &t
		addMilestone(r, MilestoneFirstSleep)
	}
	for _, n := range sleepMilestones {
		if a.LifetimeSleeps >= n {
			addMilestone(r, fmt.Sprintf("dreamer_%d", n))
		}
	}
}

// RecordStreakMilestones awards streak milestone tags for the current streak.
func RecordStreakMilestones(r *Record) {
	for _, n := range streakMilestones {
		if r.Evolution.Streak >= n {
			addMilestone(r, fmt.Sprintf("streak_%d", n))
		}
	}
}

func addMilestone(r *Record, tag string) bool {
	for _, m := range r.Achievements.Milestones {
		if m == tag {
			return false
		}
	}
	r.Achievements.Milestones = append(r.Achievements.Milestones, tag)
	return true
}
