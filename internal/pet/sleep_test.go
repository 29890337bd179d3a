package pet

import (
	"testing"
	"time"
)

func TestPutToSleep(t *testing.T) {
	r := NewRecord("cat", testEpoch)
	r.Sleep.WillBeSadOnWake = true // leftover sadness from a previous wake

	started, completed := PutToSleep(r, 2*time.Hour, testEpoch)
	if !started {
		t.Fatal("expected sleep to start")
	}
	if completed {
		t.Error("first cycle must not mark sleepCompleted")
	}
	if !r.Sleep.IsAsleep {
		t.Error("pet should be asleep")
	}
	if r.Sleep.WillBeSadOnWake {
		t.Error("starting a nap clears the sad flag")
	}
	if !r.Sleep.SleepEndAt.Equal(testEpoch.Add(2 * time.Hour)) {
		t.Errorf("sleepEndAt = %v, want %v", r.Sleep.SleepEndAt, testEpoch.Add(2*time.Hour))
	}
	if r.Sleep.SleepCycles != 1 {
		t.Errorf("sleepCycles = %d, want 1", r.Sleep.SleepCycles)
	}
}

func TestPutToSleep_AlreadyAsleep(t *testing.T) {
	r := NewRecord("cat", testEpoch)
	PutToSleep(r, time.Hour, testEpoch)

	started, _ := PutToSleep(r, time.Hour, testEpoch.Add(time.Minute))
	if started {
		t.Error("sleeping pet cannot start another nap")
	}
	if r.Sleep.SleepCycles != 1 {
		t.Errorf("sleepCycles = %d, want 1", r.Sleep.SleepCycles)
	}
}

func TestPutToSleep_DefaultDuration(t *testing.T) {
	r := NewRecord("cat", testEpoch)
	PutToSleep(r, 0, testEpoch)
	if r.Sleep.SleepDuration != DefaultSleepDuration {
		t.Errorf("sleepDuration = %v, want %v", r.Sleep.SleepDuration, DefaultSleepDuration)
	}
}

func TestPutToSleep_CycleThresholdCompletesHeart(t *testing.T) {
	r := NewRecord("cat", testEpoch)
	now := testEpoch
	var completed bool
	for i := 0; i < SleepCyclesForCompletion; i++ {
		_, completed = PutToSleep(r, time.Minute, now)
		now = now.Add(2 * time.Minute)
		SettleSleep(r, now)
	}
	if !completed {
		t.Errorf("cycle %d should have completed the heart's sleep slot", SleepCyclesForCompletion)
	}
	if !r.Heart.SleepCompleted {
		t.Error("sleepCompleted not set")
	}
}

func TestSettleSleep_ExpiryWakesSad(t *testing.T) {
	r := NewRecord("cat", testEpoch)
	PutToSleep(r, time.Hour, testEpoch)

	if SettleSleep(r, testEpoch.Add(30*time.Minute)) {
		t.Fatal("sleep must not complete before sleepEndAt")
	}
	if !SettleSleep(r, testEpoch.Add(time.Hour)) {
		t.Fatal("sleep should complete at sleepEndAt")
	}
	if r.Sleep.IsAsleep {
		t.Error("pet should be awake")
	}
	if !r.Sleep.WillBeSadOnWake {
		t.Error("automatic expiry must mark the pet sad")
	}
}

func TestWake_ManualWakeIsSad(t *testing.T) {
	r := NewRecord("cat", testEpoch)
	PutToSleep(r, time.Hour, testEpoch)

	now := testEpoch.Add(10 * time.Minute)
	if !Wake(r, now) {
		t.Fatal("expected wake to succeed")
	}
	if r.Sleep.IsAsleep {
		t.Error("pet should be awake")
	}
	if !r.Sleep.WillBeSadOnWake {
		t.Error("manual wake must mark the pet sad; there is no happy wake path")
	}
	if !r.Sleep.SleepEndAt.Equal(now) {
		t.Errorf("sleepEndAt should be truncated to wake time, got %v", r.Sleep.SleepEndAt)
	}

	if Wake(r, now.Add(time.Minute)) {
		t.Error("waking an awake pet must be a no-op")
	}
}
