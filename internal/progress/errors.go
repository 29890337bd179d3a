package progress

import "errors"

var (
	// ErrUnknownCategory is returned for a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown adventure category")

	// ErrInvalidAmount is returned for zero or negative currency amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAlreadyAsleep is returned by PutToSleep when a nap is in progress.
	ErrAlreadyAsleep = errors.New("pet is already asleep")

	// ErrNotAsleep is returned by Wake when the pet is awake.
	ErrNotAsleep = errors.New("pet is not asleep")

	// ErrNotUnlocked is returned when equipping an accessory that has not
	// been unlocked.
	ErrNotUnlocked = errors.New("accessory is not unlocked")
)
