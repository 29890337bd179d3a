package syncd

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/pawsync/pawsync/internal/pet"
)

// fingerprintFields is the cheap divergence check used by reconciliation:
// the fields most likely to change on another device. Two copies with equal
// fingerprints are treated as the same version; differing fingerprints make
// the conflict strategy decide.
type fingerprintFields struct {
	Level         int
	TotalEarned   int
	QuestCategory pet.Category
	QuestSwitchMs int64
	Currency      map[pet.Category]int
	FeedCount     int
	TotalSpent    int
	IsAsleep      bool
	SleepEndMs    int64
	SleepCycles   int
}

// Fingerprint hashes the externally-volatile fields of a record.
func Fingerprint(r *pet.Record) uint64 {
	f := fingerprintFields{
		Level:         r.Level.CurrentLevel,
		TotalEarned:   r.Level.TotalEarnedCurrency,
		QuestCategory: r.Quest.CurrentCategory,
		QuestSwitchMs: r.Quest.LastSwitchAt.UnixMilli(),
		Currency:      r.Currency,
		FeedCount:     r.Heart.FeedCount,
		TotalSpent:    r.CumulativeCurrencySpent,
		IsAsleep:      r.Sleep.IsAsleep,
		SleepEndMs:    r.Sleep.SleepEndAt.UnixMilli(),
		SleepCycles:   r.Sleep.SleepCycles,
	}
	hash, err := hashstructure.Hash(f, hashstructure.FormatV2, nil)
	if err != nil {
		// Hashing a plain struct of scalars and one map cannot fail; if it
		// ever does, a zero fingerprint forces a conservative replace.
		return 0
	}
	return hash
}
