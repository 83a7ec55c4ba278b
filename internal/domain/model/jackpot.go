package model

import "time"

// JackpotState is the single durable jackpot row. BalanceNano only ever
// decreases through a successful, completed award; a failed payout is
// compensated by restoring the prior balance.
type JackpotState struct {
	BalanceNano   int64      `db:"balance_nano"`
	LastWinnerID  *string    `db:"last_winner_id"`
	LastAwardedAt *time.Time `db:"last_awarded_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// AwardEligible reports whether the jackpot can be awarded at now under the
// given floor and cooldown. The durable award statement re-checks the same
// conditions; this is only a cheap pre-check.
func (j *JackpotState) AwardEligible(now time.Time, floorNano int64, cooldown time.Duration) bool {
	if j.BalanceNano < floorNano {
		return false
	}
	if j.LastAwardedAt != nil && now.Sub(*j.LastAwardedAt) < cooldown {
		return false
	}
	return true
}
