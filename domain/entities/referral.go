package entities

import "time"

// Referral links a referred user to the user who brought them in
type Referral struct {
	ID             int64      `db:"id" json:"id"`
	ReferrerID     string     `db:"referrer_id" json:"referrerId"`
	ReferredUserID string     `db:"referred_user_id" json:"referredUserId"`
	ReferralCode   string     `db:"referral_code" json:"referralCode"`
	RewardGiven    bool       `db:"reward_given" json:"rewardGiven"`
	RewardAmount   int64      `db:"reward_amount" json:"rewardAmount"`
	FirstDepositAt *time.Time `db:"first_deposit_at" json:"firstDepositAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

// IsRewardPending returns true while the first-deposit reward is still owed
func (r *Referral) IsRewardPending() bool {
	return !r.RewardGiven
}
