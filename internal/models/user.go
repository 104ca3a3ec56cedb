package models

import "time"

const (
	RoleUser  = "user"
	RoleCoach = "coach"
)

const (
	TierFree           = "free"
	TierPremiumMonthly = "premium_monthly"
	TierPremiumAnnual  = "premium_annual"
)

const (
	SubscriptionStatusNone     = "none"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

type User struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	Role                 string    `json:"role"`
	SubscriptionTier     string    `json:"subscription_tier"`
	SubscriptionStatus   string    `json:"subscription_status"`
	StripeCustomerID     *string   `json:"-"`
	StripeSubscriptionID *string   `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (u *User) IsPremium() bool {
	if u == nil {
		return false
	}
	return u.SubscriptionStatus == SubscriptionStatusActive &&
		(u.SubscriptionTier == TierPremiumMonthly || u.SubscriptionTier == TierPremiumAnnual)
}
