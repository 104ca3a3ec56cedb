package models

import "time"

// SubscriptionPlan is the catalog entry behind a tier; prices mirror the
// Stripe price objects configured for the account.
type SubscriptionPlan struct {
	ID            int64     `json:"id"`
	Tier          string    `json:"tier"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	Interval      string    `json:"interval"`
	StripePriceID *string   `json:"-"`
	Features      []string  `json:"features"`
	CreatedAt     time.Time `json:"created_at"`
}
