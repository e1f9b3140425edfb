package models

import "gorm.io/gorm"

type Plan struct {
	gorm.Model
	Name      string `gorm:"unique;not null"`
	Slug      string `gorm:"unique;not null"`
	Tagline   string
	Price     float64
	Currency  string `gorm:"default:usd"`
	Interval  string `gorm:"default:month"` // month, year
	Popular   bool
	Published bool
	Features  []PlanFeature

	StripeProductID string
	StripePriceID   string
}

// PlanFeature describes one entitlement of a plan. Non-quota features
// are simply included; quota features cap usage per reset period.
type PlanFeature struct {
	gorm.Model
	PlanID  uint   `gorm:"index;not null"`
	Key     string `gorm:"not null"` // downloads, bookmarks, support_requests, ...
	Label   string
	IsQuota bool
	Limit   int    `gorm:"default:-1"`      // -1 = unlimited
	Period  string `gorm:"default:monthly"` // daily, weekly, monthly, yearly, lifetime
}
