package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MerchantTierPremium  = "premium"
	MerchantTierStandard = "standard"

	CouponStatusActive   = "active"
	CouponStatusRedeemed = "redeemed"
	CouponStatusExpired  = "expired"
)

type Merchant struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null"`
	Tier     string `json:"tier" gorm:"not null;default:'standard';type:varchar(20)"`
	IsActive bool   `json:"isActive" gorm:"default:true"`
}

type Coupon struct {
	gorm.Model
	MerchantID  uint     `json:"merchantId" gorm:"not null"`
	Merchant    Merchant `json:"merchant" gorm:"foreignKey:MerchantID"`
	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description" gorm:"type:text"`
	Discount    float64  `json:"discount" gorm:"type:decimal(10,2)"`
	ValidDays   int      `json:"validDays" gorm:"default:7"`
	IsActive    bool     `json:"isActive" gorm:"default:true"`
}

// UserCoupon is one issued coupon. The (user, coupon, week) index keeps the
// weekly distribution from double-issuing under a re-run.
type UserCoupon struct {
	gorm.Model
	UserID     uint       `json:"userId" gorm:"not null;uniqueIndex:idx_user_coupon_week"`
	User       User       `json:"-" gorm:"foreignKey:UserID"`
	CouponID   uint       `json:"couponId" gorm:"not null;uniqueIndex:idx_user_coupon_week"`
	Coupon     Coupon     `json:"coupon" gorm:"foreignKey:CouponID"`
	WeekStart  time.Time  `json:"weekStart" gorm:"type:date;not null;uniqueIndex:idx_user_coupon_week"`
	Code       string     `json:"code" gorm:"unique;not null"`
	Status     string     `json:"status" gorm:"not null;default:'active';type:varchar(20)"`
	ExpiresAt  time.Time  `json:"expiresAt" gorm:"not null"`
	RedeemedAt *time.Time `json:"redeemedAt"`
}
