package types

import (
	"time"

	"github.com/campus-ride/api-go/models"
)

const (
	DEFAULT_CHECKIN_POINTS    = 10
	REGISTRATION_BONUS_POINTS = 2
	WEEKLY_COUPON_WINNERS     = 10
	PREMIUM_TIER_MAX_RANK     = 3
)

// Campus timezone. Leaderboard weeks and coupon windows are anchored here
// regardless of server locale.
var CampusTZ = time.FixedZone("CST", 8*60*60)

// PeriodStart returns the lower bound of a leaderboard period ending at now.
// "weekly" starts at the most recent Sunday 00:00 campus time, "monthly" at
// the 1st 00:00; anything else means all time (zero value).
func PeriodStart(period string, now time.Time) time.Time {
	local := now.In(CampusTZ)
	switch period {
	case "weekly":
		start := local.AddDate(0, 0, -int(local.Weekday()))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, CampusTZ)
	case "monthly":
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, CampusTZ)
	}
	return time.Time{}
}

// MerchantTierForRank maps a weekly leaderboard rank to the merchant tier
// whose coupons that rank earns. Empty means no coupon.
func MerchantTierForRank(rank int) string {
	switch {
	case rank < 1 || rank > WEEKLY_COUPON_WINNERS:
		return ""
	case rank <= PREMIUM_TIER_MAX_RANK:
		return models.MerchantTierPremium
	default:
		return models.MerchantTierStandard
	}
}

// RewardPointsFor returns the points a check-in on this activity awards.
func RewardPointsFor(activity *models.Activity) int {
	if activity.RewardPoints > 0 {
		return activity.RewardPoints
	}
	return DEFAULT_CHECKIN_POINTS
}
