package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-ride/api-go/models"
)

func TestPeriodStartWeekly(t *testing.T) {
	// 2024-07-10 is a Wednesday; the week began Sunday 2024-07-07
	now := time.Date(2024, 7, 10, 15, 0, 0, 0, CampusTZ)
	start := PeriodStart("weekly", now)
	assert.Equal(t, time.Date(2024, 7, 7, 0, 0, 0, 0, CampusTZ), start)

	// A Sunday is its own week start
	sunday := time.Date(2024, 7, 7, 23, 59, 0, 0, CampusTZ)
	assert.Equal(t, time.Date(2024, 7, 7, 0, 0, 0, 0, CampusTZ), PeriodStart("weekly", sunday))
}

func TestPeriodStartUsesCampusTimezone(t *testing.T) {
	// Saturday 18:00 UTC is already Sunday 02:00 campus time
	now := time.Date(2024, 7, 6, 18, 0, 0, 0, time.UTC)
	start := PeriodStart("weekly", now)
	assert.Equal(t, time.Date(2024, 7, 7, 0, 0, 0, 0, CampusTZ), start)
}

func TestPeriodStartMonthly(t *testing.T) {
	now := time.Date(2024, 7, 10, 15, 0, 0, 0, CampusTZ)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, CampusTZ), PeriodStart("monthly", now))
}

func TestPeriodStartAllTime(t *testing.T) {
	assert.True(t, PeriodStart("all_time", time.Now()).IsZero())
}

func TestMerchantTierForRank(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{0, ""},
		{1, models.MerchantTierPremium},
		{3, models.MerchantTierPremium},
		{4, models.MerchantTierStandard},
		{10, models.MerchantTierStandard},
		{11, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MerchantTierForRank(tt.rank), "rank %d", tt.rank)
	}
}

func TestRewardPointsFor(t *testing.T) {
	assert.Equal(t, 25, RewardPointsFor(&models.Activity{RewardPoints: 25}))
	assert.Equal(t, DEFAULT_CHECKIN_POINTS, RewardPointsFor(&models.Activity{}))
}
