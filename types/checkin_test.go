package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ride/api-go/models"
)

func baseActivity() *models.Activity {
	return &models.Activity{
		Title:              "Campus Orientation",
		Status:             models.ActivityStatusOngoing,
		StartTime:          time.Date(2024, 7, 10, 14, 0, 0, 0, time.UTC),
		EndTime:            time.Date(2024, 7, 10, 16, 0, 0, 0, time.UTC),
		CheckinEnabled:     true,
		CheckinStartOffset: 30,
		CheckinEndOffset:   30,
		VerificationRadius: 100,
		RewardPoints:       10,
	}
}

func registeredParticipant() *models.ActivityParticipant {
	return &models.ActivityParticipant{Status: "registered"}
}

func TestCheckinWindow(t *testing.T) {
	activity := baseActivity()
	start, end := CheckinWindow(activity)

	assert.Equal(t, time.Date(2024, 7, 10, 13, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 7, 10, 16, 30, 0, 0, time.UTC), end)
}

func TestEvaluateEligibility(t *testing.T) {
	inWindow := time.Date(2024, 7, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		activity    func() *models.Activity
		participant *models.ActivityParticipant
		now         time.Time
		wantCode    string
		eligible    bool
	}{
		{
			name: "check-in disabled",
			activity: func() *models.Activity {
				a := baseActivity()
				a.CheckinEnabled = false
				return a
			},
			participant: registeredParticipant(),
			now:         inWindow,
			wantCode:    EligibilityCodeNotEnabled,
		},
		{
			name: "disabled wins even outside the window",
			activity: func() *models.Activity {
				a := baseActivity()
				a.CheckinEnabled = false
				return a
			},
			participant: registeredParticipant(),
			now:         time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC),
			wantCode:    EligibilityCodeNotEnabled,
		},
		{
			name: "cancelled activity",
			activity: func() *models.Activity {
				a := baseActivity()
				a.Status = models.ActivityStatusCancelled
				return a
			},
			participant: registeredParticipant(),
			now:         inWindow,
			wantCode:    EligibilityCodeActivityEnded,
		},
		{
			name: "completed activity",
			activity: func() *models.Activity {
				a := baseActivity()
				a.Status = models.ActivityStatusCompleted
				return a
			},
			participant: registeredParticipant(),
			now:         inWindow,
			wantCode:    EligibilityCodeActivityEnded,
		},
		{
			name:        "not registered",
			activity:    baseActivity,
			participant: nil,
			now:         inWindow,
			wantCode:    EligibilityCodeNotRegistered,
		},
		{
			name:        "cancelled registration",
			activity:    baseActivity,
			participant: &models.ActivityParticipant{Status: "cancelled"},
			now:         inWindow,
			wantCode:    EligibilityCodeNotRegistered,
		},
		{
			name:        "before window opens",
			activity:    baseActivity,
			participant: registeredParticipant(),
			now:         time.Date(2024, 7, 10, 13, 0, 0, 0, time.UTC),
			wantCode:    EligibilityCodeNotStarted,
		},
		{
			name:        "after window closes",
			activity:    baseActivity,
			participant: registeredParticipant(),
			now:         time.Date(2024, 7, 10, 17, 0, 0, 0, time.UTC),
			wantCode:    EligibilityCodeWindowClosed,
		},
		{
			name:        "inside window",
			activity:    baseActivity,
			participant: registeredParticipant(),
			now:         inWindow,
			wantCode:    EligibilityCodeOK,
			eligible:    true,
		},
		{
			name:        "published status allows check-in",
			activity:    func() *models.Activity { a := baseActivity(); a.Status = models.ActivityStatusPublished; return a },
			participant: registeredParticipant(),
			now:         inWindow,
			wantCode:    EligibilityCodeOK,
			eligible:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateEligibility(tt.activity(), tt.participant, tt.now)
			assert.Equal(t, tt.wantCode, result.Code)
			assert.Equal(t, tt.eligible, result.Eligible)
			if !tt.eligible {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestEvaluateEligibilityAlreadyCheckedIn(t *testing.T) {
	checkinTime := time.Date(2024, 7, 10, 14, 5, 0, 0, time.UTC)
	participant := &models.ActivityParticipant{
		Status:      "registered",
		CheckedIn:   true,
		CheckinTime: &checkinTime,
	}

	result := EvaluateEligibility(baseActivity(), participant, checkinTime.Add(10*time.Minute))

	assert.False(t, result.Eligible)
	assert.Equal(t, EligibilityCodeAlreadyDone, result.Code)
	require.NotNil(t, result.CheckinTime)
	assert.Equal(t, checkinTime, *result.CheckinTime)
}

func TestEvaluateEligibilityReportsWindow(t *testing.T) {
	activity := baseActivity()
	activity.LocationVerification = true
	now := time.Date(2024, 7, 10, 16, 0, 0, 0, time.UTC)

	result := EvaluateEligibility(activity, registeredParticipant(), now)

	require.True(t, result.Eligible)
	assert.True(t, result.RequiresLocation)
	assert.Equal(t, 100, result.VerificationRadius)
	// 30 minutes left until the window closes
	assert.Equal(t, int64(1800), result.RemainingSeconds)
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{12 * time.Minute, "12m"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{-90 * time.Second, "1m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCountdown(tt.d))
	}
}

func TestCalculateDistanceMeters(t *testing.T) {
	// Same point
	assert.Equal(t, 0.0, CalculateDistanceMeters(39.9, 116.4, 39.9, 116.4))

	// One degree of latitude is about 111.2km
	d := CalculateDistanceMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 50)

	// A small offset near the equator: 0.001 deg of longitude ~ 111m
	d = CalculateDistanceMeters(0, 0, 0, 0.001)
	assert.InDelta(t, 111.3, d, 1)

	// Symmetry
	a := CalculateDistanceMeters(31.23, 121.47, 31.24, 121.48)
	b := CalculateDistanceMeters(31.24, 121.48, 31.23, 121.47)
	assert.InDelta(t, a, b, 1e-9)
}
