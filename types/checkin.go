package types

import (
	"fmt"
	"math"
	"time"

	"github.com/campus-ride/api-go/models"
)

const (
	EligibilityCodeOK            = "ok"
	EligibilityCodeNotEnabled    = "checkin_not_enabled"
	EligibilityCodeActivityEnded = "activity_ended"
	EligibilityCodeNotRegistered = "not_registered"
	EligibilityCodeAlreadyDone   = "already_checked_in"
	EligibilityCodeNotStarted    = "window_not_started"
	EligibilityCodeWindowClosed  = "window_closed"
)

type EligibilityResult struct {
	Eligible           bool       `json:"eligible"`
	Code               string     `json:"code"`
	Reason             string     `json:"reason,omitempty"`
	CheckinTime        *time.Time `json:"checkinTime,omitempty"`
	WindowStart        *time.Time `json:"windowStart,omitempty"`
	WindowEnd          *time.Time `json:"windowEnd,omitempty"`
	RemainingSeconds   int64      `json:"remainingSeconds,omitempty"`
	RequiresLocation   bool       `json:"requiresLocation"`
	VerificationRadius int        `json:"verificationRadius,omitempty"`
}

// CheckinWindow returns the interval during which check-in is open:
// [start - startOffset, end + endOffset], offsets in minutes.
func CheckinWindow(activity *models.Activity) (time.Time, time.Time) {
	start := activity.StartTime.Add(-time.Duration(activity.CheckinStartOffset) * time.Minute)
	end := activity.EndTime.Add(time.Duration(activity.CheckinEndOffset) * time.Minute)
	return start, end
}

func checkinAllowedStatus(status string) bool {
	switch status {
	case models.ActivityStatusPublished, models.ActivityStatusUpcoming, models.ActivityStatusOngoing:
		return true
	}
	return false
}

// EvaluateEligibility decides whether a participant may check in right now.
// The participant may be nil (not registered). Pure so both the eligibility
// endpoint and the executor's re-validation share one implementation.
func EvaluateEligibility(activity *models.Activity, participant *models.ActivityParticipant, now time.Time) EligibilityResult {
	if !activity.CheckinEnabled {
		return EligibilityResult{
			Code:   EligibilityCodeNotEnabled,
			Reason: "Check-in is not enabled for this activity",
		}
	}

	if !checkinAllowedStatus(activity.Status) {
		return EligibilityResult{
			Code:   EligibilityCodeActivityEnded,
			Reason: "Activity has ended or been cancelled",
		}
	}

	if participant == nil || participant.Status != "registered" {
		return EligibilityResult{
			Code:   EligibilityCodeNotRegistered,
			Reason: "You are not registered for this activity",
		}
	}

	if participant.CheckedIn {
		return EligibilityResult{
			Code:        EligibilityCodeAlreadyDone,
			Reason:      "You have already checked in",
			CheckinTime: participant.CheckinTime,
		}
	}

	windowStart, windowEnd := CheckinWindow(activity)

	if now.Before(windowStart) {
		return EligibilityResult{
			Code:        EligibilityCodeNotStarted,
			Reason:      fmt.Sprintf("Check-in opens in %s", FormatCountdown(windowStart.Sub(now))),
			WindowStart: &windowStart,
			WindowEnd:   &windowEnd,
		}
	}

	if now.After(windowEnd) {
		return EligibilityResult{
			Code:        EligibilityCodeWindowClosed,
			Reason:      fmt.Sprintf("Check-in closed %s ago", FormatCountdown(now.Sub(windowEnd))),
			WindowStart: &windowStart,
			WindowEnd:   &windowEnd,
		}
	}

	return EligibilityResult{
		Eligible:           true,
		Code:               EligibilityCodeOK,
		WindowStart:        &windowStart,
		WindowEnd:          &windowEnd,
		RemainingSeconds:   int64(windowEnd.Sub(now).Seconds()),
		RequiresLocation:   activity.LocationVerification,
		VerificationRadius: activity.VerificationRadius,
	}
}

// FormatCountdown renders a duration as "2h 5m" / "12m" / "45s".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - hours*60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// CalculateDistanceMeters returns the great-circle distance between two
// coordinates using the haversine formula.
func CalculateDistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371000.0 // Earth radius in meters

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dlat := (lat2 - lat1) * math.Pi / 180.0
	dlng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
