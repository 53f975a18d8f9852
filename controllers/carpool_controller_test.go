package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
)

type carpoolFixture struct {
	db        *gorm.DB
	driver    models.User
	passenger models.User
	ride      models.Ride
	booking   models.RideBooking
}

func seedCarpoolFixture(t *testing.T) *carpoolFixture {
	t.Helper()
	db := openTestDB(t)

	driver := models.User{Username: "driver", Email: "driver@campus.edu"}
	require.NoError(t, db.Create(&driver).Error)
	passenger := models.User{Username: "passenger", Email: "passenger@campus.edu"}
	require.NoError(t, db.Create(&passenger).Error)

	ride := models.Ride{
		DriverID:       driver.ID,
		Origin:         "North Gate",
		Destination:    "Central Station",
		DepartureTime:  time.Now().Add(2 * time.Hour),
		SeatsTotal:     3,
		SeatsAvailable: 1,
		Status:         models.RideStatusOpen,
	}
	require.NoError(t, db.Create(&ride).Error)

	booking := models.RideBooking{
		RideID:      ride.ID,
		PassengerID: passenger.ID,
		Seats:       2,
		Status:      models.BookingStatusConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	return &carpoolFixture{db: db, driver: driver, passenger: passenger, ride: ride, booking: booking}
}

func (f *carpoolFixture) cancel(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authInjector(f.passenger.ID, models.RoleUser))
	controller := NewCarpoolController(f.db)
	r.DELETE("/rides/:id/booking", controller.CancelBooking)

	req := httptest.NewRequest(http.MethodDelete, "/rides/1/booking", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (f *carpoolFixture) reloadRide(t *testing.T) models.Ride {
	t.Helper()
	var ride models.Ride
	require.NoError(t, f.db.First(&ride, f.ride.ID).Error)
	return ride
}

func TestCancelBookingRestoresSeatsOnce(t *testing.T) {
	f := seedCarpoolFixture(t)

	w := f.cancel(t)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ride := f.reloadRide(t)
	assert.Equal(t, 3, ride.SeatsAvailable)

	var booking models.RideBooking
	require.NoError(t, f.db.First(&booking, f.booking.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)

	// A repeat cancel must not restore the seats again.
	w = f.cancel(t)
	assert.Equal(t, http.StatusConflict, w.Code)

	ride = f.reloadRide(t)
	assert.Equal(t, 3, ride.SeatsAvailable)
	assert.LessOrEqual(t, ride.SeatsAvailable, ride.SeatsTotal)
}

// The status flip inside the transaction is conditional, so a cancel that
// read the booking before a concurrent cancel landed releases nothing.
func TestCancelBookingStaleReadReleasesNothing(t *testing.T) {
	f := seedCarpoolFixture(t)

	raced := false
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test_race_cancel", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "ride_bookings" {
			return
		}
		raced = true
		// The other cancel wins between this handler's read and its write.
		f.db.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Exec("UPDATE ride_bookings SET status = ? WHERE id = ?",
				models.BookingStatusCancelled, f.booking.ID)
	}))

	w := f.cancel(t)
	assert.Equal(t, http.StatusConflict, w.Code)

	ride := f.reloadRide(t)
	assert.Equal(t, 1, ride.SeatsAvailable)
}
