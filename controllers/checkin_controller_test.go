package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/utils"
)

// openTestDB gives each test an isolated in-memory database. The pool is
// pinned to one connection because every :memory: connection is its own
// database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.ActivityParticipant{},
		&models.ActivityCheckin{},
		&models.PointTransaction{},
		&models.Ride{},
		&models.RideBooking{},
	))

	return db
}

func authInjector(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(utils.UserContextKey), &utils.UserClaims{UserID: userID, Role: role})
	}
}

type checkinFixture struct {
	db          *gorm.DB
	user        models.User
	activity    models.Activity
	participant models.ActivityParticipant
}

// seedCheckinFixture creates an ongoing activity with GPS verification at
// (31.23, 121.47) and a registered participant inside the check-in window.
func seedCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()
	db := openTestDB(t)

	user := models.User{Username: "rider", Email: "rider@campus.edu"}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now()
	activity := models.Activity{
		Title:                "Orientation Fair",
		Status:               models.ActivityStatusOngoing,
		OrganizerID:          user.ID,
		StartTime:            now.Add(-time.Hour),
		EndTime:              now.Add(time.Hour),
		CheckinEnabled:       true,
		CheckinStartOffset:   30,
		CheckinEndOffset:     30,
		LocationVerification: true,
		Latitude:             31.23,
		Longitude:            121.47,
		VerificationRadius:   200,
		RewardPoints:         10,
	}
	require.NoError(t, db.Create(&activity).Error)

	participant := models.ActivityParticipant{
		ActivityID: activity.ID,
		UserID:     user.ID,
		Status:     "registered",
	}
	require.NoError(t, db.Create(&participant).Error)

	return &checkinFixture{db: db, user: user, activity: activity, participant: participant}
}

func (f *checkinFixture) post(t *testing.T, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authInjector(f.user.ID, models.RoleUser))
	controller := NewCheckinController(f.db)
	r.POST("/activities/:id/checkin", controller.Checkin)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/activities/1/checkin", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (f *checkinFixture) auditRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.ActivityCheckin{}).
		Where("activity_id = ? AND user_id = ?", f.activity.ID, f.user.ID).
		Count(&n).Error)
	return n
}

func TestCheckinOutOfRangeLeavesNoTrace(t *testing.T) {
	f := seedCheckinFixture(t)

	// ~5.5km north of the venue
	lat, lng := 31.28, 121.47
	w := f.post(t, gin.H{"latitude": lat, "longitude": lng})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "out_of_range", resp["code"])

	// A rejected attempt must not write anything.
	assert.Equal(t, int64(0), f.auditRows(t))

	var participant models.ActivityParticipant
	require.NoError(t, f.db.First(&participant, f.participant.ID).Error)
	assert.False(t, participant.CheckedIn)

	var ledger int64
	require.NoError(t, f.db.Model(&models.PointTransaction{}).Where("user_id = ?", f.user.ID).Count(&ledger).Error)
	assert.Equal(t, int64(0), ledger)
}

func TestCheckinRequiresLocationWhenVerified(t *testing.T) {
	f := seedCheckinFixture(t)

	w := f.post(t, gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "location_required", resp["code"])
	assert.Equal(t, int64(0), f.auditRows(t))
}

func TestCheckinWritesOneRecordAndConflictsOnRepeat(t *testing.T) {
	f := seedCheckinFixture(t)
	body := gin.H{"latitude": 31.2301, "longitude": 121.4701}

	w := f.post(t, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, int64(1), f.auditRows(t))

	var participant models.ActivityParticipant
	require.NoError(t, f.db.First(&participant, f.participant.ID).Error)
	assert.True(t, participant.CheckedIn)
	assert.NotNil(t, participant.CheckinTime)
	assert.True(t, participant.LocationVerified)

	var tx models.PointTransaction
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).First(&tx).Error)
	assert.Equal(t, models.PointSourceCheckin, tx.Source)
	assert.Equal(t, 10, tx.Points)

	var user models.User
	require.NoError(t, f.db.First(&user, f.user.ID).Error)
	assert.Equal(t, int64(10), user.TotalPoints)

	// Repeating the call must conflict and leave the single audit row alone.
	w = f.post(t, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(1), f.auditRows(t))

	require.NoError(t, f.db.First(&user, f.user.ID).Error)
	assert.Equal(t, int64(10), user.TotalPoints)
}

// The participant flip is conditional, so a request that loaded a stale
// not-checked-in row loses cleanly when another one lands first.
func TestCheckinStaleReadLosesWithoutSecondRecord(t *testing.T) {
	f := seedCheckinFixture(t)

	raced := false
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test_race_checkin", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "activity_participants" {
			return
		}
		raced = true
		// Another request wins between this handler's read and its write.
		checkinTime := time.Now()
		f.db.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Exec("UPDATE activity_participants SET checked_in = ?, checkin_time = ? WHERE id = ?",
				true, checkinTime, f.participant.ID)
	}))

	w := f.post(t, gin.H{"latitude": 31.2301, "longitude": 121.4701})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(0), f.auditRows(t))

	var user models.User
	require.NoError(t, f.db.First(&user, f.user.ID).Error)
	assert.Equal(t, int64(0), user.TotalPoints)
}
