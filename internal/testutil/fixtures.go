package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"postureguard/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plaintext password for every fixture user.
const TestPassword = "password123"

// CreateTestUser creates an active user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates an active user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
		Status:   models.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSettings creates a default settings document for the user.
func CreateTestSettings(t *testing.T, db *gorm.DB, userID string) *models.UserSettings {
	t.Helper()

	settings := models.DefaultSettings(userID)
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("failed to create test settings: %v", err)
	}
	return settings
}

// CreateTestMeasurement creates a measurement with the given score recorded now.
func CreateTestMeasurement(t *testing.T, db *gorm.DB, userID string, score float64) *models.PostureMeasurement {
	t.Helper()
	return CreateTestMeasurementAt(t, db, userID, score, time.Now())
}

// CreateTestMeasurementAt creates a measurement with the given score and
// recording time.
func CreateTestMeasurementAt(t *testing.T, db *gorm.DB, userID string, score float64, recordedAt time.Time) *models.PostureMeasurement {
	t.Helper()

	m := models.NewMeasurement(userID, score, recordedAt)
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test measurement: %v", err)
	}
	return m
}

// CreateTestSessionMeasurement creates a measurement tagged with a session id,
// carrying the server-side alert decision for its score.
func CreateTestSessionMeasurement(t *testing.T, db *gorm.DB, userID, sessionID string, score float64, recordedAt time.Time) *models.PostureMeasurement {
	t.Helper()

	_, triggered, message := models.AlertForScore(score)

	m := models.NewMeasurement(userID, score, recordedAt)
	m.SessionID = sessionID
	m.Feedback = models.Feedback{
		AlertTriggered: triggered,
		Suggestion:     message,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test session measurement: %v", err)
	}
	return m
}
