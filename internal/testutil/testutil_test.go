package testutil_test

import (
	"testing"

	"postureguard/internal/errors"
	"postureguard/internal/models"
	"postureguard/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "user_settings", "posture_measurements"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a non-empty ID")
	}
	if user.Status != models.UserStatusActive {
		t.Errorf("expected active user, got %s", user.Status)
	}

	settings := testutil.CreateTestSettings(t, db, user.ID)
	if settings.UserID != user.ID {
		t.Errorf("expected settings for user %s, got %s", user.ID, settings.UserID)
	}

	m := testutil.CreateTestMeasurement(t, db, user.ID, 85)
	if m.Category != models.CategoryGood {
		t.Errorf("expected good category for score 85, got %s", m.Category)
	}

	sm := testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-1", 45, m.RecordedAt)
	if !sm.Feedback.AlertTriggered {
		t.Error("expected alert for score 45")
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrUserNotFound, "USER_NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, errors.ErrUserNotFound), "INTERNAL_ERROR")
}
