package services

import (
	"testing"
	"time"

	"postureguard/internal/models"
	"postureguard/internal/testutil"
)

func TestStartSession(t *testing.T) {
	t.Run("creates_sentinel", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		now := time.Now()

		m, err := svc.StartSession(user.ID, "sess-1", now)
		testutil.AssertNoError(t, err)

		if m.SessionID != "sess-1" {
			t.Errorf("expected session id sess-1, got %s", m.SessionID)
		}
		if m.Score != 100 || m.Category != models.CategoryGood {
			t.Errorf("expected sentinel score 100/good, got %v/%s", m.Score, m.Category)
		}
		if m.DurationSeconds != 1 {
			t.Errorf("expected sentinel duration 1, got %d", m.DurationSeconds)
		}
	})

	t.Run("requires_session_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.StartSession(user.ID, "", time.Now())
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestRecordDetection(t *testing.T) {
	t.Run("poor_score_raises_critical_alert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		result, err := svc.RecordDetection(user.ID, DetectionInput{Score: 45, SessionID: "sess-1"}, time.Now())
		testutil.AssertNoError(t, err)

		if result.Category != models.CategoryPoor {
			t.Errorf("expected poor category, got %s", result.Category)
		}
		if !result.AlertTriggered || result.AlertLevel != models.AlertLevelCritical {
			t.Errorf("expected critical alert, got %s triggered=%v", result.AlertLevel, result.AlertTriggered)
		}
		if result.Message != models.CriticalAlertMessage {
			t.Errorf("unexpected alert message: %q", result.Message)
		}
		if !result.Measurement.Feedback.AlertTriggered {
			t.Error("expected alert decision persisted on the measurement")
		}
	})

	t.Run("moderate_score_raises_warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		result, err := svc.RecordDetection(user.ID, DetectionInput{Score: 65}, time.Now())
		testutil.AssertNoError(t, err)

		if result.AlertLevel != models.AlertLevelWarning || !result.AlertTriggered {
			t.Errorf("expected warning alert, got %s", result.AlertLevel)
		}
		if result.Message != models.WarningAlertMessage {
			t.Errorf("unexpected alert message: %q", result.Message)
		}
	})

	t.Run("good_score_no_alert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		result, err := svc.RecordDetection(user.ID, DetectionInput{Score: 85}, time.Now())
		testutil.AssertNoError(t, err)

		if result.AlertTriggered || result.AlertLevel != models.AlertLevelNone {
			t.Errorf("expected no alert for score 85, got %s", result.AlertLevel)
		}
		if result.Category != models.CategoryGood {
			t.Errorf("expected good category, got %s", result.Category)
		}
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := svc.RecordDetection(user.ID, DetectionInput{Score: 101}, time.Now())
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		conf := 1.5
		_, err = svc.RecordDetection(user.ID, DetectionInput{Score: 50, Confidence: &conf}, time.Now())
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		bad := -10.0
		_, err = svc.RecordDetection(user.ID, DetectionInput{Score: 50, JointAngles: &models.JointAngles{Back: &bad}}, time.Now())
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestEndSession(t *testing.T) {
	t.Run("summarizes_session", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-1", 90, now)
		testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-1", 50, now.Add(time.Minute))
		testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-1", 70, now.Add(2*time.Minute))
		// Another session must not leak in.
		testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-2", 10, now)

		summary, err := svc.EndSession(user.ID, "sess-1")
		testutil.AssertNoError(t, err)

		if summary.MeasurementCount != 3 {
			t.Fatalf("expected 3 measurements, got %d", summary.MeasurementCount)
		}
		if summary.AverageScore != 70 {
			t.Errorf("expected average 70, got %v", summary.AverageScore)
		}
		if summary.MinScore != 50 || summary.MaxScore != 90 {
			t.Errorf("expected min 50 max 90, got %v/%v", summary.MinScore, summary.MaxScore)
		}
		if summary.AlertCount != 2 {
			t.Errorf("expected 2 alerts (scores 50 and 70), got %d", summary.AlertCount)
		}
		if summary.GoodPercentage < 33.3 || summary.GoodPercentage > 33.4 {
			t.Errorf("expected good percentage ~33.3, got %v", summary.GoodPercentage)
		}
	})

	t.Run("unknown_session", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.EndSession(user.ID, "no-such-session")
		testutil.AssertAppError(t, err, "SESSION_NOT_FOUND")
	})

	t.Run("foreign_session_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		testutil.CreateTestSessionMeasurement(t, db, owner.ID, "sess-x", 80, time.Now())

		_, err := svc.EndSession(intruder.ID, "sess-x")
		testutil.AssertAppError(t, err, "SESSION_NOT_FOUND")
	})
}

func TestSessionStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSessionService(db)

	user := testutil.CreateTestUser(t, db)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 12 ticks; only the last 10 scores belong in the trend.
	for i := 0; i < 12; i++ {
		testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-t", float64(40+i), now.Add(time.Duration(i)*time.Minute))
	}

	stats, err := svc.SessionStats(user.ID, "sess-t")
	testutil.AssertNoError(t, err)

	if stats.MeasurementCount != 12 {
		t.Fatalf("expected 12 measurements, got %d", stats.MeasurementCount)
	}
	if len(stats.Trend) != 10 {
		t.Fatalf("expected trend of 10 scores, got %d", len(stats.Trend))
	}
	if stats.Trend[0] != 42 || stats.Trend[9] != 51 {
		t.Errorf("expected trend 42..51 oldest first, got %v", stats.Trend)
	}
}

func TestRespondToAlert(t *testing.T) {
	t.Run("records_response", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		m := testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-1", 45, time.Now())

		latency := int64(2500)
		updated, err := svc.RespondToAlert(user.ID, m.ID, models.ResponseCorrected, &latency)
		testutil.AssertNoError(t, err)

		if updated.Feedback.UserResponse != models.ResponseCorrected {
			t.Errorf("expected corrected response, got %s", updated.Feedback.UserResponse)
		}
		if updated.Feedback.ResponseLatencyMs == nil || *updated.Feedback.ResponseLatencyMs != 2500 {
			t.Error("expected response latency persisted")
		}
		if !updated.Feedback.AlertTriggered {
			t.Error("alert flag must survive the response update")
		}
	})

	t.Run("invalid_response", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		user := testutil.CreateTestUser(t, db)
		m := testutil.CreateTestSessionMeasurement(t, db, user.ID, "sess-1", 45, time.Now())

		_, err := svc.RespondToAlert(user.ID, m.ID, "shrugged", nil)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("foreign_measurement", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		m := testutil.CreateTestSessionMeasurement(t, db, owner.ID, "sess-1", 45, time.Now())

		_, err := svc.RespondToAlert(intruder.ID, m.ID, models.ResponseDismissed, nil)
		testutil.AssertAppError(t, err, "MEASUREMENT_NOT_FOUND")
	})
}
