package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/models"
)

// sessionService handles monitoring-session business logic.
type sessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new SessionServicer.
func NewSessionService(db *gorm.DB) SessionServicer {
	return &sessionService{db: db}
}

// StartSession creates a sentinel measurement (score 100) tagged with the
// caller-supplied session id, marking the session's start.
func (s *sessionService) StartSession(userID, sessionID string, now time.Time) (*models.PostureMeasurement, error) {
	if sessionID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sessionId is required")
	}

	m := models.NewMeasurement(userID, 100, now)
	m.SessionID = sessionID
	m.DurationSeconds = 1

	if err := s.db.Create(m).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return m, nil
}

// RecordDetection persists a detection tick. The caller supplies only the
// score; category and alert decision are derived server-side from fixed
// thresholds.
func (s *sessionService) RecordDetection(userID string, input DetectionInput, now time.Time) (*DetectionResult, error) {
	if input.Score < 0 || input.Score > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "postureScore must be between 0 and 100")
	}
	if input.JointAngles != nil {
		if err := input.JointAngles.Validate(); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}
	if input.Confidence != nil && (*input.Confidence < 0 || *input.Confidence > 1) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "confidence must be between 0 and 1")
	}

	level, triggered, message := models.AlertForScore(input.Score)

	m := models.NewMeasurement(userID, input.Score, now)
	m.SessionID = input.SessionID
	m.JointAngles = input.JointAngles
	if input.DurationSeconds > 0 {
		m.DurationSeconds = input.DurationSeconds
	}
	m.Feedback = models.Feedback{
		AlertTriggered: triggered,
		Suggestion:     message,
	}
	m.Metadata = models.Metadata{
		ModelVersion: input.ModelVersion,
		Confidence:   input.Confidence,
	}

	if err := s.db.Create(m).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &DetectionResult{
		Measurement:    m,
		Category:       m.Category,
		AlertTriggered: triggered,
		AlertLevel:     level,
		Message:        message,
	}, nil
}

// loadSession returns all of a user's measurements for a session id,
// oldest first. An unknown or foreign session id is simply not found.
func (s *sessionService) loadSession(userID, sessionID string) ([]models.PostureMeasurement, error) {
	var rows []models.PostureMeasurement
	if err := s.db.Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("recorded_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrSessionNotFound
	}
	return rows, nil
}

// EndSession aggregates all measurements sharing the session id and
// returns a summary. It creates no new records.
func (s *sessionService) EndSession(userID, sessionID string) (*SessionSummary, error) {
	rows, err := s.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	summary := summarize(sessionID, rows)
	return &summary, nil
}

// SessionStats returns a live rollup plus the last-10 score trend.
func (s *sessionService) SessionStats(userID, sessionID string) (*SessionStats, error) {
	rows, err := s.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	trendStart := 0
	if len(rows) > 10 {
		trendStart = len(rows) - 10
	}
	trend := make([]float64, 0, len(rows)-trendStart)
	for _, m := range rows[trendStart:] {
		trend = append(trend, m.Score)
	}

	return &SessionStats{
		SessionSummary: summarize(sessionID, rows),
		Trend:          trend,
	}, nil
}

// RespondToAlert records the user's reaction to one alert on an owned
// measurement. Not-found and not-owned are indistinguishable.
func (s *sessionService) RespondToAlert(userID, measurementID, response string, latencyMs *int64) (*models.PostureMeasurement, error) {
	switch response {
	case models.ResponseCorrected, models.ResponseIgnored, models.ResponseDismissed, models.ResponseSnoozed:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "response must be one of corrected, ignored, dismissed, snoozed")
	}

	var m models.PostureMeasurement
	if err := s.db.Where("id = ? AND user_id = ?", measurementID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMeasurementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	m.Feedback.UserResponse = response
	m.Feedback.ResponseLatencyMs = latencyMs

	if err := s.db.Save(&m).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &m, nil
}

// summarize computes the session rollup over ordered measurements.
func summarize(sessionID string, rows []models.PostureMeasurement) SessionSummary {
	summary := SessionSummary{
		SessionID:        sessionID,
		MeasurementCount: int64(len(rows)),
		MinScore:         rows[0].Score,
		MaxScore:         rows[0].Score,
	}

	var scoreSum float64
	var good, poor int64
	for i := range rows {
		score := rows[i].Score
		scoreSum += score
		if score < summary.MinScore {
			summary.MinScore = score
		}
		if score > summary.MaxScore {
			summary.MaxScore = score
		}
		summary.TotalDurationSeconds += int64(rows[i].DurationSeconds)
		if rows[i].Feedback.AlertTriggered {
			summary.AlertCount++
		}
		switch rows[i].Category {
		case models.CategoryGood:
			good++
		case models.CategoryPoor:
			poor++
		}
	}

	summary.AverageScore = scoreSum / float64(len(rows))
	summary.GoodPercentage = float64(good) / float64(len(rows)) * 100
	summary.PoorPercentage = float64(poor) / float64(len(rows)) * 100

	return summary
}
