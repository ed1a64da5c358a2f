package models

import (
	"fmt"
	"time"
)

// PostureCategory is the coarse classification derived from a score.
type PostureCategory string

const (
	CategoryGood     PostureCategory = "good"
	CategoryModerate PostureCategory = "moderate"
	CategoryPoor     PostureCategory = "poor"
)

// Score thresholds for category and alert derivation.
const (
	GoodScoreThreshold     = 80
	ModerateScoreThreshold = 60
)

// AlertLevel indicates the severity of a detection alert.
type AlertLevel string

const (
	AlertLevelNone     AlertLevel = "none"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

// Alert messages returned by the detection endpoint.
const (
	WarningAlertMessage  = "Your posture is slipping. Adjust your position."
	CriticalAlertMessage = "Poor posture detected! Sit up straight and align your back."
)

// ActivityType describes what the user was doing during a measurement.
type ActivityType string

const (
	ActivityWorking  ActivityType = "working"
	ActivityGaming   ActivityType = "gaming"
	ActivityStudying ActivityType = "studying"
	ActivityWatching ActivityType = "watching"
	ActivityReading  ActivityType = "reading"
	ActivityBrowsing ActivityType = "browsing"
	ActivityOther    ActivityType = "other"
)

// UserResponse values for alert feedback.
const (
	ResponseCorrected = "corrected"
	ResponseIgnored   = "ignored"
	ResponseDismissed = "dismissed"
	ResponseSnoozed   = "snoozed"
)

// JointAngles holds optional fine-grained angle measurements in degrees.
type JointAngles struct {
	Neck     *float64 `json:"neck,omitempty"`
	Shoulder *float64 `json:"shoulder,omitempty"`
	Back     *float64 `json:"back,omitempty"`
	Hip      *float64 `json:"hip,omitempty"`
	Knee     *float64 `json:"knee,omitempty"`
}

// Validate range-checks each supplied angle independently.
func (j *JointAngles) Validate() error {
	check := func(name string, v *float64) error {
		if v != nil && (*v < 0 || *v > 180) {
			return fmt.Errorf("%s angle must be between 0 and 180 degrees", name)
		}
		return nil
	}
	for name, v := range map[string]*float64{
		"neck": j.Neck, "shoulder": j.Shoulder, "back": j.Back, "hip": j.Hip, "knee": j.Knee,
	} {
		if err := check(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Environment describes the measurement context.
type Environment struct {
	Activity  ActivityType `json:"activity,omitempty"`
	Device    string       `json:"device,omitempty"`
	Lighting  string       `json:"lighting,omitempty"`
	DeskSetup string       `json:"deskSetup,omitempty"`
}

// Feedback captures the alert decision and the user's reaction to it.
type Feedback struct {
	AlertTriggered    bool   `json:"alertTriggered"`
	Suggestion        string `json:"suggestion,omitempty"`
	UserResponse      string `json:"userResponse,omitempty"`
	ResponseLatencyMs *int64 `json:"responseLatencyMs,omitempty"`
}

// Metadata holds free-form measurement provenance.
type Metadata struct {
	AppVersion   string   `json:"appVersion,omitempty"`
	ModelVersion string   `json:"modelVersion,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"` // 0-1
}

// PostureMeasurement is one timestamped posture sample owned by a user.
//
// Category is always derived from Score via CategoryForScore; constructors
// and update paths recompute it whenever the score changes, so the two can
// never diverge.
type PostureMeasurement struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index:idx_measurements_user_recorded,priority:1;index:idx_measurements_user_category,priority:1" json:"userId"`
	Score           float64         `gorm:"not null" json:"score"`
	Category        PostureCategory `gorm:"not null;index:idx_measurements_user_category,priority:2" json:"category"`
	JointAngles     *JointAngles    `gorm:"serializer:json" json:"jointAngles,omitempty"`
	DurationSeconds int             `gorm:"not null;default:60" json:"durationSeconds"`
	Environment     Environment     `gorm:"serializer:json" json:"environment"`
	Feedback        Feedback        `gorm:"serializer:json" json:"feedback"`
	Metadata        Metadata        `gorm:"serializer:json" json:"metadata"`
	SessionID       string          `gorm:"index" json:"sessionId,omitempty"`
	RecordedAt      time.Time       `gorm:"not null;index:idx_measurements_user_recorded,priority:2,sort:desc;index:idx_measurements_user_category,priority:3,sort:desc" json:"recordedAt"`
}

// NewMeasurement constructs a measurement with the category derived from
// the score before the value is considered constructed.
func NewMeasurement(userID string, score float64, recordedAt time.Time) *PostureMeasurement {
	return &PostureMeasurement{
		UserID:          userID,
		Score:           score,
		Category:        CategoryForScore(score),
		DurationSeconds: 60,
		RecordedAt:      recordedAt,
	}
}

// SetScore updates the score and recomputes the derived category.
func (m *PostureMeasurement) SetScore(score float64) {
	m.Score = score
	m.Category = CategoryForScore(score)
}

// CategoryForScore maps a 0-100 score onto its posture category.
func CategoryForScore(score float64) PostureCategory {
	switch {
	case score >= GoodScoreThreshold:
		return CategoryGood
	case score >= ModerateScoreThreshold:
		return CategoryModerate
	default:
		return CategoryPoor
	}
}

// AlertForScore decides, from the score alone, whether a detection should
// raise an alert and with what severity and suggestion text.
func AlertForScore(score float64) (AlertLevel, bool, string) {
	switch {
	case score >= GoodScoreThreshold:
		return AlertLevelNone, false, ""
	case score >= ModerateScoreThreshold:
		return AlertLevelWarning, true, WarningAlertMessage
	default:
		return AlertLevelCritical, true, CriticalAlertMessage
	}
}
