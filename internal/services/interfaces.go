package services

import (
	"time"

	"postureguard/internal/models"
	"postureguard/internal/pagination"
)

// ProfileUpdate holds optional profile fields for a partial update. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Age      *int
	HeightCm *float64
	WeightKg *float64
}

// UserServicer defines the contract for account-related business logic.
type UserServicer interface {
	Register(name, email, password string, age *int, heightCm, weightKg *float64) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateProfile(userID string, update ProfileUpdate) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	DeleteUser(userID string) error
}

// SettingsUpdate holds the submitted subset of a whole-settings update.
// Submitted bundles replace their stored counterpart wholesale (shallow
// per-top-level-key merge); nil bundles are kept as stored.
type SettingsUpdate struct {
	Notifications *models.NotificationSettings
	Monitoring    *models.MonitoringSettings
	Privacy       *models.PrivacySettings
	Display       *models.DisplaySettings
	Goals         *models.GoalSettings
	Accessibility *models.AccessibilitySettings
	Integrations  *models.IntegrationSettings
	Data          *models.DataSettings
}

// SettingsExport is the full settings document plus a profile snapshot.
type SettingsExport struct {
	ExportedAt time.Time            `json:"exportedAt"`
	User       *models.User         `json:"user"`
	Settings   *models.UserSettings `json:"settings"`
}

// SettingsServicer defines the contract for per-user preferences.
type SettingsServicer interface {
	GetOrCreate(userID string) (*models.UserSettings, error)
	Update(userID string, update SettingsUpdate) (*models.UserSettings, error)
	ReplaceNotifications(userID string, n models.NotificationSettings) (*models.UserSettings, error)
	ReplaceMonitoring(userID string, m models.MonitoringSettings) (*models.UserSettings, error)
	ReplaceGoals(userID string, g models.GoalSettings) (*models.UserSettings, error)
	Reset(userID string) (*models.UserSettings, error)
	Export(userID string) (*SettingsExport, error)
}

// LogInput is the payload for a direct measurement log.
type LogInput struct {
	Score           float64
	DurationSeconds int
	JointAngles     *models.JointAngles
	Environment     models.Environment
	Metadata        models.Metadata
	SessionID       string
	RecordedAt      *time.Time
}

// MeasurementFilter holds optional filter parameters for listing measurements.
type MeasurementFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *models.PostureCategory
}

// MeasurementUpdate holds optional fields for a partial measurement update.
type MeasurementUpdate struct {
	Score           *float64
	DurationSeconds *int
	JointAngles     *models.JointAngles
	Environment     *models.Environment
}

// CategoryCounts tallies measurements per posture category.
type CategoryCounts struct {
	Good     int64 `json:"good"`
	Moderate int64 `json:"moderate"`
	Poor     int64 `json:"poor"`
}

// HourlyBucket is a per-hour analytics rollup.
type HourlyBucket struct {
	Hour         int     `json:"hour"`
	AverageScore float64 `json:"averageScore"`
	Count        int64   `json:"count"`
}

// DailyBucket is a per-day analytics rollup.
type DailyBucket struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	AverageScore float64 `json:"averageScore"`
	Count        int64   `json:"count"`
}

// AnalyticsSummary is the read-only rollup served by the analytics endpoint.
type AnalyticsSummary struct {
	AverageScore      float64        `json:"averageScore"`
	TotalMeasurements int64          `json:"totalMeasurements"`
	Categories        CategoryCounts `json:"categories"`
	HourlyBuckets     []HourlyBucket `json:"hourlyBuckets"`
	DailyBuckets      []DailyBucket  `json:"dailyBuckets"`
}

// DailyDashboard summarizes a single day with a delta against the day before.
type DailyDashboard struct {
	Date                 string         `json:"date"`
	AverageScore         float64        `json:"averageScore"`
	MeasurementCount     int64          `json:"measurementCount"`
	Categories           CategoryCounts `json:"categories"`
	AlertCount           int64          `json:"alertCount"`
	TotalDurationSeconds int64          `json:"totalDurationSeconds"`
	ScoreDeltaVsPrevious float64        `json:"scoreDeltaVsPrevious"`
}

// WeeklyDashboard summarizes the trailing seven days.
type WeeklyDashboard struct {
	AverageScore     float64       `json:"averageScore"`
	MeasurementCount int64         `json:"measurementCount"`
	Days             []DailyBucket `json:"days"`
	BestDay          string        `json:"bestDay,omitempty"`
	WorstDay         string        `json:"worstDay,omitempty"`
}

// DashboardStats is the all-time rollup with a today-vs-yesterday delta.
type DashboardStats struct {
	TotalMeasurements int64          `json:"totalMeasurements"`
	AverageScore      float64        `json:"averageScore"`
	Categories        CategoryCounts `json:"categories"`
	TodayAverage      float64        `json:"todayAverage"`
	YesterdayAverage  float64        `json:"yesterdayAverage"`
	ScoreDelta        float64        `json:"scoreDelta"`
}

// MeasurementServicer defines the contract for posture measurement logic.
type MeasurementServicer interface {
	Log(userID string, input LogInput) (*models.PostureMeasurement, error)
	List(userID string, filter MeasurementFilter, page pagination.PageRequest) (*pagination.PageResponse[models.PostureMeasurement], error)
	Latest(userID string) (*models.PostureMeasurement, error)
	Update(userID, measurementID string, update MeasurementUpdate) (*models.PostureMeasurement, error)
	Delete(userID, measurementID string) error
	Analytics(userID string, from, to *time.Time) (*AnalyticsSummary, error)
	DashboardToday(userID string, now time.Time) (*DailyDashboard, error)
	DashboardWeek(userID string, now time.Time) (*WeeklyDashboard, error)
	DashboardStats(userID string, now time.Time) (*DashboardStats, error)
}

// DetectionInput is the payload of the detection endpoint: the caller
// supplies only the raw score plus optional context.
type DetectionInput struct {
	Score           float64
	SessionID       string
	DurationSeconds int
	JointAngles     *models.JointAngles
	Confidence      *float64
	ModelVersion    string
}

// DetectionResult carries the persisted measurement plus the server-side
// alert decision.
type DetectionResult struct {
	Measurement    *models.PostureMeasurement `json:"measurement"`
	Category       models.PostureCategory     `json:"category"`
	AlertTriggered bool                       `json:"alertTriggered"`
	AlertLevel     models.AlertLevel          `json:"alertLevel"`
	Message        string                     `json:"message,omitempty"`
}

// SessionSummary is the rollup over all measurements sharing a session id.
type SessionSummary struct {
	SessionID            string  `json:"sessionId"`
	MeasurementCount     int64   `json:"measurementCount"`
	AverageScore         float64 `json:"averageScore"`
	MinScore             float64 `json:"minScore"`
	MaxScore             float64 `json:"maxScore"`
	TotalDurationSeconds int64   `json:"totalDurationSeconds"`
	AlertCount           int64   `json:"alertCount"`
	GoodPercentage       float64 `json:"goodPercentage"`
	PoorPercentage       float64 `json:"poorPercentage"`
}

// SessionStats is a live session rollup plus the recent score trend.
type SessionStats struct {
	SessionSummary
	Trend []float64 `json:"trend"` // last 10 scores, oldest first
}

// SessionServicer defines the contract for monitoring-session logic.
type SessionServicer interface {
	StartSession(userID, sessionID string, now time.Time) (*models.PostureMeasurement, error)
	RecordDetection(userID string, input DetectionInput, now time.Time) (*DetectionResult, error)
	EndSession(userID, sessionID string) (*SessionSummary, error)
	SessionStats(userID, sessionID string) (*SessionStats, error)
	RespondToAlert(userID, measurementID, response string, latencyMs *int64) (*models.PostureMeasurement, error)
}
