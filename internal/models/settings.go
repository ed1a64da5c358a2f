package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonitoringSensitivity controls how aggressively posture drift is flagged.
type MonitoringSensitivity string

const (
	SensitivityLow    MonitoringSensitivity = "low"
	SensitivityMedium MonitoringSensitivity = "medium"
	SensitivityHigh   MonitoringSensitivity = "high"
)

// QuietHours is a daily window during which notifications are muted.
// Start and End are "HH:MM" clock times; a window with Start > End wraps
// past midnight.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// NotificationSettings groups notification preferences.
type NotificationSettings struct {
	Enabled          bool       `json:"enabled"`
	PostureAlerts    bool       `json:"postureAlerts"`
	BreakReminders   bool       `json:"breakReminders"`
	ReminderInterval int        `json:"reminderInterval"` // minutes, 5-180
	Sound            bool       `json:"sound"`
	QuietHours       QuietHours `json:"quietHours"`
}

// WorkingHours is the daily window (on selected weekdays) during which
// monitoring runs.
type WorkingHours struct {
	Enabled bool     `json:"enabled"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Days    []string `json:"days"`
}

// MonitoringSettings groups posture-monitoring preferences.
type MonitoringSettings struct {
	Sensitivity    MonitoringSensitivity `json:"sensitivity"`
	AutoStart      bool                  `json:"autoStart"`
	PauseOnIdle    bool                  `json:"pauseOnIdle"`
	WorkingHours   WorkingHours          `json:"workingHours"`
	CameraEnabled  bool                  `json:"cameraEnabled"`
	AlertThreshold int                   `json:"alertThreshold"`
}

// PrivacySettings groups privacy toggles.
type PrivacySettings struct {
	ShareAnalytics  bool `json:"shareAnalytics"`
	StoreVideo      bool `json:"storeVideo"`
	AnonymizeExport bool `json:"anonymizeExport"`
}

// DisplaySettings groups UI preferences.
type DisplaySettings struct {
	Theme      string `json:"theme"`
	Language   string `json:"language"`
	CompactUI  bool   `json:"compactUi"`
	ShowScores bool   `json:"showScores"`
}

// GoalSettings groups numeric targets.
type GoalSettings struct {
	DailyScoreTarget    int `json:"dailyScoreTarget"`    // 50-100
	WeeklySessionTarget int `json:"weeklySessionTarget"` // sessions per week
	DailyAlertLimit     int `json:"dailyAlertLimit"`
}

// AccessibilitySettings groups accessibility toggles.
type AccessibilitySettings struct {
	HighContrast  bool `json:"highContrast"`
	LargeText     bool `json:"largeText"`
	ReducedMotion bool `json:"reducedMotion"`
}

// IntegrationSettings groups third-party integration toggles.
type IntegrationSettings struct {
	CalendarSync  bool `json:"calendarSync"`
	HealthAppSync bool `json:"healthAppSync"`
	SlackStatus   bool `json:"slackStatus"`
}

// DataSettings groups retention and export preferences.
type DataSettings struct {
	RetentionDays int  `json:"retentionDays"`
	AutoExport    bool `json:"autoExport"`
}

// UserSettings is the per-user preference document, one-to-one with User
// and created lazily with defaults on first access.
type UserSettings struct {
	Base
	UserID        string                `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Notifications NotificationSettings  `gorm:"serializer:json" json:"notifications"`
	Monitoring    MonitoringSettings    `gorm:"serializer:json" json:"monitoring"`
	Privacy       PrivacySettings       `gorm:"serializer:json" json:"privacy"`
	Display       DisplaySettings       `gorm:"serializer:json" json:"display"`
	Goals         GoalSettings          `gorm:"serializer:json" json:"goals"`
	Accessibility AccessibilitySettings `gorm:"serializer:json" json:"accessibility"`
	Integrations  IntegrationSettings   `gorm:"serializer:json" json:"integrations"`
	Data          DataSettings          `gorm:"serializer:json" json:"data"`
}

// DefaultSettings returns the documented default preference bundle for a user.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID: userID,
		Notifications: NotificationSettings{
			Enabled:          true,
			PostureAlerts:    true,
			BreakReminders:   true,
			ReminderInterval: 30,
			Sound:            true,
			QuietHours:       QuietHours{Enabled: false, Start: "22:00", End: "07:00"},
		},
		Monitoring: MonitoringSettings{
			Sensitivity: SensitivityMedium,
			AutoStart:   false,
			PauseOnIdle: true,
			WorkingHours: WorkingHours{
				Enabled: false,
				Start:   "09:00",
				End:     "17:00",
				Days:    []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			},
			CameraEnabled:  true,
			AlertThreshold: 60,
		},
		Privacy: PrivacySettings{ShareAnalytics: false, StoreVideo: false, AnonymizeExport: true},
		Display: DisplaySettings{Theme: "system", Language: "en", CompactUI: false, ShowScores: true},
		Goals: GoalSettings{
			DailyScoreTarget:    75,
			WeeklySessionTarget: 5,
			DailyAlertLimit:     20,
		},
		Accessibility: AccessibilitySettings{},
		Integrations:  IntegrationSettings{},
		Data:          DataSettings{RetentionDays: 365, AutoExport: false},
	}
}

// Validate checks the cross-field invariants of the preference bundles.
func (s *UserSettings) Validate() error {
	if s.Monitoring.WorkingHours.Enabled && len(s.Monitoring.WorkingHours.Days) == 0 {
		return fmt.Errorf("workingHours: at least one day must be selected when enabled")
	}
	if s.Notifications.QuietHours.Enabled && s.Notifications.QuietHours.Start == s.Notifications.QuietHours.End {
		return fmt.Errorf("quietHours: start and end must differ when enabled")
	}
	return nil
}

// InQuietHours reports whether the given instant falls inside the
// configured quiet-hours window.
func (s *UserSettings) InQuietHours(now time.Time) bool {
	q := s.Notifications.QuietHours
	if !q.Enabled {
		return false
	}
	return clockWindowContains(q.Start, q.End, now)
}

// InWorkingHours reports whether the given instant falls inside the
// configured working-hours window on a selected weekday.
func (s *UserSettings) InWorkingHours(now time.Time) bool {
	w := s.Monitoring.WorkingHours
	if !w.Enabled {
		return false
	}
	weekday := strings.ToLower(now.Weekday().String())
	found := false
	for _, d := range w.Days {
		if strings.ToLower(d) == weekday {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	return clockWindowContains(w.Start, w.End, now)
}

// clockWindowContains checks whether now's clock time lies within
// [start, end). A window where start > end wraps past midnight.
func clockWindowContains(start, end string, now time.Time) bool {
	startMin, ok1 := parseClock(start)
	endMin, ok2 := parseClock(end)
	if !ok1 || !ok2 {
		return false
	}
	nowMin := now.Hour()*60 + now.Minute()
	if startMin <= endMin {
		return nowMin >= startMin && nowMin < endMin
	}
	return nowMin >= startMin || nowMin < endMin
}

// parseClock parses an "HH:MM" clock time into minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
