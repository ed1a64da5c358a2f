package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/models"
	"postureguard/internal/services"
)

// SettingsHandler handles per-user preference requests
type SettingsHandler struct {
	settingsService services.SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService services.SettingsServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// QuietHoursPayload mirrors models.QuietHours with binding rules.
type QuietHoursPayload struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start" binding:"required,clock_time"`
	End     string `json:"end" binding:"required,clock_time"`
}

// NotificationsPayload is the notifications bundle as submitted by clients.
type NotificationsPayload struct {
	Enabled          bool              `json:"enabled"`
	PostureAlerts    bool              `json:"postureAlerts"`
	BreakReminders   bool              `json:"breakReminders"`
	ReminderInterval int               `json:"reminderInterval" binding:"required,min=5,max=180"`
	Sound            bool              `json:"sound"`
	QuietHours       QuietHoursPayload `json:"quietHours"`
}

func (p *NotificationsPayload) toModel() models.NotificationSettings {
	return models.NotificationSettings{
		Enabled:          p.Enabled,
		PostureAlerts:    p.PostureAlerts,
		BreakReminders:   p.BreakReminders,
		ReminderInterval: p.ReminderInterval,
		Sound:            p.Sound,
		QuietHours: models.QuietHours{
			Enabled: p.QuietHours.Enabled,
			Start:   p.QuietHours.Start,
			End:     p.QuietHours.End,
		},
	}
}

// WorkingHoursPayload mirrors models.WorkingHours with binding rules.
type WorkingHoursPayload struct {
	Enabled bool     `json:"enabled"`
	Start   string   `json:"start" binding:"required,clock_time"`
	End     string   `json:"end" binding:"required,clock_time"`
	Days    []string `json:"days" binding:"omitempty,dive,weekday"`
}

// MonitoringPayload is the monitoring bundle as submitted by clients.
type MonitoringPayload struct {
	Sensitivity    string              `json:"sensitivity" binding:"required,sensitivity"`
	AutoStart      bool                `json:"autoStart"`
	PauseOnIdle    bool                `json:"pauseOnIdle"`
	WorkingHours   WorkingHoursPayload `json:"workingHours"`
	CameraEnabled  bool                `json:"cameraEnabled"`
	AlertThreshold int                 `json:"alertThreshold" binding:"omitempty,min=0,max=100"`
}

func (p *MonitoringPayload) toModel() models.MonitoringSettings {
	return models.MonitoringSettings{
		Sensitivity: models.MonitoringSensitivity(p.Sensitivity),
		AutoStart:   p.AutoStart,
		PauseOnIdle: p.PauseOnIdle,
		WorkingHours: models.WorkingHours{
			Enabled: p.WorkingHours.Enabled,
			Start:   p.WorkingHours.Start,
			End:     p.WorkingHours.End,
			Days:    p.WorkingHours.Days,
		},
		CameraEnabled:  p.CameraEnabled,
		AlertThreshold: p.AlertThreshold,
	}
}

// GoalsPayload is the goals bundle as submitted by clients.
type GoalsPayload struct {
	DailyScoreTarget    int `json:"dailyScoreTarget" binding:"required,min=50,max=100"`
	WeeklySessionTarget int `json:"weeklySessionTarget" binding:"omitempty,min=1,max=100"`
	DailyAlertLimit     int `json:"dailyAlertLimit" binding:"omitempty,min=1,max=500"`
}

func (p *GoalsPayload) toModel() models.GoalSettings {
	return models.GoalSettings{
		DailyScoreTarget:    p.DailyScoreTarget,
		WeeklySessionTarget: p.WeeklySessionTarget,
		DailyAlertLimit:     p.DailyAlertLimit,
	}
}

// DisplayPayload is the display bundle as submitted by clients.
type DisplayPayload struct {
	Theme      string `json:"theme" binding:"omitempty,theme"`
	Language   string `json:"language"`
	CompactUI  bool   `json:"compactUi"`
	ShowScores bool   `json:"showScores"`
}

func (p *DisplayPayload) toModel() models.DisplaySettings {
	return models.DisplaySettings{
		Theme:      p.Theme,
		Language:   p.Language,
		CompactUI:  p.CompactUI,
		ShowScores: p.ShowScores,
	}
}

// UpdateSettingsRequest is the whole-document update payload. Submitted
// bundles replace their stored counterpart wholesale; omitted bundles are
// left as stored.
type UpdateSettingsRequest struct {
	Notifications *NotificationsPayload         `json:"notifications"`
	Monitoring    *MonitoringPayload            `json:"monitoring"`
	Privacy       *models.PrivacySettings       `json:"privacy"`
	Display       *DisplayPayload               `json:"display"`
	Goals         *GoalsPayload                 `json:"goals"`
	Accessibility *models.AccessibilitySettings `json:"accessibility"`
	Integrations  *models.IntegrationSettings   `json:"integrations"`
	Data          *models.DataSettings          `json:"data"`
}

// Get returns the user's settings, creating defaults on first access
// @Summary     Get settings
// @Description Get the authenticated user's settings, lazily created with defaults
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.UserSettings "Settings document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settingsService.GetOrCreate(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Update applies a whole-document settings update
// @Summary     Update settings
// @Description Shallow per-top-level-key merge: submitted bundles replace their stored counterpart wholesale
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Settings bundles to replace"
// @Success     200 {object} models.UserSettings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.SettingsUpdate{
		Privacy:       req.Privacy,
		Accessibility: req.Accessibility,
		Integrations:  req.Integrations,
		Data:          req.Data,
	}
	if req.Display != nil {
		d := req.Display.toModel()
		update.Display = &d
	}
	if req.Notifications != nil {
		n := req.Notifications.toModel()
		update.Notifications = &n
	}
	if req.Monitoring != nil {
		m := req.Monitoring.toModel()
		update.Monitoring = &m
	}
	if req.Goals != nil {
		g := req.Goals.toModel()
		update.Goals = &g
	}

	settings, err := h.settingsService.Update(userID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateNotifications replaces the notifications bundle verbatim
// @Summary     Replace notification settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body NotificationsPayload true "Notifications bundle"
// @Success     200 {object} models.UserSettings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /settings/notifications [put]
func (h *SettingsHandler) UpdateNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req NotificationsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.ReplaceNotifications(userID, req.toModel())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateMonitoring replaces the monitoring bundle verbatim
// @Summary     Replace monitoring settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MonitoringPayload true "Monitoring bundle"
// @Success     200 {object} models.UserSettings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /settings/monitoring [put]
func (h *SettingsHandler) UpdateMonitoring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MonitoringPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.ReplaceMonitoring(userID, req.toModel())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateGoals replaces the goals bundle verbatim
// @Summary     Replace goal settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GoalsPayload true "Goals bundle"
// @Success     200 {object} models.UserSettings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /settings/goals [put]
func (h *SettingsHandler) UpdateGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GoalsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.ReplaceGoals(userID, req.toModel())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Reset restores the default settings bundle
// @Summary     Reset settings to defaults
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.UserSettings "Default settings"
// @Router      /settings/reset [delete]
func (h *SettingsHandler) Reset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settingsService.Reset(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Export returns the full settings document plus a profile snapshot
// @Summary     Export settings
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SettingsExport "Settings export"
// @Router      /settings/export [get]
func (h *SettingsHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	export, err := h.settingsService.Export(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, export)
}
