package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/models"
	"postureguard/internal/pagination"
	"postureguard/internal/services"
)

// PostureHandler handles measurement logging and analytics requests
type PostureHandler struct {
	measurementService services.MeasurementServicer
}

// NewPostureHandler creates a new PostureHandler
func NewPostureHandler(measurementService services.MeasurementServicer) *PostureHandler {
	return &PostureHandler{measurementService: measurementService}
}

// JointAnglesPayload mirrors models.JointAngles with binding rules.
type JointAnglesPayload struct {
	Neck     *float64 `json:"neck" binding:"omitempty,min=0,max=180"`
	Shoulder *float64 `json:"shoulder" binding:"omitempty,min=0,max=180"`
	Back     *float64 `json:"back" binding:"omitempty,min=0,max=180"`
	Hip      *float64 `json:"hip" binding:"omitempty,min=0,max=180"`
	Knee     *float64 `json:"knee" binding:"omitempty,min=0,max=180"`
}

func (p *JointAnglesPayload) toModel() *models.JointAngles {
	if p == nil {
		return nil
	}
	return &models.JointAngles{
		Neck:     p.Neck,
		Shoulder: p.Shoulder,
		Back:     p.Back,
		Hip:      p.Hip,
		Knee:     p.Knee,
	}
}

// EnvironmentPayload mirrors models.Environment with binding rules.
type EnvironmentPayload struct {
	Activity  string `json:"activity" binding:"omitempty,activity_type"`
	Device    string `json:"device" binding:"omitempty,max=100"`
	Lighting  string `json:"lighting" binding:"omitempty,max=100"`
	DeskSetup string `json:"deskSetup" binding:"omitempty,max=255"`
}

func (p *EnvironmentPayload) toModel() models.Environment {
	if p == nil {
		return models.Environment{}
	}
	return models.Environment{
		Activity:  models.ActivityType(p.Activity),
		Device:    p.Device,
		Lighting:  p.Lighting,
		DeskSetup: p.DeskSetup,
	}
}

// LogMeasurementRequest is the direct measurement log payload.
type LogMeasurementRequest struct {
	Score           *float64            `json:"score" binding:"required,min=0,max=100"`
	DurationSeconds int                 `json:"durationSeconds" binding:"omitempty,min=1,max=86400"`
	JointAngles     *JointAnglesPayload `json:"jointAngles"`
	Environment     *EnvironmentPayload `json:"environment"`
	SessionID       string              `json:"sessionId" binding:"omitempty,max=100"`
	AppVersion      string              `json:"appVersion" binding:"omitempty,max=50"`
	ModelVersion    string              `json:"modelVersion" binding:"omitempty,max=50"`
	Confidence      *float64            `json:"confidence" binding:"omitempty,min=0,max=1"`
	RecordedAt      *time.Time          `json:"recordedAt"`
}

// UpdateMeasurementRequest is the partial measurement update payload.
type UpdateMeasurementRequest struct {
	Score           *float64            `json:"score" binding:"omitempty,min=0,max=100"`
	DurationSeconds *int                `json:"durationSeconds" binding:"omitempty,min=1,max=86400"`
	JointAngles     *JointAnglesPayload `json:"jointAngles"`
	Environment     *EnvironmentPayload `json:"environment"`
}

// Log persists a direct measurement
// @Summary     Log a posture measurement
// @Description Persist a posture measurement; the category is derived from the score
// @Tags        posture
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LogMeasurementRequest true "Measurement data"
// @Success     201 {object} models.PostureMeasurement "Persisted measurement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /posture/log [post]
func (h *PostureHandler) Log(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LogMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	measurement, err := h.measurementService.Log(userID, services.LogInput{
		Score:           *req.Score,
		DurationSeconds: req.DurationSeconds,
		JointAngles:     req.JointAngles.toModel(),
		Environment:     req.Environment.toModel(),
		Metadata: models.Metadata{
			AppVersion:   req.AppVersion,
			ModelVersion: req.ModelVersion,
			Confidence:   req.Confidence,
		},
		SessionID:  req.SessionID,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"measurement": measurement})
}

// List returns the user's measurements, newest first
// @Summary     List posture measurements
// @Description List the authenticated user's measurements with optional date and category filters
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Param       startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param       endDate query string false "End date (YYYY-MM-DD or RFC 3339)"
// @Param       postureType query string false "Category filter (good|moderate|poor)"
// @Param       page query int false "Page number"
// @Param       limit query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.PostureMeasurement] "Measurement page"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /posture/logs [get]
func (h *PostureHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := bindMeasurementFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.measurementService.List(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindMeasurementFilter parses the optional list/analytics query filters.
func bindMeasurementFilter(c *gin.Context) (services.MeasurementFilter, error) {
	var filter services.MeasurementFilter

	startDate, err := parseDateQuery(c, "startDate")
	if err != nil {
		return filter, err
	}
	endDate, err := parseDateQuery(c, "endDate")
	if err != nil {
		return filter, err
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	if raw := c.Query("postureType"); raw != "" {
		category := models.PostureCategory(raw)
		switch category {
		case models.CategoryGood, models.CategoryModerate, models.CategoryPoor:
			filter.Category = &category
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "postureType must be one of good, moderate, poor")
		}
	}

	return filter, nil
}

// Latest returns the most recent measurement
// @Summary     Latest measurement
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.PostureMeasurement "Most recent measurement"
// @Failure     404 {object} ErrorResponse "No measurements yet"
// @Router      /posture/latest [get]
func (h *PostureHandler) Latest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	measurement, err := h.measurementService.Latest(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"measurement": measurement})
}

// Update applies a partial update to an owned measurement
// @Summary     Update a measurement
// @Description Update fields of an owned measurement; the category tracks any score change
// @Tags        posture
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Measurement id"
// @Param       request body UpdateMeasurementRequest true "Fields to update"
// @Success     200 {object} models.PostureMeasurement "Updated measurement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /posture/logs/{id} [put]
func (h *PostureHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.MeasurementUpdate{
		Score:           req.Score,
		DurationSeconds: req.DurationSeconds,
		JointAngles:     req.JointAngles.toModel(),
	}
	if req.Environment != nil {
		env := req.Environment.toModel()
		update.Environment = &env
	}

	measurement, err := h.measurementService.Update(userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"measurement": measurement})
}

// Delete removes an owned measurement
// @Summary     Delete a measurement
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Measurement id"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /posture/logs/{id} [delete]
func (h *PostureHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.measurementService.Delete(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Measurement deleted"})
}

// Analytics returns the read-side rollup over an optional date window
// @Summary     Posture analytics
// @Description Average score, per-category counts, and hourly/daily buckets
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Param       startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param       endDate query string false "End date (YYYY-MM-DD or RFC 3339)"
// @Success     200 {object} services.AnalyticsSummary "Analytics rollup"
// @Router      /posture/analytics [get]
func (h *PostureHandler) Analytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := parseDateQuery(c, "startDate")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateQuery(c, "endDate")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.measurementService.Analytics(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// DashboardToday returns today's summary with a delta against yesterday
// @Summary     Today's dashboard
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DailyDashboard "Daily rollup"
// @Router      /posture/dashboard/today [get]
func (h *PostureHandler) DashboardToday(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dash, err := h.measurementService.DashboardToday(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

// DashboardWeek returns the trailing seven-day summary
// @Summary     Weekly dashboard
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.WeeklyDashboard "Weekly rollup"
// @Router      /posture/dashboard/week [get]
func (h *PostureHandler) DashboardWeek(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dash, err := h.measurementService.DashboardWeek(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

// DashboardStats returns the all-time rollup
// @Summary     Dashboard statistics
// @Tags        posture
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardStats "All-time rollup"
// @Router      /posture/dashboard/stats [get]
func (h *PostureHandler) DashboardStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.measurementService.DashboardStats(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
