package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/services"
)

// VideoHandler handles monitoring-session and detection requests
type VideoHandler struct {
	sessionService services.SessionServicer
}

// NewVideoHandler creates a new VideoHandler
func NewVideoHandler(sessionService services.SessionServicer) *VideoHandler {
	return &VideoHandler{sessionService: sessionService}
}

// StartSessionRequest identifies the session being opened.
type StartSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required,max=100"`
}

// EndSessionRequest identifies the session being closed.
type EndSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required,max=100"`
}

// DetectionRequest is a single detection tick from the client. Only the raw
// score is submitted; the category and alert decision are computed here.
type DetectionRequest struct {
	PostureScore    *float64            `json:"postureScore" binding:"required,min=0,max=100"`
	SessionID       string              `json:"sessionId" binding:"omitempty,max=100"`
	DurationSeconds int                 `json:"durationSeconds" binding:"omitempty,min=1,max=86400"`
	JointAngles     *JointAnglesPayload `json:"jointAngles"`
	Confidence      *float64            `json:"confidence" binding:"omitempty,min=0,max=1"`
	ModelVersion    string              `json:"modelVersion" binding:"omitempty,max=50"`
}

// DismissAlertRequest records the user's reaction to an alert.
type DismissAlertRequest struct {
	MeasurementID     string `json:"measurementId" binding:"required"`
	Response          string `json:"response" binding:"required,alert_response"`
	ResponseLatencyMs *int64 `json:"responseLatencyMs" binding:"omitempty,min=0"`
}

// StartSession opens a monitoring session
// @Summary     Start a monitoring session
// @Description Create the session's sentinel measurement tagged with the supplied session id
// @Tags        video
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body StartSessionRequest true "Session id"
// @Success     201 {object} models.PostureMeasurement "Sentinel measurement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /video/session/start [post]
func (h *VideoHandler) StartSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	measurement, err := h.sessionService.StartSession(userID, req.SessionID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":   req.SessionID,
		"measurement": measurement,
	})
}

// EndSession closes a monitoring session and returns its rollup
// @Summary     End a monitoring session
// @Description Aggregate every measurement sharing the session id; creates no records
// @Tags        video
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body EndSessionRequest true "Session id"
// @Success     200 {object} services.SessionSummary "Session summary"
// @Failure     404 {object} ErrorResponse "Unknown session"
// @Router      /video/session/end [post]
func (h *VideoHandler) EndSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, err := h.sessionService.EndSession(userID, req.SessionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Detection records a detection tick and returns the alert decision
// @Summary     Record a posture detection
// @Description Persist a detection measurement and decide server-side whether to alert
// @Tags        video
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DetectionRequest true "Detection data"
// @Success     201 {object} services.DetectionResult "Detection result with alert decision"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /video/detection [post]
func (h *VideoHandler) Detection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.sessionService.RecordDetection(userID, services.DetectionInput{
		Score:           *req.PostureScore,
		SessionID:       req.SessionID,
		DurationSeconds: req.DurationSeconds,
		JointAngles:     req.JointAngles.toModel(),
		Confidence:      req.Confidence,
		ModelVersion:    req.ModelVersion,
	}, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SessionStats returns a live rollup for an in-progress session
// @Summary     Session statistics
// @Description Live rollup plus the last-10 score trend for a session
// @Tags        video
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Session id"
// @Success     200 {object} services.SessionStats "Session statistics"
// @Failure     404 {object} ErrorResponse "Unknown session"
// @Router      /video/session/{id}/stats [get]
func (h *VideoHandler) SessionStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.sessionService.SessionStats(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DismissAlert records the user's reaction to an alert
// @Summary     Dismiss an alert
// @Description Record the user's response to an alert on an owned measurement
// @Tags        video
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DismissAlertRequest true "Alert response"
// @Success     200 {object} models.PostureMeasurement "Updated measurement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown measurement"
// @Router      /video/alert/dismiss [post]
func (h *VideoHandler) DismissAlert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DismissAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	measurement, err := h.sessionService.RespondToAlert(userID, req.MeasurementID, req.Response, req.ResponseLatencyMs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"measurement": measurement})
}
