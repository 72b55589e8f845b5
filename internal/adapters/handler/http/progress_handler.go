package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

type ProgressHandler struct {
	svc *services.ProgressService
}

func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// weightRequest is shared by create and update. A missing recorded_at means
// "now" on create and "unchanged" on update.
type weightRequest struct {
	WeightKg   float64    `json:"weight_kg"`
	RecordedAt *time.Time `json:"recorded_at"`
}

type startWeightRequest struct {
	WeightKg float64    `json:"weight_kg"`
	Date     *time.Time `json:"date"`
}

func (r weightRequest) at() time.Time {
	if r.RecordedAt == nil {
		return time.Time{}
	}
	return *r.RecordedAt
}

func (h *ProgressHandler) RegisterRoutes(r *gin.RouterGroup) {
	progress := r.Group("/progress")
	{
		progress.GET("/weights", h.ListWeights)
		progress.POST("/weights", h.AddWeight)
		progress.PUT("/weights/:id", h.UpdateWeight)
		progress.DELETE("/weights/:id", h.DeleteWeight)

		progress.GET("/summary", h.Summary)
		progress.PUT("/start", h.SetStart)
		progress.DELETE("/start", h.ClearStart)
	}
}

// ListWeights godoc
// @Summary  Weigh-ins, oldest first
// @Tags     progress
// @Security BearerAuth
// @Produce  json
// @Success  200 {array} domain.WeightEntry
// @Router   /progress/weights [get]
func (h *ProgressHandler) ListWeights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.svc.ListWeights(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []*domain.WeightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// AddWeight godoc
// @Summary  Record a weigh-in
// @Tags     progress
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body weightRequest true "weight in kg"
// @Success  201 {object} domain.WeightEntry
// @Failure  400,409 {object} map[string]string
// @Router   /progress/weights [post]
func (h *ProgressHandler) AddWeight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req weightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.AddWeight(c.Request.Context(), services.AddWeightInput{
		UserID:     userID,
		WeightKg:   req.WeightKg,
		RecordedAt: req.at(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// UpdateWeight godoc
// @Summary  Correct a weigh-in
// @Tags     progress
// @Security BearerAuth
// @Param    id   path string true "entry id"
// @Param    body body weightRequest true "new values"
// @Success  200 {object} domain.WeightEntry
// @Failure  400,404,409 {object} map[string]string
// @Router   /progress/weights/{id} [put]
func (h *ProgressHandler) UpdateWeight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req weightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.UpdateWeight(c.Request.Context(), services.UpdateWeightInput{
		ID:         c.Param("id"),
		UserID:     userID,
		WeightKg:   req.WeightKg,
		RecordedAt: req.at(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteWeight godoc
// @Summary  Delete a weigh-in
// @Tags     progress
// @Security BearerAuth
// @Param    id path string true "entry id"
// @Success  204
// @Router   /progress/weights/{id} [delete]
func (h *ProgressHandler) DeleteWeight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteWeight(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Summary godoc
// @Summary  Start, current and change
// @Tags     progress
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} domain.ProgressSummary
// @Router   /progress/summary [get]
func (h *ProgressHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SetStart godoc
// @Summary  Pin the start weight
// @Tags     progress
// @Security BearerAuth
// @Param    body body startWeightRequest true "start weight"
// @Success  200 {object} domain.Profile
// @Router   /progress/start [put]
func (h *ProgressHandler) SetStart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req startWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var at time.Time
	if req.Date != nil {
		at = *req.Date
	}

	profile, err := h.svc.SetStartWeight(c.Request.Context(), userID, req.WeightKg, at)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ClearStart godoc
// @Summary  Derive the start weight from the earliest weigh-in again
// @Tags     progress
// @Security BearerAuth
// @Success  200 {object} domain.Profile
// @Router   /progress/start [delete]
func (h *ProgressHandler) ClearStart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.svc.ClearStartWeight(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
