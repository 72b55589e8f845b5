package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
	now func() time.Time
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc, now: time.Now}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/nutrition", h.GetNutritionStats)
}

// GetNutritionStats godoc
// @Summary  Per-day totals and averages over a date range (default: last 7 days)
// @Tags     stats
// @Security BearerAuth
// @Produce  json
// @Param    start_date query string false "YYYY-MM-DD"
// @Param    end_date   query string false "YYYY-MM-DD"
// @Success  200 {object} domain.NutritionStats
// @Failure  400,502 {object} map[string]string
// @Router   /stats/nutrition [get]
func (h *StatsHandler) GetNutritionStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var endDate, startDate time.Time
	var err error

	if raw := c.Query("end_date"); raw == "" {
		endDate = h.now().UTC()
	} else if endDate, err = domain.ParseDate(raw); err != nil {
		badRequest(c, "invalid end_date format, expected YYYY-MM-DD")
		return
	}

	if raw := c.Query("start_date"); raw == "" {
		startDate = endDate.AddDate(0, 0, -6)
	} else if startDate, err = domain.ParseDate(raw); err != nil {
		badRequest(c, "invalid start_date format, expected YYYY-MM-DD")
		return
	}

	stats, err := h.svc.GetNutritionStats(c.Request.Context(), domain.StatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
