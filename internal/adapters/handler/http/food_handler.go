package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

type FoodHandler struct {
	svc *services.FoodService
}

func NewFoodHandler(svc *services.FoodService) *FoodHandler {
	return &FoodHandler{svc: svc}
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []services.FoodResult `json:"results"`
}

type previewRequest struct {
	Description string  `json:"description" binding:"required"`
	Weight      float64 `json:"weight"`
}

type previewResponse struct {
	Weight float64       `json:"weight"`
	Macros domain.Macros `json:"macros"`
}

func (h *FoodHandler) RegisterRoutes(r *gin.RouterGroup) {
	foods := r.Group("/foods")
	{
		foods.GET("/search", h.Search)
		foods.POST("/preview", h.Preview)
	}
}

// Search godoc
// @Summary  Search the food database
// @Tags     foods
// @Security BearerAuth
// @Produce  json
// @Param    q     query string true  "search text"
// @Param    limit query int    false "max results (1-50)"
// @Success  200 {object} searchResponse
// @Failure  400,502,503 {object} map[string]string
// @Router   /foods/search [get]
func (h *FoodHandler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.svc.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, searchResponse{Query: c.Query("q"), Results: results})
}

// Preview godoc
// @Summary  Macros of a description at a given weight
// @Tags     foods
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body previewRequest true "description and weight in grams"
// @Success  200 {object} previewResponse
// @Failure  400 {object} map[string]string
// @Router   /foods/preview [post]
func (h *FoodHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	m, err := h.svc.Preview(req.Description, req.Weight)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, previewResponse{Weight: req.Weight, Macros: m})
}
