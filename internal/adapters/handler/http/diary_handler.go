package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

// DiaryHandler exposes the signed-in user's Diary. Every request selects the
// date from the path before acting on it.
type DiaryHandler struct {
	sessions *services.SessionRegistry
}

func NewDiaryHandler(sessions *services.SessionRegistry) *DiaryHandler {
	return &DiaryHandler{sessions: sessions}
}

type diaryResponse struct {
	Date   string         `json:"date"`
	Seeded bool           `json:"seeded"`
	Meals  []*domain.Meal `json:"meals"`
	Totals domain.Macros  `json:"totals"`
}

type totalsResponse struct {
	Date   string        `json:"date"`
	Totals domain.Macros `json:"totals"`
}

type renameMealRequest struct {
	Name string `json:"name"`
}

type addFoodRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Weight      float64        `json:"weight"`
	Per100g     *domain.Macros `json:"per_100g"`
}

type updateFoodRequest struct {
	Weight float64 `json:"weight"`
}

func (h *DiaryHandler) RegisterRoutes(r *gin.RouterGroup) {
	diary := r.Group("/diary/:date")
	{
		diary.GET("", h.GetDay)
		diary.GET("/totals", h.GetTotals)
		diary.POST("/refresh", h.Refresh)

		diary.POST("/meals", h.AddMeal)
		diary.PATCH("/meals/:mealId", h.RenameMeal)
		diary.DELETE("/meals/:mealId", h.DeleteMeal)

		diary.POST("/meals/:mealId/foods", h.AddFood)
		diary.PATCH("/meals/:mealId/foods/:foodId", h.UpdateFood)
		diary.DELETE("/meals/:mealId/foods/:foodId", h.RemoveFood)
	}
}

// onDay selects the path date in the user's diary, runs fn and answers with
// the resulting day.
func (h *DiaryHandler) onDay(c *gin.Context, status int, fn func(d *services.Diary) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var view diaryResponse
	err := h.sessions.Get(userID).Do(func(d *services.Diary) error {
		if err := d.SelectDate(c.Request.Context(), c.Param("date")); err != nil {
			return err
		}
		if fn != nil {
			if err := fn(d); err != nil {
				return err
			}
		}

		log, err := d.Log()
		if err != nil {
			return err
		}
		view = diaryResponse{
			Date:   log.Date,
			Seeded: log.Seeded,
			Meals:  log.Meals,
			Totals: log.Totals(),
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(status, view)
}

// GetDay godoc
// @Summary  Meals of a day, seeded with defaults when nothing is stored
// @Tags     diary
// @Security BearerAuth
// @Produce  json
// @Param    date path string true "YYYY-MM-DD"
// @Success  200 {object} diaryResponse
// @Failure  400,502 {object} map[string]string
// @Router   /diary/{date} [get]
func (h *DiaryHandler) GetDay(c *gin.Context) {
	h.onDay(c, http.StatusOK, nil)
}

// GetTotals godoc
// @Summary  Daily macro totals
// @Tags     diary
// @Security BearerAuth
// @Produce  json
// @Param    date path string true "YYYY-MM-DD"
// @Success  200 {object} totalsResponse
// @Router   /diary/{date}/totals [get]
func (h *DiaryHandler) GetTotals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var resp totalsResponse
	err := h.sessions.Get(userID).Do(func(d *services.Diary) error {
		if err := d.SelectDate(c.Request.Context(), c.Param("date")); err != nil {
			return err
		}
		resp = totalsResponse{Date: d.ActiveDate(), Totals: d.DailyTotals()}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary  Re-read the day from the store
// @Tags     diary
// @Security BearerAuth
// @Param    date path string true "YYYY-MM-DD"
// @Success  200 {object} diaryResponse
// @Router   /diary/{date}/refresh [post]
func (h *DiaryHandler) Refresh(c *gin.Context) {
	h.onDay(c, http.StatusOK, func(d *services.Diary) error {
		return d.Refresh(c.Request.Context())
	})
}

// AddMeal godoc
// @Summary  Append a meal named "Meal"
// @Tags     diary
// @Security BearerAuth
// @Param    date path string true "YYYY-MM-DD"
// @Success  201 {object} diaryResponse
// @Router   /diary/{date}/meals [post]
func (h *DiaryHandler) AddMeal(c *gin.Context) {
	h.onDay(c, http.StatusCreated, func(d *services.Diary) error {
		_, err := d.AddMeal(c.Request.Context())
		return err
	})
}

// RenameMeal godoc
// @Summary  Rename a meal; unknown meals are ignored
// @Tags     diary
// @Security BearerAuth
// @Param    date   path string true "YYYY-MM-DD"
// @Param    mealId path string true "meal id"
// @Param    body   body renameMealRequest true "new name"
// @Success  200 {object} diaryResponse
// @Router   /diary/{date}/meals/{mealId} [patch]
func (h *DiaryHandler) RenameMeal(c *gin.Context) {
	var req renameMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.onDay(c, http.StatusOK, func(d *services.Diary) error {
		return d.RenameMeal(c.Request.Context(), c.Param("mealId"), req.Name)
	})
}

// DeleteMeal godoc
// @Summary  Delete a meal and its foods
// @Tags     diary
// @Security BearerAuth
// @Param    date   path string true "YYYY-MM-DD"
// @Param    mealId path string true "meal id"
// @Success  200 {object} diaryResponse
// @Router   /diary/{date}/meals/{mealId} [delete]
func (h *DiaryHandler) DeleteMeal(c *gin.Context) {
	h.onDay(c, http.StatusOK, func(d *services.Diary) error {
		return d.DeleteMeal(c.Request.Context(), c.Param("mealId"))
	})
}

// AddFood godoc
// @Summary  Log a food in a meal, scaled from its per-100 g description
// @Tags     diary
// @Security BearerAuth
// @Param    date   path string true "YYYY-MM-DD"
// @Param    mealId path string true "meal id"
// @Param    body   body addFoodRequest true "food"
// @Success  201 {object} diaryResponse
// @Failure  400,404,409,502 {object} map[string]string
// @Router   /diary/{date}/meals/{mealId}/foods [post]
func (h *DiaryHandler) AddFood(c *gin.Context) {
	var req addFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.FoodInput{
		Name:        req.Name,
		Description: req.Description,
		Per100g:     req.Per100g,
	}

	h.onDay(c, http.StatusCreated, func(d *services.Diary) error {
		food, err := d.AddFoodToMeal(c.Request.Context(), c.Param("mealId"), input, req.Weight)
		if err != nil {
			return err
		}
		if food == nil {
			return domain.ErrMealNotFound
		}
		return nil
	})
}

// UpdateFood godoc
// @Summary  Change a food's weight, rescaling its macros
// @Tags     diary
// @Security BearerAuth
// @Param    date   path string true "YYYY-MM-DD"
// @Param    mealId path string true "meal id"
// @Param    foodId path string true "food id"
// @Param    body   body updateFoodRequest true "new weight"
// @Success  200 {object} diaryResponse
// @Router   /diary/{date}/meals/{mealId}/foods/{foodId} [patch]
func (h *DiaryHandler) UpdateFood(c *gin.Context) {
	var req updateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.onDay(c, http.StatusOK, func(d *services.Diary) error {
		food, err := d.UpdateFoodWeight(c.Request.Context(), c.Param("mealId"), c.Param("foodId"), req.Weight)
		if err != nil {
			return err
		}
		if food == nil {
			return domain.ErrFoodNotFound
		}
		return nil
	})
}

// RemoveFood godoc
// @Summary  Remove a food from a meal
// @Tags     diary
// @Security BearerAuth
// @Param    date   path string true "YYYY-MM-DD"
// @Param    mealId path string true "meal id"
// @Param    foodId path string true "food id"
// @Success  200 {object} diaryResponse
// @Router   /diary/{date}/meals/{mealId}/foods/{foodId} [delete]
func (h *DiaryHandler) RemoveFood(c *gin.Context) {
	h.onDay(c, http.StatusOK, func(d *services.Diary) error {
		return d.RemoveFoodFromMeal(c.Request.Context(), c.Param("mealId"), c.Param("foodId"))
	})
}
