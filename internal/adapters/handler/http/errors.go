package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidDate, http.StatusBadRequest},
	{domain.ErrInvalidWeight, http.StatusBadRequest},
	{domain.ErrInvalidBodyWeight, http.StatusBadRequest},
	{domain.ErrInvalidRecordedAt, http.StatusBadRequest},
	{domain.ErrMealNameEmpty, http.StatusBadRequest},
	{domain.ErrMealNameTooLong, http.StatusBadRequest},
	{domain.ErrFoodNameRequired, http.StatusBadRequest},
	{domain.ErrFoodNameTooLong, http.StatusBadRequest},
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrPasswordTooShort, http.StatusBadRequest},
	{services.ErrUnparseableDescription, http.StatusBadRequest},
	{services.ErrEmptyQuery, http.StatusBadRequest},
	{services.ErrInvalidDateRange, http.StatusBadRequest},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},

	{domain.ErrMealNotFound, http.StatusNotFound},
	{domain.ErrFoodNotFound, http.StatusNotFound},
	{domain.ErrWeightEntryNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},

	{domain.ErrMealConflict, http.StatusConflict},
	{domain.ErrWeightEntryConflict, http.StatusConflict},
	{domain.ErrEmailAlreadyExists, http.StatusConflict},

	{services.ErrSearchUnavailable, http.StatusServiceUnavailable},
	{domain.ErrRemoteFailure, http.StatusBadGateway},
}

// writeError maps a service error to its status. Known errors keep their
// message; anything else is recorded on the context and hidden behind a 500.
func writeError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.status >= http.StatusInternalServerError {
				_ = c.Error(err)
			}
			c.JSON(e.status, gin.H{"error": e.err.Error()})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}
