package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	w := api.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"disabled"`)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	for _, path := range []string{
		"/api/v1/diary/2024-03-10",
		"/api/v1/foods/search?q=oats",
		"/api/v1/progress/summary",
		"/api/v1/stats/nutrition",
		"/api/v1/auth/me",
	} {
		w := api.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodOptions, "/api/v1/diary/2024-03-10", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
