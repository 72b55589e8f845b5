package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-nutrition/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

const (
	oatsDescription = "Per 100g - Calories: 200kcal | Fat: 10.00g | Carbs: 20.00g | Protein: 8.00g"
	testDay         = "2024-03-10"
)

type fakeSearcher struct {
	results []domain.FoodCandidate
	err     error
	lastQ   string
	lastN   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]domain.FoodCandidate, error) {
	f.lastQ, f.lastN = query, limit
	return f.results, f.err
}

// testAPI is the full router over in-memory stores with one signed-in user.
type testAPI struct {
	router   *gin.Engine
	token    string
	meals    *repository.InMemoryMealRepository
	searcher *fakeSearcher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewInMemoryUserRepository()
	meals := repository.NewInMemoryMealRepository()
	weights := repository.NewInMemoryWeightRepository()
	profiles := repository.NewInMemoryProfileRepository()

	tokens := services.NewTokenService("api-test-secret", "kanso-test", time.Hour, users)
	sessions := services.NewSessionRegistry(meals)
	searcher := &fakeSearcher{}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(services.NewAuthService(users, tokens, sessions)),
		DiaryHandler:    adapterHTTP.NewDiaryHandler(sessions),
		FoodHandler:     adapterHTTP.NewFoodHandler(services.NewFoodService(searcher)),
		ProgressHandler: adapterHTTP.NewProgressHandler(services.NewProgressService(weights, profiles)),
		StatsHandler:    adapterHTTP.NewStatsHandler(services.NewStatsService(meals)),
		TokenService:    tokens,
		StartTime:       time.Now(),
	})

	api := &testAPI{router: router, meals: meals, searcher: searcher}

	creds := map[string]string{"email": "diary@kanso.app", "password": "CorrectHorseBattery1!"}
	w := api.do(t, http.MethodPost, "/api/v1/auth/register", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	api.token = login.Token
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type dayView struct {
	Date   string         `json:"date"`
	Seeded bool           `json:"seeded"`
	Meals  []*domain.Meal `json:"meals"`
	Totals domain.Macros  `json:"totals"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
