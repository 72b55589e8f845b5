package foodsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

const listPayload = `{"foods":{"food":[
	{"food_id":"33691","food_name":"Banana","food_type":"Generic","food_description":"Per 100g - Calories: 89kcal | Fat: 0.33g | Carbs: 22.84g | Protein: 1.09g"},
	{"food_id":"4881224","food_name":"Greek Yogurt","brand_name":"Fage","food_type":"Brand","food_description":"Per 100g - Calories: 97kcal | Fat: 5.00g | Carbs: 3.98g | Protein: 9.00g"}
],"max_results":"20","page_number":"0","total_results":"2"}}`

const singlePayload = `{"foods":{"food":{"food_id":"1","food_name":"Quinoa","food_type":"Generic","food_description":"Per 100g - Calories: 120kcal | Fat: 1.92g | Carbs: 21.30g | Protein: 4.40g"},"total_results":"1"}}`

type fakeFatSecret struct {
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	payload     string
	status      int
	lastQuery   atomic.Value
}

func (f *fakeFatSecret) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		assert.Equal(t, "basic", r.PostForm.Get("scope"))
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":86400,"token_type":"Bearer"}`, f.tokenCalls.Load())
	})
	mux.HandleFunc("/rest/server.api", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		assert.Equal(t, "foods.search", r.URL.Query().Get("method"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer tok-")
		f.lastQuery.Store(r.URL.Query())
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		fmt.Fprint(w, f.payload)
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeFatSecret) *FatSecretClient {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	c, err := NewFatSecretClient(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/connect/token",
		APIURL:       srv.URL + "/rest/server.api",
		Timeout:      2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewFatSecretClient_RequiresCredentials(t *testing.T) {
	_, err := NewFatSecretClient(Config{ClientID: "id"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestFatSecretClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Decodes a list of foods", func(t *testing.T) {
		fake := &fakeFatSecret{payload: listPayload}
		c := newTestClient(t, fake)

		foods, err := c.Search(ctx, "banana", 20)
		require.NoError(t, err)
		require.Len(t, foods, 2)
		assert.Equal(t, "33691", foods[0].ID)
		assert.Equal(t, "Banana", foods[0].Name)
		assert.Contains(t, foods[0].Description, "Calories: 89kcal")
		assert.Equal(t, "Fage", foods[1].Brand)
		assert.Equal(t, "Brand", foods[1].Type)
	})

	t.Run("A single hit comes back as an object", func(t *testing.T) {
		fake := &fakeFatSecret{payload: singlePayload}
		c := newTestClient(t, fake)

		foods, err := c.Search(ctx, "quinoa", 10)
		require.NoError(t, err)
		require.Len(t, foods, 1)
		assert.Equal(t, "Quinoa", foods[0].Name)
	})

	t.Run("No hits yields an empty list", func(t *testing.T) {
		fake := &fakeFatSecret{payload: `{"foods":{"max_results":"20","total_results":"0"}}`}
		c := newTestClient(t, fake)

		foods, err := c.Search(ctx, "zzzz", 10)
		require.NoError(t, err)
		assert.Empty(t, foods)
	})

	t.Run("Token is reused across searches", func(t *testing.T) {
		fake := &fakeFatSecret{payload: listPayload}
		c := newTestClient(t, fake)

		for i := 0; i < 3; i++ {
			_, err := c.Search(ctx, "banana", 5)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), fake.tokenCalls.Load())
		assert.Equal(t, int32(3), fake.searchCalls.Load())
	})

	t.Run("Expired token is fetched again", func(t *testing.T) {
		fake := &fakeFatSecret{payload: listPayload}
		c := newTestClient(t, fake)

		now := time.Now()
		c.now = func() time.Time { return now }
		_, err := c.Search(ctx, "banana", 5)
		require.NoError(t, err)

		now = now.Add(25 * time.Hour)
		_, err = c.Search(ctx, "banana", 5)
		require.NoError(t, err)
		assert.Equal(t, int32(2), fake.tokenCalls.Load())
	})

	t.Run("Limit is capped", func(t *testing.T) {
		fake := &fakeFatSecret{payload: listPayload}
		c := newTestClient(t, fake)

		_, err := c.Search(ctx, "banana", 500)
		require.NoError(t, err)
		q := fake.lastQuery.Load().(url.Values)
		assert.Equal(t, "50", q.Get("max_results"))
		assert.Equal(t, "banana", q.Get("search_expression"))
	})

	t.Run("API error payload is a remote failure", func(t *testing.T) {
		fake := &fakeFatSecret{payload: `{"error":{"code":14,"message":"Invalid token"}}`}
		c := newTestClient(t, fake)

		_, err := c.Search(ctx, "banana", 5)
		assert.ErrorIs(t, err, domain.ErrRemoteFailure)

		_, err = c.Search(ctx, "banana", 5)
		assert.ErrorIs(t, err, domain.ErrRemoteFailure)
		assert.Equal(t, int32(2), fake.tokenCalls.Load(), "an invalid token must be dropped")
	})

	t.Run("HTTP failure is a remote failure", func(t *testing.T) {
		fake := &fakeFatSecret{payload: `oops`, status: http.StatusInternalServerError}
		c := newTestClient(t, fake)

		_, err := c.Search(ctx, "banana", 5)
		assert.ErrorIs(t, err, domain.ErrRemoteFailure)
	})

	t.Run("Breaker opens after repeated failures", func(t *testing.T) {
		fake := &fakeFatSecret{payload: `oops`, status: http.StatusBadGateway}
		c := newTestClient(t, fake)

		for i := 0; i < 5; i++ {
			_, err := c.Search(ctx, "banana", 5)
			require.Error(t, err)
		}
		require.Equal(t, int32(5), fake.searchCalls.Load())

		_, err := c.Search(ctx, "banana", 5)
		assert.ErrorIs(t, err, domain.ErrRemoteFailure)
		assert.Equal(t, int32(5), fake.searchCalls.Load(), "open breaker must not reach the API")
	})
}
