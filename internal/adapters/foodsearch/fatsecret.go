package foodsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

const (
	DefaultTokenURL = "https://oauth.fatsecret.com/connect/token"
	DefaultAPIURL   = "https://platform.fatsecret.com/rest/server.api"

	// MaxResults is the page size cap of foods.search.
	MaxResults = 50

	tokenRefreshMargin = time.Minute
	maxBodyBytes       = 1 << 20
)

var ErrMissingCredentials = errors.New("fatsecret: client id and secret are required")

var _ domain.FoodSearcher = (*FatSecretClient)(nil)

type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
	Timeout      time.Duration
}

// FatSecretClient searches the FatSecret food database with an OAuth2
// client-credentials token that is reused until shortly before it expires.
type FatSecretClient struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewFatSecretClient(cfg Config, logger *zap.Logger) (*FatSecretClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &FatSecretClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		now:    time.Now,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fatsecret",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about the upstream
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type searchResponse struct {
	Foods *struct {
		// a single hit comes back as an object, no hits drop the key
		Food         json.RawMessage `json:"food"`
		TotalResults string          `json:"total_results"`
	} `json:"foods"`
	Error *apiError `json:"error"`
}

type food struct {
	FoodID          string `json:"food_id"`
	FoodName        string `json:"food_name"`
	FoodDescription string `json:"food_description"`
	FoodType        string `json:"food_type"`
	BrandName       string `json:"brand_name"`
}

// Search runs foods.search. Any failure, including an open breaker, is
// reported as domain.ErrRemoteFailure.
func (c *FatSecretClient) Search(ctx context.Context, query string, limit int) ([]domain.FoodCandidate, error) {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.search(ctx, query, limit)
	})
	if err != nil {
		c.logger.Warn("food search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: fatsecret: %w", domain.ErrRemoteFailure, err)
	}

	return res.([]domain.FoodCandidate), nil
}

func (c *FatSecretClient) search(ctx context.Context, query string, limit int) ([]domain.FoodCandidate, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("method", "foods.search")
	params.Set("search_expression", query)
	params.Set("format", "json")
	params.Set("max_results", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.resetToken()
		return nil, fmt.Errorf("search rejected the access token")
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search API error %d: %s", status, truncate(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if sr.Error != nil {
		// 13 and 14 are the invalid and expired token codes
		if sr.Error.Code == 13 || sr.Error.Code == 14 {
			c.resetToken()
		}
		return nil, fmt.Errorf("search API error %d: %s", sr.Error.Code, sr.Error.Message)
	}
	if sr.Foods == nil {
		return []domain.FoodCandidate{}, nil
	}

	foods, err := decodeFoods(sr.Foods.Food)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.FoodCandidate, 0, len(foods))
	for _, f := range foods {
		candidates = append(candidates, domain.FoodCandidate{
			ID:          f.FoodID,
			Name:        f.FoodName,
			Brand:       f.BrandName,
			Type:        f.FoodType,
			Description: f.FoodDescription,
		})
	}
	return candidates, nil
}

func decodeFoods(raw json.RawMessage) ([]food, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var single food
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("decode food: %w", err)
		}
		return []food{single}, nil
	}

	var foods []food
	if err := json.Unmarshal(raw, &foods); err != nil {
		return nil, fmt.Errorf("decode foods: %w", err)
	}
	return foods, nil
}

func (c *FatSecretClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", "basic")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("token endpoint error %d: %s", status, truncate(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	c.token = tr.AccessToken
	c.expires = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenRefreshMargin)
	c.logger.Debug("fatsecret token refreshed", zap.Time("expires", c.expires))

	return c.token, nil
}

func (c *FatSecretClient) resetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *FatSecretClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("call %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
