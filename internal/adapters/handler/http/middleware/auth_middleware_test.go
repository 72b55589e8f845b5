package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

const (
	testSecret = "middleware-test-secret"
	testIssuer = "kanso-test"
)

func protectedRouter(tokens *services.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(AuthMiddleware(tokens))
	router.GET("/diary", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no user in context")
			return
		}
		c.String(http.StatusOK, userID)
	})
	return router
}

func signed(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	users := repository.NewInMemoryUserRepository()
	member, err := domain.NewUser("member-1", "member@kanso.app")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), member))

	tokens := services.NewTokenService(testSecret, testIssuer, time.Hour, users)
	router := protectedRouter(tokens)

	valid, err := tokens.GenerateToken(member.ID)
	require.NoError(t, err)
	ghost, err := tokens.GenerateToken("deleted-user")
	require.NoError(t, err)

	now := time.Now()
	expired := signed(t, testSecret, jwt.RegisteredClaims{
		Subject:   member.ID,
		Issuer:    testIssuer,
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
	forged := signed(t, "someone-elses-secret", jwt.RegisteredClaims{
		Subject:   member.ID,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	foreignIssuer := signed(t, testSecret, jwt.RegisteredClaims{
		Subject:   member.ID,
		Issuer:    "another-app",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, member.ID},
		{"scheme is case insensitive", "bearer " + valid, http.StatusOK, member.ID},
		{"missing header", "", http.StatusUnauthorized, "authorization header required"},
		{"no scheme", valid, http.StatusUnauthorized, "invalid authorization header format"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "invalid authorization header format"},
		{"extra parts", "Bearer a b", http.StatusUnauthorized, "invalid authorization header format"},
		{"scheme only", "Bearer", http.StatusUnauthorized, "invalid authorization header format"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "invalid or expired token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "invalid or expired token"},
		{"wrong signature", "Bearer " + forged, http.StatusUnauthorized, "invalid or expired token"},
		{"wrong issuer", "Bearer " + foreignIssuer, http.StatusUnauthorized, "invalid or expired token"},
		{"user no longer exists", "Bearer " + ghost, http.StatusUnauthorized, "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/diary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(ContextUserIDKey, 42)
	_, ok = GetUserID(c)
	assert.False(t, ok)

	c.Set(ContextUserIDKey, "member-1")
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, "member-1", id)
}
