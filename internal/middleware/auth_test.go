package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet3d-backend/internal/middleware"
	"pet3d-backend/internal/models"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

type fakeUsers struct {
	role  models.Role
	err   error
	email string
	name  string
}

func (f *fakeUsers) EnsureUser(_ context.Context, id uuid.UUID, email, name string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.email, f.name = email, name
	role := f.role
	if role == "" {
		role = models.RoleUser
	}
	return &models.User{ID: id, Role: role}, nil
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthRouter(users middleware.UserEnsurer, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(testSecret, users))
	handlers := append(extra, func(c *gin.Context) {
		id, _ := middleware.UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
	})
	router.GET("/test", handlers...)
	return router
}

func doRequest(router http.Handler, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	w := doRequest(newAuthRouter(&fakeUsers{}), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := doRequest(newAuthRouter(&fakeUsers{}), "invalid-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, "another-secret", jwt.MapClaims{"sub": uuid.NewString()})
	w := doRequest(newAuthRouter(&fakeUsers{}), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signature is invalid")
}

func TestAuthMiddleware_Expired(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	w := doRequest(newAuthRouter(&fakeUsers{}), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuthMiddleware_SubjectNotUUID(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-123"})
	w := doRequest(newAuthRouter(&fakeUsers{}), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	id := uuid.New()
	users := &fakeUsers{}
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":           id.String(),
		"email":         "owner@example.com",
		"user_metadata": map[string]interface{}{"full_name": "Pet Owner"},
	})

	w := doRequest(newAuthRouter(users), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Equal(t, "owner@example.com", users.email)
	assert.Equal(t, "Pet Owner", users.name)
}

func TestAuthMiddleware_UserStoreFailure(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"sub": uuid.NewString()})
	w := doRequest(newAuthRouter(&fakeUsers{err: errors.New("db down")}), token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"sub": uuid.NewString()})

	w := doRequest(newAuthRouter(&fakeUsers{}, middleware.RequireAdmin()), token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(newAuthRouter(&fakeUsers{role: models.RoleAdmin}, middleware.RequireAdmin()), token)
	assert.Equal(t, http.StatusOK, w.Code)
}
