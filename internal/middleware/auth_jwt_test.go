package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用（any禁止）
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// =====================
// helper
// =====================

const testSecret = "test_jwt_secret"

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  1,
		"exp":  9999999999,
	}

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	cfg := config.Config{JWTSecret: testSecret}

	g := e.Group("/api")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("/me", func(c echo.Context) error {
		userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
		role, _ := c.Get(middleware.CtxUserRoleKey).(string)
		return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role})
	})

	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())
	admin.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// =====================
// AuthJWT tests
// =====================

func TestAuthJWT_MissingHeader(t *testing.T) {
	e := newProtectedEcho()

	rec := runRequest(t, e, http.MethodGet, "/api/me", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	e := newProtectedEcho()

	rec := runRequest(t, e, http.MethodGet, "/api/me", "Basic abc")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_InvalidToken(t *testing.T) {
	e := newProtectedEcho()

	rec := runRequest(t, e, http.MethodGet, "/api/me", "Bearer not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	e := newProtectedEcho()
	token := mustMakeJWT(t, "other_secret", 1, "USER", jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/api/me", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSigningMethod(t *testing.T) {
	e := newProtectedEcho()
	token := mustMakeJWT(t, testSecret, 1, "USER", jwt.SigningMethodHS512)

	rec := runRequest(t, e, http.MethodGet, "/api/me", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ValidToken(t *testing.T) {
	e := newProtectedEcho()
	token := mustMakeJWT(t, testSecret, 7, "USER", jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/api/me", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)

	var ok mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&ok)
	assert.Equal(t, int64(7), ok.UserID)
	assert.Equal(t, "USER", ok.Role)
}

// =====================
// AdminRoleGuard tests
// =====================

func TestAdminRoleGuard_UserForbidden(t *testing.T) {
	e := newProtectedEcho()
	token := mustMakeJWT(t, testSecret, 7, "USER", jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin only", decodeMWError(t, rec).Error)
}

func TestAdminRoleGuard_AdminAllowed(t *testing.T) {
	e := newProtectedEcho()
	token := mustMakeJWT(t, testSecret, 7, "ADMIN", jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
}
