package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// helper
// =====================

const testSecret = "test_secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	DeviceID string `json:"device_id"`
}

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()

	tok := jwt.NewWithClaims(method, claims)
	var key interface{} = []byte(secret)
	if method == jwt.SigningMethodNone {
		key = jwt.UnsafeAllowNoneSignatureType
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func deviceClaims(sub interface{}, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{"sub": sub, "iat": time.Now().Unix(), "exp": exp.Unix()}
}

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	cfg := config.Config{JWTSecret: testSecret}
	e.GET("/protected", func(c echo.Context) error {
		id, ok := middleware.DeviceID(c)
		if !ok {
			return c.JSON(http.StatusInternalServerError, mwErrorResponse{Error: "missing device"})
		}
		return c.JSON(http.StatusOK, mwOKResponse{DeviceID: id})
	}, middleware.AuthJWT(cfg))
	return e
}

func doProtected(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// tests
// =====================

func TestAuthJWT_ValidToken(t *testing.T) {
	e := newProtectedEcho()
	tok := mustMakeJWT(t, testSecret, deviceClaims("dev-1", time.Now().Add(time.Hour)), jwt.SigningMethodHS256)

	rec := doProtected(e, "Bearer "+tok)

	require.Equal(t, http.StatusOK, rec.Code)
	var body mwOKResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "dev-1", body.DeviceID)
}

func TestAuthJWT_Unauthorized(t *testing.T) {
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name  string
		authz func(t *testing.T) string
	}{
		{"missing header", func(t *testing.T) string { return "" }},
		{"not bearer", func(t *testing.T) string { return "Basic abc" }},
		{"empty token", func(t *testing.T) string { return "Bearer   " }},
		{"garbage", func(t *testing.T) string { return "Bearer not.a.jwt" }},
		{"wrong secret", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, "other", deviceClaims("dev-1", future), jwt.SigningMethodHS256)
		}},
		{"expired", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, deviceClaims("dev-1", time.Now().Add(-time.Minute)), jwt.SigningMethodHS256)
		}},
		{"alg none", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, deviceClaims("dev-1", future), jwt.SigningMethodNone)
		}},
		{"other hmac", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, deviceClaims("dev-1", future), jwt.SigningMethodHS512)
		}},
		{"numeric sub", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, deviceClaims(42, future), jwt.SigningMethodHS256)
		}},
		{"blank sub", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, deviceClaims(" ", future), jwt.SigningMethodHS256)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newProtectedEcho()

			rec := doProtected(e, tc.authz(t))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body mwErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body.Error)
		})
	}
}

func TestDeviceID_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := middleware.DeviceID(c)

	assert.False(t, ok)
}
