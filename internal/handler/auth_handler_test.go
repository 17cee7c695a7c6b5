package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/handler"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(deviceID string, now time.Time) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "tok-" + deviceID, now.Add(time.Hour), nil
}

type stubID struct{}

func (stubID) NewID() string { return "dev-abc" }

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Unix(1700000000, 0) }

func registerDevice(t *testing.T, issuer auth.AccessTokenIssuer) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	h := handler.NewAuthHandler(auth.NewRegisterDeviceUsecase(issuer, stubID{}, stubClock{}), nil)
	h.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/device", nil))
	return rec
}

func TestAuthHandler_RegisterDevice(t *testing.T) {
	rec := registerDevice(t, stubIssuer{})

	require.Equal(t, http.StatusCreated, rec.Code)
	var out auth.DeviceToken
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "dev-abc", out.DeviceID)
	assert.Equal(t, "tok-dev-abc", out.AccessToken)
	assert.Equal(t, 3600, out.ExpiresIn)
}

func TestAuthHandler_RegisterDevice_IssuerError(t *testing.T) {
	rec := registerDevice(t, stubIssuer{err: errors.New("no key")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeError(t, rec))
}
