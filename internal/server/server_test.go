package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopIssuer struct{}

func (nopIssuer) Issue(deviceID string, now time.Time) (string, time.Time, error) {
	return "t", now.Add(time.Minute), nil
}

type nopID struct{}

func (nopID) NewID() string { return "dev" }

type nopClock struct{}

func (nopClock) Now() time.Time { return time.Now() }

func testHandlers() Handlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	products := infraRepo.NewDefaultProductRepository()
	reg := usecase.NewCartRegistry(infraRepo.NewMemoryKVStore(), usecase.WithLogger(logger))

	return Handlers{
		Auth:    handler.NewAuthHandler(auth.NewRegisterDeviceUsecase(nopIssuer{}, nopID{}, nopClock{}), logger),
		Product: handler.NewProductHandler(usecase.NewProductUsecase(products)),
		Cart:    handler.NewCartHandler(usecase.NewCartUsecase(reg, products, time.Second), logger),
	}
}

func TestNew_RegistersRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(config.Config{JWTSecret: "s"}, testHandlers(), logger)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/menu", http.StatusOK},
		{http.MethodGet, "/menu/chicken-burger", http.StatusOK},
		{http.MethodPost, "/auth/device", http.StatusCreated},
		{http.MethodGet, "/cart", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestStart_StopsWhenContextEnds(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(config.Config{JWTSecret: "s"}, testHandlers(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Start(ctx, e, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
