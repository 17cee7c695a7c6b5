package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc     *usecase.CartUsecase
	logger *slog.Logger
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{uc: uc, logger: logger}
}

// 明細を特定するリクエスト（bodyでもqueryでもよい）
type CartItemRequest struct {
	VariantID   int64  `json:"variant_id" query:"variant_id"`
	Size        string `json:"size" query:"size"`
	Temperature string `json:"temperature" query:"temperature"`
}

func (r CartItemRequest) input() usecase.CartItemInput {
	return usecase.CartItemInput{
		VariantID:   r.VariantID,
		Size:        r.Size,
		Temperature: r.Temperature,
	}
}

// /cart 以下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getCart)
	g.DELETE("", h.clear)
	g.GET("/quantity", h.getQuantity)
	g.GET("/total", h.getTotal)
	g.GET("/events", h.events)
	g.POST("/events/refresh", h.refresh)

	g.POST("/items", h.addItem)
	g.DELETE("/items", h.removeItem)
	g.GET("/items/quantity", h.getItemQuantity)
	g.POST("/items/remove-one", h.removeOne)
}

func (h *CartHandler) getCart(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, h.uc.GetCart(c.Request().Context(), owner))
}

func (h *CartHandler) getQuantity(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, h.uc.GetQuantity(c.Request().Context(), owner))
}

func (h *CartHandler) getTotal(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, h.uc.GetTotal(c.Request().Context(), owner))
}

func (h *CartHandler) getItemQuantity(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}

	out, err := h.uc.GetItemQuantity(c.Request().Context(), owner, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	return h.mutate(c, h.uc.AddItem)
}

func (h *CartHandler) removeOne(c echo.Context) error {
	return h.mutate(c, h.uc.RemoveOne)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	return h.mutate(c, h.uc.RemoveItem)
}

type cartMutation func(ctx context.Context, owner string, in usecase.CartItemInput) (usecase.CartResponse, error)

func (h *CartHandler) mutate(c echo.Context, fn cartMutation) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := fn(c.Request().Context(), owner, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Clear(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 読み直し（アプリが前面に戻ったとき）。配信中の /cart/events にも流れる。
func (h *CartHandler) refresh(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	return c.JSON(http.StatusOK, h.uc.Refresh(c.Request().Context(), owner))
}

// server-sent events。変化があるたびに CartResponse を1件送る。
func (h *CartHandler) events(c echo.Context) error {
	owner, ok := middleware.DeviceID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.uc.Stream(c.Request().Context(), owner, func(out usecase.CartResponse) error {
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", data); err != nil {
			return err
		}
		w.Flush()
		return nil
	})

	//切断は正常終了
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		h.logger.Warn("Cart event stream stopped", slog.String("device_id", owner), slog.String("error", err.Error()))
	}
	return nil
}
