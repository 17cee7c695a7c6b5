package handler

import (
	"log/slog"
	"net/http"

	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerDeviceUC *auth.RegisterDeviceUsecase // 端末登録usecase
	logger           *slog.Logger
}

// DIコンストラクタ
func NewAuthHandler(registerDeviceUC *auth.RegisterDeviceUsecase, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		registerDeviceUC: registerDeviceUC,
		logger:           logger,
	}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/device", h.RegisterDevice)
}

// RegisterDeviceはPOST /auth/deviceのハンドラ
func (h *AuthHandler) RegisterDevice(c echo.Context) error {
	out, err := h.registerDeviceUC.Execute(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to register device", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusCreated, out)
}
