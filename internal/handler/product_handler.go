package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /menu の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// メニューのルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/menu", h.list)
	e.GET("/menu/:slug", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListMenu(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
