package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// メニュー（商品カタログ）の参照
type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

type MenuOutput struct {
	Items []model.MenuItem `json:"items"`
}

func (u *ProductUsecase) ListMenu(ctx context.Context) (MenuOutput, error) {
	products, err := u.productRepo.ListMenu(ctx)
	if err != nil {
		return MenuOutput{}, NewHTTPError(http.StatusInternalServerError, "catalog error")
	}

	items := make([]model.MenuItem, 0, len(products))
	for _, p := range products {
		items = append(items, p.MenuItem())
	}
	return MenuOutput{Items: items}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, slug string) (model.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	p, err := u.productRepo.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "catalog error")
	}
	return p, nil
}
