package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品カタログ（読み取り専用）の約束。
type ProductRepository interface {
	ListMenu(ctx context.Context) ([]model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)
	// バリエーションIDから、そのバリエーションと親商品を引く
	FindVariant(ctx context.Context, variantID int64) (model.Variant, model.Product, error)
}
