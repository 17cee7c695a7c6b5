package repository

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 固定データのカタログ
type StaticProductRepository struct {
	products []model.Product
}

func NewStaticProductRepository(products []model.Product) *StaticProductRepository {
	return &StaticProductRepository{products: products}
}

// 既定メニュー（ミルクシェイクとチキンバーガー）
func NewDefaultProductRepository() *StaticProductRepository {
	return NewStaticProductRepository(DefaultProducts())
}

func (r *StaticProductRepository) ListMenu(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *StaticProductRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r *StaticProductRepository) FindVariant(ctx context.Context, variantID int64) (model.Variant, model.Product, error) {
	for _, p := range r.products {
		for _, v := range p.Variants {
			if v.ID == variantID {
				return v, p, nil
			}
		}
	}
	return model.Variant{}, model.Product{}, repo.ErrNotFound
}

type variantSeed struct {
	id       int64
	title    string
	subTitle string
	price    string
}

func DefaultProducts() []model.Product {
	return []model.Product{
		buildProduct(1, "Milkshake", "milkshake", "20 Cups of different flavours",
			"assets/images/items/milkshake.png", []variantSeed{
				{1, "Caramel", "Machito", "5.78"},
				{2, "Salted Caramel", "Milkshake", "12.49"},
				{3, "Peanut Butter", "Milkshake", "9.49"},
				{4, "Strawberry", "Milkshake", "7.2"},
				{5, "Banana", "Milkshake", "5.78"},
				{6, "Chocolate", "Milkshake", "11.49"},
			}),
		buildProduct(2, "Chicken Burger", "chicken-burger", "20 sets of different flavours",
			"assets/images/items/burger.png", []variantSeed{
				{7, "Chicken", "Classic", "9.99"},
				{8, "Veggies", "Special", "13.99"},
				{9, "Meaty", "Classic", "8.99"},
				{10, "Cheese", "Deluxe", "13.99"},
				{11, "Mixed Veggies", "Supreme", "11.99"},
				{12, "Plumpy", "Special", "9.99"},
			}),
	}
}

// バリエーションi番目の画像は assets[i]
func buildProduct(id int64, title, slug, desc, mainImage string, seeds []variantSeed) model.Product {
	p := model.Product{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Description: desc,
		MainImage:   mainImage,
	}

	for i, s := range seeds {
		asset := fmt.Sprintf("assets/images/items/%s/%d.png", slug, i+1)
		p.Assets = append(p.Assets, asset)
		p.Variants = append(p.Variants, model.Variant{
			ID:       s.id,
			Title:    s.title,
			SubTitle: s.subTitle,
			Price:    decimal.RequireFromString(s.price),
			Image:    asset,
		})
	}
	return p
}
