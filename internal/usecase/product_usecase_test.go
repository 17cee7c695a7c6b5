package usecase_test

import (
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductUsecase_ListMenu(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("ListMenu", mock.Anything).Return([]model.Product{
		{ID: 1, Title: "Milkshake", Slug: "milkshake", MainImage: "m.png", Description: "20 Cups"},
		{ID: 2, Title: "Chicken Burger", Slug: "chicken-burger", MainImage: "b.png"},
	}, nil)
	uc := usecase.NewProductUsecase(products)

	out, err := uc.ListMenu(bgCtx)

	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "milkshake", out.Items[0].Slug)
	assert.Equal(t, "m.png", out.Items[0].Image)
	assert.Equal(t, "Chicken Burger", out.Items[1].Title)
}

func TestProductUsecase_ListMenu_RepoError(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("ListMenu", mock.Anything).Return(nil, errors.New("db down"))
	uc := usecase.NewProductUsecase(products)

	_, err := uc.ListMenu(bgCtx)

	assertHTTPError(t, err, http.StatusInternalServerError, "catalog error")
}

func TestProductUsecase_GetProductDetail(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindBySlug", mock.Anything, "milkshake").
		Return(model.Product{ID: 1, Slug: "milkshake", Variants: []model.Variant{caramelVariant}}, nil)
	uc := usecase.NewProductUsecase(products)

	p, err := uc.GetProductDetail(bgCtx, "  milkshake ")

	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	require.Len(t, p.Variants, 1)
}

func TestProductUsecase_GetProductDetail_InvalidSlug(t *testing.T) {
	products := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(products)

	_, err := uc.GetProductDetail(bgCtx, "   ")

	assertHTTPError(t, err, http.StatusBadRequest, "invalid slug")
	products.AssertNotCalled(t, "FindBySlug", mock.Anything, mock.Anything)
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindBySlug", mock.Anything, "pizza").Return(nil, repo.ErrNotFound)
	uc := usecase.NewProductUsecase(products)

	_, err := uc.GetProductDetail(bgCtx, "pizza")

	assertHTTPError(t, err, http.StatusNotFound, "not found")
}
