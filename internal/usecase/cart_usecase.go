package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const currencySymbol = "£"

// CartUsecase は /cart の入力チェックとエラーの変換。
// カートの中身は CartStore が持つ。
type CartUsecase struct {
	carts        *CartRegistry
	productRepo  repo.ProductRepository
	pollInterval time.Duration
}

// DI
func NewCartUsecase(carts *CartRegistry, productRepo repo.ProductRepository, pollInterval time.Duration) *CartUsecase {
	return &CartUsecase{
		carts:        carts,
		productRepo:  productRepo,
		pollInterval: pollInterval,
	}
}

// 注文一覧画面
type CartResponse struct {
	Items        []model.CartLineItem `json:"items"`
	Quantity     int64                `json:"quantity"`
	Total        decimal.Decimal      `json:"total"`
	TotalDisplay string               `json:"total_display"`
}

// カートアイコンのバッジ
type QuantityResponse struct {
	Quantity int64 `json:"quantity"`
}

type TotalResponse struct {
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
}

// 商品画面の数量コントロール
type ItemQuantityResponse struct {
	VariantID   int64             `json:"variant_id"`
	Size        model.Size        `json:"size,omitempty"`
	Temperature model.Temperature `json:"temperature,omitempty"`
	Quantity    int64             `json:"quantity"`
}

// 明細を特定する入力（variant_id + size + temperature）
type CartItemInput struct {
	VariantID   int64
	Size        string
	Temperature string
}

func (in CartItemInput) key() (model.ItemKey, error) {
	if in.VariantID <= 0 {
		return model.ItemKey{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	size := model.Size(in.Size)
	if !size.Valid() {
		return model.ItemKey{}, NewHTTPError(http.StatusBadRequest, "invalid size")
	}
	temp := model.Temperature(in.Temperature)
	if !temp.Valid() {
		return model.ItemKey{}, NewHTTPError(http.StatusBadRequest, "invalid temperature")
	}
	return model.ItemKey{ID: in.VariantID, Size: size, Temperature: temp}, nil
}

func (u *CartUsecase) GetCart(ctx context.Context, owner string) CartResponse {
	store, release := u.carts.Acquire(owner)
	defer release()

	return ToCartResponse(store.Summary(ctx))
}

func (u *CartUsecase) GetQuantity(ctx context.Context, owner string) QuantityResponse {
	store, release := u.carts.Acquire(owner)
	defer release()

	return QuantityResponse{Quantity: store.GetCartQuantity(ctx)}
}

func (u *CartUsecase) GetTotal(ctx context.Context, owner string) TotalResponse {
	store, release := u.carts.Acquire(owner)
	defer release()

	total := store.GetCartTotal(ctx)
	return TotalResponse{Total: total, TotalDisplay: formatPrice(total)}
}

func (u *CartUsecase) GetItemQuantity(ctx context.Context, owner string, in CartItemInput) (ItemQuantityResponse, error) {
	key, err := in.key()
	if err != nil {
		return ItemQuantityResponse{}, err
	}

	store, release := u.carts.Acquire(owner)
	defer release()

	return ItemQuantityResponse{
		VariantID:   key.ID,
		Size:        key.Size,
		Temperature: key.Temperature,
		Quantity:    store.GetItemQuantity(ctx, key),
	}, nil
}

// カタログから表示情報と価格をコピーして追加（同一キーは+1）
func (u *CartUsecase) AddItem(ctx context.Context, owner string, in CartItemInput) (CartResponse, error) {
	key, err := in.key()
	if err != nil {
		return CartResponse{}, err
	}

	v, _, err := u.productRepo.FindVariant(ctx, key.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "catalog error")
	}

	store, release := u.carts.Acquire(owner)
	defer release()

	if err := store.AddToCart(ctx, v.LineItem(key.Size, key.Temperature)); err != nil {
		return CartResponse{}, storeError(err)
	}
	return ToCartResponse(store.Summary(ctx)), nil
}

func (u *CartUsecase) RemoveOne(ctx context.Context, owner string, in CartItemInput) (CartResponse, error) {
	key, err := in.key()
	if err != nil {
		return CartResponse{}, err
	}

	store, release := u.carts.Acquire(owner)
	defer release()

	if err := store.RemoveOneFromCart(ctx, key); err != nil {
		return CartResponse{}, storeError(err)
	}
	return ToCartResponse(store.Summary(ctx)), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, owner string, in CartItemInput) (CartResponse, error) {
	key, err := in.key()
	if err != nil {
		return CartResponse{}, err
	}

	store, release := u.carts.Acquire(owner)
	defer release()

	if err := store.RemoveItemFromCart(ctx, key); err != nil {
		return CartResponse{}, storeError(err)
	}
	return ToCartResponse(store.Summary(ctx)), nil
}

func (u *CartUsecase) Clear(ctx context.Context, owner string) (CartResponse, error) {
	store, release := u.carts.Acquire(owner)
	defer release()

	if err := store.ClearCart(ctx); err != nil {
		return CartResponse{}, storeError(err)
	}
	return ToCartResponse(model.Summarize(nil)), nil
}

// 読み直して、同じ端末の配信中ストリームにも最新を流す
func (u *CartUsecase) Refresh(ctx context.Context, owner string) CartResponse {
	store, release := u.carts.Acquire(owner)
	defer release()

	return ToCartResponse(store.Refresh(ctx))
}

// 変更通知＋ポーリングの配信。ctxが終わるまでストアを保持する。
func (u *CartUsecase) Stream(ctx context.Context, owner string, fn func(CartResponse) error) error {
	store, release := u.carts.Acquire(owner)
	defer release()

	return NewCartFeed(store, u.pollInterval).Run(ctx, func(sum model.CartSummary) error {
		return fn(ToCartResponse(sum))
	})
}

func ToCartResponse(sum model.CartSummary) CartResponse {
	return CartResponse{
		Items:        sum.Items,
		Quantity:     sum.Quantity,
		Total:        sum.Total,
		TotalDisplay: formatPrice(sum.Total),
	}
}

func formatPrice(d decimal.Decimal) string {
	return currencySymbol + d.StringFixed(2)
}

// 書き込み失敗はここでHTTPに変換（再試行はしない）
func storeError(err error) error {
	switch {
	case errors.Is(err, ErrWriteConflict):
		return NewHTTPError(http.StatusConflict, "cart busy")
	case errors.Is(err, ErrUnsupportedSchema):
		return NewHTTPError(http.StatusConflict, "unsupported cart data")
	default:
		return NewHTTPError(http.StatusInternalServerError, "storage error")
	}
}
