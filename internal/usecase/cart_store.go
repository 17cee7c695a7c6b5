package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	// 匿名（端末1台）のカートのキー
	CartStorageKey = "@cart_items"

	defaultCartWriteRetries = 16
)

// CAS競合が再試行回数を超えた
var ErrWriteConflict = errors.New("cart write conflict")

// CartStore はカート明細の唯一の持ち主。
// 書き込みは毎回 全読込 → 変更 → CAS で全体上書き。
// 同じストア内の書き込みはミューテックスで直列化し、
// 別プロセスとの競合は revision の CAS と再試行で吸収する。
type CartStore struct {
	kv         repo.KVStore
	key        string
	logger     *slog.Logger
	maxRetries int

	writeMu  sync.Mutex
	watchers *watchHub
}

type CartStoreOption func(*CartStore)

func WithStorageKey(key string) CartStoreOption {
	return func(s *CartStore) { s.key = key }
}

func WithLogger(logger *slog.Logger) CartStoreOption {
	return func(s *CartStore) { s.logger = logger }
}

func WithMaxRetries(n int) CartStoreOption {
	return func(s *CartStore) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// DI
func NewCartStore(kv repo.KVStore, opts ...CartStoreOption) *CartStore {
	s := &CartStore{
		kv:         kv,
		key:        CartStorageKey,
		maxRetries: defaultCartWriteRetries,
		watchers:   newWatchHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("cart_key", s.key))
	return s
}

func (s *CartStore) Key() string {
	return s.key
}

// 同一キーがあれば+1、無ければ数量1で末尾に追加。
func (s *CartStore) AddToCart(ctx context.Context, item model.CartLineItem) error {
	if item.ID <= 0 {
		return nil
	}

	return s.mutate(ctx, "add to cart", func(items []model.CartLineItem) ([]model.CartLineItem, bool) {
		if i := indexOf(items, item.Key()); i >= 0 {
			items[i].Quantity++
			return items, true
		}

		item.Quantity = 1
		return append(items, item), true
	})
}

// 読めなければ空（呼び出し側にエラーは返さない）
func (s *CartStore) GetCartItems(ctx context.Context) []model.CartLineItem {
	items, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("Failed to read cart items", slog.String("error", err.Error()))
		return []model.CartLineItem{}
	}
	return items
}

func (s *CartStore) GetCartQuantity(ctx context.Context) int64 {
	return model.Summarize(s.GetCartItems(ctx)).Quantity
}

func (s *CartStore) GetCartTotal(ctx context.Context) decimal.Decimal {
	return model.Summarize(s.GetCartItems(ctx)).Total
}

func (s *CartStore) GetItemQuantity(ctx context.Context, key model.ItemKey) int64 {
	items := s.GetCartItems(ctx)
	if i := indexOf(items, key); i >= 0 {
		return items[i].Quantity
	}
	return 0
}

// 明細・数量・合計を1回の読込で返す
func (s *CartStore) Summary(ctx context.Context) model.CartSummary {
	return model.Summarize(s.GetCartItems(ctx))
}

// 1つ減らす。1なら明細ごと消す。一致しなければ何もしない。
func (s *CartStore) RemoveOneFromCart(ctx context.Context, key model.ItemKey) error {
	if key.ID <= 0 {
		return nil
	}

	return s.mutate(ctx, "remove one from cart", func(items []model.CartLineItem) ([]model.CartLineItem, bool) {
		i := indexOf(items, key)
		if i < 0 {
			return items, false
		}

		if items[i].Quantity > 1 {
			items[i].Quantity--
			return items, true
		}
		return append(items[:i], items[i+1:]...), true
	})
}

// 数量に関係なく明細を消す。一致が無くても保存はする。
func (s *CartStore) RemoveItemFromCart(ctx context.Context, key model.ItemKey) error {
	if key.ID <= 0 {
		return nil
	}

	return s.mutate(ctx, "remove item from cart", func(items []model.CartLineItem) ([]model.CartLineItem, bool) {
		filtered := make([]model.CartLineItem, 0, len(items))
		for _, it := range items {
			if it.Key() != key {
				filtered = append(filtered, it)
			}
		}
		return filtered, true
	})
}

// スロットごと消す（何度呼んでもよい）
func (s *CartStore) ClearCart(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.Error("Failed to clear cart", slog.String("error", err.Error()))
		return fmt.Errorf("clear cart: %w", err)
	}

	s.watchers.publish(model.Summarize(nil))
	return nil
}

// 変更を購読する。ctxが終わるとチャネルは閉じる。
// ctxは必ずキャンセルできるものを渡すこと（終わらないctxだと購読が残り続ける）。
func (s *CartStore) Watch(ctx context.Context) <-chan model.CartSummary {
	return s.watchers.subscribe(ctx)
}

// 読み直して購読者全員に配る（アプリが前面に戻ったときなど）
func (s *CartStore) Refresh(ctx context.Context) model.CartSummary {
	sum := s.Summary(ctx)
	s.watchers.publish(sum)
	return sum
}

func (s *CartStore) read(ctx context.Context) ([]model.CartLineItem, error) {
	e, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !e.Exists() {
		return []model.CartLineItem{}, nil
	}
	return decodeCart(e.Value)
}

type mutateFunc func(items []model.CartLineItem) ([]model.CartLineItem, bool)

func (s *CartStore) mutate(ctx context.Context, op string, fn mutateFunc) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		e, err := s.kv.Get(ctx, s.key)
		if err != nil {
			s.logger.Error("Failed to load cart for write", slog.String("op", op), slog.String("error", err.Error()))
			return fmt.Errorf("%s: %w", op, err)
		}

		items := []model.CartLineItem{}
		if e.Exists() {
			decoded, err := decodeCart(e.Value)
			switch {
			case errors.Is(err, ErrUnsupportedSchema):
				s.logger.Error("Refusing to overwrite cart", slog.String("op", op), slog.String("error", err.Error()))
				return fmt.Errorf("%s: %w", op, err)
			case err != nil:
				//壊れたデータは空から作り直す
				s.logger.Warn("Discarding unreadable cart", slog.String("op", op), slog.String("error", err.Error()))
			default:
				items = decoded
			}
		}

		next, changed := fn(items)
		if !changed {
			return nil
		}

		raw, err := encodeCart(next)
		if err != nil {
			s.logger.Error("Failed to encode cart", slog.String("op", op), slog.String("error", err.Error()))
			return fmt.Errorf("%s: %w", op, err)
		}

		if _, err := s.kv.CompareAndSwap(ctx, s.key, e.Revision, raw); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				s.logger.Debug("Cart revision conflict, retrying",
					slog.String("op", op), slog.Int("attempt", attempt), slog.Int64("revision", e.Revision))
				continue
			}
			s.logger.Error("Failed to save cart", slog.String("op", op), slog.String("error", err.Error()))
			return fmt.Errorf("%s: %w", op, err)
		}

		s.watchers.publish(model.Summarize(next))
		return nil
	}

	s.logger.Error("Giving up cart write", slog.String("op", op), slog.Int("attempts", s.maxRetries))
	return fmt.Errorf("%s: %w", op, ErrWriteConflict)
}

func indexOf(items []model.CartLineItem, key model.ItemKey) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}
