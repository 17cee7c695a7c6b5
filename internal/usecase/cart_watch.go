package usecase

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/model"
)

// 購読者ごとに容量1のチャネル。古い値は捨てて最新だけ残す。
type watchHub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan model.CartSummary
}

func newWatchHub() *watchHub {
	return &watchHub{subs: map[int]chan model.CartSummary{}}
}

// ctxが終わるまで購読を保持する（解除用のgoroutineが1つ残る）
func (h *watchHub) subscribe(ctx context.Context) <-chan model.CartSummary {
	ch := make(chan model.CartSummary, 1)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

func (h *watchHub) publish(sum model.CartSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- sum:
			continue
		default:
		}
		//詰まっていたら古い方を捨てる
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- sum:
		default:
		}
	}
}

// 表示面（バッジ・注文一覧・数量コントロール）への配信。
// ストアの変更通知に加えて、別プロセスの書き込みを拾うため一定間隔で読み直す。
// 即時の読み直しは CartStore.Refresh から変更通知として届く。
type CartFeed struct {
	store    *CartStore
	interval time.Duration
}

// interval<=0 ならポーリングしない
func NewCartFeed(store *CartStore, interval time.Duration) *CartFeed {
	return &CartFeed{
		store:    store,
		interval: interval,
	}
}

// 変化したときだけ fn を呼ぶ。最初の1回は必ず呼ぶ。
// ctxが終わるか fn がエラーを返すまで続く。
func (f *CartFeed) Run(ctx context.Context, fn func(model.CartSummary) error) error {
	updates := f.store.Watch(ctx)

	var tick <-chan time.Time
	if f.interval > 0 {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var last model.CartSummary
	sent := false
	emit := func(sum model.CartSummary) error {
		if sent && sum.Equal(last) {
			return nil
		}
		last, sent = sum, true
		return fn(sum)
	}

	if err := emit(f.store.Summary(ctx)); err != nil {
		return err
	}

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sum, ok := <-updates:
			if !ok {
				return ctx.Err()
			}
			err = emit(sum)
		case <-tick:
			err = emit(f.store.Summary(ctx))
		}
		if err != nil {
			return err
		}
	}
}
