package usecase

import (
	"sync"

	repo "storefront/internal/repository"
)

type registryEntry struct {
	store *CartStore
	refs  int
}

// 端末（owner）ごとに CartStore を払い出す。
// 使用中（Acquireしてreleaseしていない）のストアだけを保持し、
// 誰も使っていないストアは捨てる。捨てた後の書き込みも revision の CAS で整合する。
type CartRegistry struct {
	kv   repo.KVStore
	opts []CartStoreOption

	mu     sync.Mutex
	stores map[string]*registryEntry
}

// DI
func NewCartRegistry(kv repo.KVStore, opts ...CartStoreOption) *CartRegistry {
	return &CartRegistry{
		kv:     kv,
		opts:   opts,
		stores: map[string]*registryEntry{},
	}
}

// 同じownerで使用中のストアがあればそれを返す。
// 使い終わったら release を呼ぶ（何度呼んでもよい）。
func (r *CartRegistry) Acquire(owner string) (*CartStore, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.stores[owner]
	if !ok {
		opts := append(append([]CartStoreOption{}, r.opts...), WithStorageKey(CartKey(owner)))
		ent = &registryEntry{store: NewCartStore(r.kv, opts...)}
		r.stores[owner] = ent
	}
	ent.refs++

	var once sync.Once
	release := func() {
		once.Do(func() { r.release(owner, ent) })
	}
	return ent.store, release
}

func (r *CartRegistry) release(owner string, ent *registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent.refs--
	if ent.refs <= 0 && r.stores[owner] == ent {
		delete(r.stores, owner)
	}
}

// 保持しているストアの数
func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// 匿名は元のキー、それ以外は "@cart_items:<owner>"
func CartKey(owner string) string {
	if owner == "" {
		return CartStorageKey
	}
	return CartStorageKey + ":" + owner
}
