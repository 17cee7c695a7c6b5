package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
)

var (
	// 新しい版のデータは読まない・上書きしない
	ErrUnsupportedSchema = errors.New("unsupported cart schema version")

	errCorruptCart = errors.New("corrupt cart data")
)

// 保存データ → 明細。
// 版なし配列（旧形式）はそのまま読み、次の書き込みで版付きになる。
func decodeCart(raw []byte) ([]model.CartLineItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty value", errCorruptCart)
	}

	switch trimmed[0] {
	case '[':
		var items []model.CartLineItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptCart, err)
		}
		return normalizeItems(items), nil

	case '{':
		var doc model.CartDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptCart, err)
		}
		if doc.Version > model.CartSchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, doc.Version)
		}
		if doc.Version <= model.CartSchemaLegacy {
			return nil, fmt.Errorf("%w: missing version", errCorruptCart)
		}
		return normalizeItems(doc.Items), nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		return []model.CartLineItem{}, nil
	}
	return nil, fmt.Errorf("%w: unexpected value", errCorruptCart)
}

func encodeCart(items []model.CartLineItem) ([]byte, error) {
	if items == nil {
		items = []model.CartLineItem{}
	}
	return json.Marshal(model.CartDocument{
		Version: model.CartSchemaVersion,
		Items:   items,
	})
}

// quantity<1 は捨て、同一キーは最初の位置にまとめる
func normalizeItems(items []model.CartLineItem) []model.CartLineItem {
	out := make([]model.CartLineItem, 0, len(items))
	index := make(map[model.ItemKey]int, len(items))

	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := index[it.Key()]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.Key()] = len(out)
		out = append(out, it)
	}
	return out
}
