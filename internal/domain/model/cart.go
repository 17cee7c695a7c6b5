package model

import "github.com/shopspring/decimal"

// 保存ドキュメントのスキーマ版。0は版なしの配列形式。
const (
	CartSchemaLegacy  = 0
	CartSchemaVersion = 1
)

// KVの1スロットに丸ごと保存されるカート
type CartDocument struct {
	Version int            `json:"version"`
	Items   []CartLineItem `json:"items"`
}

// 表示面（バッジ・注文一覧・数量コントロール）に渡す集計
type CartSummary struct {
	Items    []CartLineItem  `json:"items"`
	Quantity int64           `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// 合計は毎回計算し直す
func Summarize(items []CartLineItem) CartSummary {
	if items == nil {
		items = []CartLineItem{}
	}

	var qty int64
	total := decimal.Zero
	for _, it := range items {
		qty += it.Quantity
		total = total.Add(it.Subtotal())
	}

	return CartSummary{Items: items, Quantity: qty, Total: total}
}

// 同じ内容かどうか（ポーリングの変化検知用）
func (s CartSummary) Equal(o CartSummary) bool {
	if s.Quantity != o.Quantity || !s.Total.Equal(o.Total) || len(s.Items) != len(o.Items) {
		return false
	}
	for i := range s.Items {
		a, b := s.Items[i], o.Items[i]
		if a.Key() != b.Key() || a.Quantity != b.Quantity || !a.Price.Equal(b.Price) {
			return false
		}
	}
	return true
}
