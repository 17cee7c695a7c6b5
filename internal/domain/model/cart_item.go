package model

import "github.com/shopspring/decimal"

type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
)

// 未指定("")も有効
func (s Size) Valid() bool {
	switch s {
	case "", SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureIced Temperature = "iced"
)

func (t Temperature) Valid() bool {
	switch t {
	case "", TemperatureHot, TemperatureIced:
		return true
	}
	return false
}

// 明細の同一性は (id, size, temperature)
type ItemKey struct {
	ID          int64
	Size        Size
	Temperature Temperature
}

// カートの明細
// 追加時点の表示情報と価格をコピーして保存。
type CartLineItem struct {
	ID          int64           `json:"id"`
	Image       string          `json:"image"`
	Title       string          `json:"title"`
	SubTitle    string          `json:"subTitle"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Size        Size            `json:"size,omitempty"`
	Temperature Temperature     `json:"temperature,omitempty"`
}

func (i CartLineItem) Key() ItemKey {
	return ItemKey{ID: i.ID, Size: i.Size, Temperature: i.Temperature}
}

// price × quantity
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
