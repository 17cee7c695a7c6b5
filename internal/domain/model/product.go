package model

import "github.com/shopspring/decimal"

// 商品（メニューの1行）。バリエーション単位でカートに入る。
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	MainImage   string    `json:"main_image"`
	Assets      []string  `json:"assets"`
	Variants    []Variant `json:"variants"`
}

type Variant struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	SubTitle string          `json:"subTitle"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
}

type MenuItem struct {
	ID          int64  `json:"id"`
	Image       string `json:"image"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (p Product) MenuItem() MenuItem {
	return MenuItem{
		ID:          p.ID,
		Image:       p.MainImage,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
	}
}

// バリエーションをカート明細にする（数量は呼び出し側）
func (v Variant) LineItem(size Size, temp Temperature) CartLineItem {
	return CartLineItem{
		ID:          v.ID,
		Image:       v.Image,
		Title:       v.Title,
		SubTitle:    v.SubTitle,
		Price:       v.Price,
		Size:        size,
		Temperature: temp,
	}
}
