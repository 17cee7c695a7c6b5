// Package model はカート・商品・KVエントリのドメイン型。
//
// 金額は decimal.Decimal で持つ。JSON では price / total を数値で出すため、
// このパッケージの init で decimal.MarshalJSONWithoutQuotes を true にしている。
// これはプロセス全体の設定で、model を import した時点で他パッケージの
// decimal の JSON 出力も数値になる。
package model

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
