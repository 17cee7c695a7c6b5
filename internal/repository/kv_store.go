package repository

import (
	"context"
	"errors"
)

// CompareAndSwapで期待revisionと一致しなかった
var ErrConflict = errors.New("revision conflict")

// スロットの中身。Valueがnilならスロットは空。
type Entry struct {
	Value    []byte
	Revision int64
}

func (e Entry) Exists() bool {
	return e.Value != nil
}

// 永続KVスロットの約束。
// revisionはキーごとに単調増加（削除でも増える）。
type KVStore interface {
	// 無いキーは Entry{Value: nil, Revision: 最後のrevision} を返す
	Get(ctx context.Context, key string) (Entry, error)
	// revisionが expected のときだけ書き込み、新しいrevisionを返す
	CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error)
	// 無くてもエラーにしない
	Delete(ctx context.Context, key string) error
}
