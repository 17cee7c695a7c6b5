package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

type GormKVStore struct {
	db *gorm.DB
}

// DI
func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db: db}
}

func (s *GormKVStore) Get(ctx context.Context, key string) (repo.Entry, error) {
	var e model.KVEntry

	err := s.db.WithContext(ctx).
		Where("slot_key = ?", key).
		First(&e).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.Entry{}, nil
	}
	if err != nil {
		return repo.Entry{}, err
	}
	return repo.Entry{Value: e.Value, Revision: e.Revision}, nil
}

// revision一致のときだけ更新
func (s *GormKVStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	if value == nil {
		value = []byte{}
	}

	//行が無い前提 → INSERT（同時作成は一意制約で負ける）
	if expected == 0 {
		err := s.db.WithContext(ctx).Create(&model.KVEntry{
			Key:      key,
			Value:    value,
			Revision: 1,
		}).Error

		if isUniqueViolation(err) {
			return 0, repo.ErrConflict
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	res := s.db.WithContext(ctx).
		Model(&model.KVEntry{}).
		Where("slot_key = ? AND revision = ?", key, expected).
		Updates(map[string]interface{}{
			"value":    value,
			"revision": gorm.Expr("revision + 1"),
		})

	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, repo.ErrConflict
	}
	return expected + 1, nil
}

// 行は残してvalueだけ消す（revisionを巻き戻さない）
func (s *GormKVStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Model(&model.KVEntry{}).
		Where("slot_key = ? AND value IS NOT NULL", key).
		Updates(map[string]interface{}{
			"value":    gorm.Expr("NULL"),
			"revision": gorm.Expr("revision + 1"),
		}).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
