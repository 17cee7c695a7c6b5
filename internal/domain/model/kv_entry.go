package model

import "time"

// KVの1スロット。Valueがnilなら削除済み（revisionは残す）。
type KVEntry struct {
	Key       string    `gorm:"column:slot_key;primaryKey;type:varchar(255)" json:"key"`
	Value     []byte    `gorm:"type:bytea" json:"-"`
	Revision  int64     `gorm:"not null" json:"revision"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
