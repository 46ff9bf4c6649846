package database

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one key of the persisted state layout. Values are always JSON
// documents (history collections, remembered fields, identity sessions).
type KVEntry struct {
	Key       string         `gorm:"primaryKey;column:key"`
	Value     datatypes.JSON `gorm:"column:value"`
	UpdatedAt time.Time      `gorm:"index"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
