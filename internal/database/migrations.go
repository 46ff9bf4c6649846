package database

import (
	"log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(&KVEntry{})
			},
		},
		{
			// Early builds stored legacy single-turn history under its own
			// table; everything now lives in kv_entries under the
			// history::/chatHistory:: key layout.
			ID: "1",
			Migrate: func(txn *gorm.DB) error {
				if txn.Migrator().HasTable("mentor_history_items") {
					return txn.Migrator().DropTable("mentor_history_items")
				}
				return nil
			},
		},
	})

	migrator.InitSchema(func(txn *gorm.DB) error {
		// Run when no previous migration is detected; jumps straight to the
		// latest schema instead of replaying every step.
		log.Println("clean database detected, running full schema initialization")

		return txn.AutoMigrate(&KVEntry{})
	})

	return migrator
}
