package db

import (
	"context"

	"gorm.io/gorm"

	"bidmonitor/internal/models"
)

// AutoMigrate creates the tables this job owns. The unified view and the
// per-category base tables belong to the listing scrapers and are left alone.
func AutoMigrate(ctx context.Context, db *DB, schema string, historyTable string, runTable string) error {
	if db == nil || db.Gorm == nil {
		return nil
	}
	tx := db.Gorm.WithContext(ctx)
	if schema != "" {
		if err := tx.Exec("CREATE SCHEMA IF NOT EXISTS " + tx.Statement.Quote(schema)).Error; err != nil {
			return err
		}
	}
	if err := migrateTable(tx, qualify(schema, historyTable), &models.BidHistory{}); err != nil {
		return err
	}
	return migrateTable(tx, qualify(schema, runTable), &models.MonitorRun{})
}

func migrateTable(tx *gorm.DB, table string, model any) error {
	if table == "" {
		return tx.AutoMigrate(model)
	}
	return tx.Table(table).AutoMigrate(model)
}

func qualify(schema, table string) string {
	if table == "" {
		return ""
	}
	if schema == "" {
		return table
	}
	return schema + "." + table
}
