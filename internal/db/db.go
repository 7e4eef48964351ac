package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bidmonitor/internal/config"
)

type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// ConnConfig parses the store URL and applies the access key as the password.
// The simple protocol keeps the job usable behind transaction poolers.
func ConnConfig(store config.StoreConfig, dbCfg config.DBConfig) (*pgx.ConnConfig, error) {
	raw := strings.TrimSpace(store.URL)
	if raw == "" {
		return nil, errors.New("store url is empty")
	}
	cc, err := pgx.ParseConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if key := strings.TrimSpace(store.Key); key != "" {
		cc.Password = key
	}
	if dbCfg.ConnectTimeout > 0 {
		cc.ConnectTimeout = dbCfg.ConnectTimeout
	}
	cc.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return cc, nil
}

func Open(ctx context.Context, store config.StoreConfig, dbCfg config.DBConfig) (*DB, error) {
	cc, err := ConnConfig(store, dbCfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDB(*cc)}), gcfg)
	if err != nil {
		return nil, err
	}

	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(dbCfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(dbCfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(dbCfg.ConnMaxIdleTime)

	out := &DB{Gorm: gdb, SQL: sqldb}
	if err := Ping(ctx, out); err != nil {
		_ = Close(out)
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return out, nil
}

func Close(db *DB) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}

func Ping(ctx context.Context, db *DB) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return db.SQL.PingContext(ctx)
}
