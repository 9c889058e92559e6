package database

import (
	"github.com/bookclub/bookpoll/api/env"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"sync"
	"time"
)

var databaseConn *gorm.DB
var locker sync.Mutex

// Get returns the shared connection, opening it on first use.
func Get() (*gorm.DB, error) {
	var err error

	locker.Lock()
	defer locker.Unlock()
	if databaseConn == nil {
		databaseConn, err = load()
	}

	return databaseConn, err
}

// Set replaces the shared connection. Used by tests to point modules at
// an in-memory database.
func Set(db *gorm.DB) {
	locker.Lock()
	defer locker.Unlock()
	databaseConn = db
}

func Close() {
	locker.Lock()
	defer locker.Unlock()
	if databaseConn == nil {
		return
	}
	if sqlDb, err := databaseConn.DB(); err == nil {
		_ = sqlDb.Close()
	}
	databaseConn = nil
}

func load() (db *gorm.DB, err error) {
	connString := env.Get("database.url")
	if connString == "" {
		connString = "bookpoll:bookpoll@/bookpoll?charset=utf8mb4&parseTime=True"
	}

	db, err = gorm.Open(mysql.Open(connString), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if db != nil {
		sqlDb, _ := db.DB()
		sqlDb.SetConnMaxLifetime(time.Second * 10)
		sqlDb.SetMaxIdleConns(0)
		sqlDb.SetMaxOpenConns(env.GetIntOr("database.pool.max", 10))
	}
	return
}
