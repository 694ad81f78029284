// Package database owns the SQLite store shared by all collector
// services: opening, schema migration and the one-time admin bootstrap.
package database

import (
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"time"

	"github.com/sensorlab/doorwatch/config"
	"github.com/sensorlab/doorwatch/database/model"
	"github.com/sensorlab/doorwatch/util/crypto"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Startup is the only moment the store may legitimately be unreachable
// (first boot races the filesystem or a containerized volume). InitDB
// retries on a fixed interval and then gives up for good: the process
// must never serve requests against an uninitialized schema.
const (
	bootstrapAttempts = 10
	bootstrapInterval = 3 * time.Second
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.StatusSnapshot{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initUser seeds a single admin account iff the user table is empty.
// Idempotent: a populated table is left untouched.
func initUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}
	hash, err := crypto.HashPassword(config.GetAdminPassword())
	if err != nil {
		return err
	}
	user := &model.User{
		Username:     config.GetAdminUsername(),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	return db.Create(user).Error
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

// InitDB opens the database, migrates the schema and seeds the admin
// account, retrying the whole sequence up to bootstrapAttempts times.
func InitDB(dbPath string) error {
	var err error
	for attempt := 1; attempt <= bootstrapAttempts; attempt++ {
		err = openAndBootstrap(dbPath)
		if err == nil {
			return nil
		}
		log.Printf("database bootstrap attempt %d/%d failed: %v", attempt, bootstrapAttempts, err)
		if attempt < bootstrapAttempts {
			time.Sleep(bootstrapInterval)
		}
	}
	return err
}

func openAndBootstrap(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	return initUser()
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

func IsSQLiteDB(file io.ReaderAt) (bool, error) {
	signature := []byte("SQLite format 3\x00")
	buf := make([]byte, len(signature))
	_, err := file.ReadAt(buf, 0)
	if err != nil {
		return false, err
	}
	return string(buf) == string(signature), nil
}

// Checkpoint flushes the WAL into the main database file.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
