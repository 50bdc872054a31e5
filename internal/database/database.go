package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/booklend/booklend/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reset drops every table and recreates the schema. Used by the
// initdb --drop command.
func (d *Database) Reset() error {
	err := d.DB.Migrator().DropTable(
		&entities.BorrowRecord{},
		&entities.Book{},
		&entities.Administrator{},
		&entities.User{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return migrate(d.DB)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.User{},
		&entities.Administrator{},
		&entities.Book{},
		&entities.BorrowRecord{},
	)
}
