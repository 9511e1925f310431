package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

var DB *gorm.DB

// Initialize opens the sqlite database and migrates the two ledger tables.
func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	log.Println("Database connected successfully")

	if err := DB.AutoMigrate(&models.Explorer{}, &models.Discovery{}); err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
