package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateCategoryValues(db); err != nil {
		return err
	}
	return nil
}

// migrateCategoryValues normalizes legacy category spellings stored by early
// clients ("insect"/"plant" English values) to the Spanish wire values.
// Safe to run multiple times.
func migrateCategoryValues(db *gorm.DB) error {
	replacements := map[string]string{
		"insect": "insecto",
		"plant":  "planta",
		"bird":   "ave",
	}

	for old, updated := range replacements {
		result := db.Exec(`UPDATE discoveries SET category = ? WHERE category = ?`, updated, old)
		if result.Error != nil {
			log.Printf("Warning: failed to migrate category %q: %v", old, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			log.Printf("Migrated %d discoveries rows: category %q -> %q", result.RowsAffected, old, updated)
		}
	}

	// Points were nullable in the first schema; saved discoveries always carry a value now
	db.Exec(`UPDATE discoveries SET points = 0 WHERE points IS NULL`)
	db.Exec(`UPDATE explorers SET total_points = 0 WHERE total_points IS NULL`)

	return nil
}
