package metrics

import (
	"log"

	"gorm.io/gorm"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/models"
)

// UpdateLedgerMetrics queries the database and refreshes the ledger gauges.
// Called after discovery writes and periodically by the metrics worker.
func UpdateLedgerMetrics(db *gorm.DB) {
	if db == nil {
		return
	}

	var explorers int64
	if err := db.Model(&models.Explorer{}).Count(&explorers).Error; err != nil {
		log.Printf("Metrics: failed to count explorers: %v", err)
	} else {
		ExplorersTotal.Set(float64(explorers))
	}

	var discoveries int64
	if err := db.Model(&models.Discovery{}).Count(&discoveries).Error; err != nil {
		log.Printf("Metrics: failed to count discoveries: %v", err)
	} else {
		DiscoveriesTotal.Set(float64(discoveries))
	}

	type categoryCount struct {
		Category string
		Total    int64
	}
	var categoryCounts []categoryCount
	if err := db.Model(&models.Discovery{}).
		Select("category, COUNT(*) as total").
		Group("category").
		Scan(&categoryCounts).Error; err != nil {
		log.Printf("Metrics: failed to count discoveries by category: %v", err)
	} else {
		for _, cc := range categoryCounts {
			DiscoveriesByCategory.WithLabelValues(cc.Category).Set(float64(cc.Total))
		}
	}

	var points int64
	if err := db.Model(&models.Discovery{}).Select("COALESCE(SUM(points), 0)").Scan(&points).Error; err != nil {
		log.Printf("Metrics: failed to sum discovery points: %v", err)
	} else {
		PointsAwardedTotal.Set(float64(points))
	}
}
