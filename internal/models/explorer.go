package models

import (
	"time"
)

// Explorer is a registered user of the app. Identity is email-only,
// without passwords; there is no account recovery to support.
type Explorer struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	FirstName   string      `json:"nombre" gorm:"not null"`
	LastName    string      `json:"apellido"`
	Email       string      `json:"email" gorm:"uniqueIndex;not null"`
	Phone       string      `json:"telefono"`
	TotalPoints int         `json:"puntos_totales" gorm:"default:0"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Discoveries []Discovery `json:"descubrimientos,omitempty" gorm:"foreignKey:ExplorerID;constraint:OnDelete:CASCADE"`
}

func (Explorer) TableName() string {
	return "explorers"
}

// Discovery records one identification the explorer chose to save.
// Rows are immutable after creation.
type Discovery struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ExplorerID     uint      `json:"explorer_id" gorm:"not null;index"`
	CommonName     string    `json:"nombre" gorm:"not null"`
	ScientificName string    `json:"cientifico"`
	Category       Category  `json:"tipo" gorm:"not null;index"`
	ImageURL       string    `json:"imagen_url"`
	Points         int       `json:"puntos"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Discovery) TableName() string {
	return "discoveries"
}
