package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is one scraped business listing in the catalog.
type Lead struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Segment      string    `gorm:"column:segment;not null;index"`
	Category     string    `gorm:"column:category;not null"`
	State        string    `gorm:"column:state;not null;index"`
	City         string    `gorm:"column:city;not null"`
	Neighborhood string    `gorm:"column:neighborhood"`
	Phone        string    `gorm:"column:phone"`
	Website      string    `gorm:"column:website"`
	Rating       float64   `gorm:"column:rating;not null;default:0"`
	ReviewCount  int       `gorm:"column:review_count;not null;default:0"`
	Address      string    `gorm:"column:address"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
