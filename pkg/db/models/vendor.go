package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a reseller or distributor that brokered a sale on our behalf.
type Vendor struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;unique"`
	ContactName *string   `gorm:"column:contact_name"`
	Country     *string   `gorm:"column:country"`
	Website     *string   `gorm:"column:website"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
