package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// Customer is the purchasing party on a transaction. The tracker only needs
// identity and institutional classification; contact management lives in the
// upstream CRM.
type Customer struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string                `gorm:"column:name;not null"`
	InstitutionName string                `gorm:"column:institution_name;not null;default:''"`
	InstitutionType enums.InstitutionType `gorm:"column:institution_type;type:text;not null;default:'other'"`
	ContactName     *string               `gorm:"column:contact_name"`
	Country         *string               `gorm:"column:country"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
