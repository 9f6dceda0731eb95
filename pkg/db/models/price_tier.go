package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// PriceTier is the base IP-related price per reaction that took effect on
// StartDate for one transaction type. A tier stays in effect until a newer
// tier for the same type supersedes it.
type PriceTier struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionType  enums.TransactionType `gorm:"column:transaction_type;type:text;not null;uniqueIndex:ux_price_tiers_type_start"`
	StartDate        time.Time             `gorm:"column:start_date;type:date;not null;uniqueIndex:ux_price_tiers_type_start"`
	PricePerReaction decimal.Decimal       `gorm:"column:price_per_reaction;type:numeric(12,2);not null"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PriceTier) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UniquePeriodConstraint names the (type, start_date) uniqueness index so
// insert paths can classify violations.
const UniquePeriodConstraint = "ux_price_tiers_type_start"
