package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veridian-genomics/revenue-tracker/pkg/enums"
)

// RoyaltyRate is the contractual royalty owed on the IP-related portion of
// every transaction.
var RoyaltyRate = decimal.NewFromFloat(0.025)

// Transaction is a single recorded sale: a kit shipment, a service contract,
// or a one-off. Money amounts are USD.
type Transaction struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionType   enums.TransactionType `gorm:"column:transaction_type;type:text;not null"`
	CustomerID        *uuid.UUID            `gorm:"column:customer_id;type:uuid"`
	Customer          *Customer             `gorm:"foreignKey:CustomerID"`
	VendorID          *uuid.UUID            `gorm:"column:vendor_id;type:uuid"`
	Vendor            *Vendor               `gorm:"foreignKey:VendorID"`
	NumberOfReactions int                   `gorm:"column:number_of_reactions;not null;default:0"`
	TotalPrice        decimal.Decimal       `gorm:"column:total_price;type:numeric(12,2);not null"`

	// IPRelatedPrice is the slice of TotalPrice subject to royalties. For kit
	// sales it usually equals TotalPrice; for service contracts it is the
	// library-synthesis line item.
	IPRelatedPrice decimal.Decimal `gorm:"column:ip_related_price;type:numeric(12,2);not null"`

	// BaseIPRelatedPricePerReaction caches the price tier in effect on Date.
	// It is stamped on every save and rewritten when tiers change; it is never
	// authoritative on its own.
	BaseIPRelatedPricePerReaction decimal.Decimal `gorm:"column:base_ip_related_price_per_reaction;type:numeric(12,2);not null;default:0"`

	Date               time.Time  `gorm:"column:date;type:date;not null"`
	DateSamplesArrived *time.Time `gorm:"column:date_samples_arrived;type:date"`
	DateFulfilled      *time.Time `gorm:"column:date_fulfilled;type:date"`
	DatePaid           *time.Time `gorm:"column:date_paid;type:date"`

	QuoteID   *uuid.UUID `gorm:"column:quote_id;type:uuid"`
	Quote     *Quote     `gorm:"foreignKey:QuoteID"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid"`
	Order     *Order     `gorm:"foreignKey:OrderID"`
	InvoiceID *uuid.UUID `gorm:"column:invoice_id;type:uuid"`
	Invoice   *Invoice   `gorm:"foreignKey:InvoiceID"`

	Description *string `gorm:"column:description"`
	Notes       *string `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RoyaltiesOwed returns the royalty due on this transaction.
func (t Transaction) RoyaltiesOwed() decimal.Decimal {
	return t.IPRelatedPrice.Mul(RoyaltyRate)
}

// PricePerSample returns TotalPrice divided by the reaction count. The second
// return is false when the transaction has no reactions; callers render a
// sentinel instead of dividing.
func (t Transaction) PricePerSample() (decimal.Decimal, bool) {
	if t.NumberOfReactions == 0 {
		return decimal.Zero, false
	}
	return t.TotalPrice.Div(decimal.NewFromInt(int64(t.NumberOfReactions))), true
}

// IPRelatedGrossPrice is what the IP-related portion would have cost at the
// cached base tier price with no discount applied.
func (t Transaction) IPRelatedGrossPrice() decimal.Decimal {
	return t.BaseIPRelatedPricePerReaction.Mul(decimal.NewFromInt(int64(t.NumberOfReactions)))
}

// IPRelatedDiscount is the gap between the gross tier price and what was
// actually charged.
func (t Transaction) IPRelatedDiscount() decimal.Decimal {
	return t.IPRelatedGrossPrice().Sub(t.IPRelatedPrice)
}

// IPRelatedDiscountPct is the discount as a fraction of gross. Zero when the
// gross is zero.
func (t Transaction) IPRelatedDiscountPct() decimal.Decimal {
	gross := t.IPRelatedPrice.Add(t.IPRelatedDiscount())
	if gross.IsZero() {
		return decimal.Zero
	}
	return t.IPRelatedDiscount().Div(gross)
}

// IsFulfilled reports whether the order has shipped/completed.
func (t Transaction) IsFulfilled() bool {
	return t.DateFulfilled != nil
}

// IsPaid reports whether payment was received.
func (t Transaction) IsPaid() bool {
	return t.DatePaid != nil
}

// IsOutstanding reports fulfilled-but-unpaid transactions.
func (t Transaction) IsOutstanding() bool {
	return t.IsFulfilled() && !t.IsPaid()
}

// IsPrepaid reports paid-but-unfulfilled transactions.
func (t Transaction) IsPrepaid() bool {
	return !t.IsFulfilled() && t.IsPaid()
}
