package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quote, Order, and Invoice are the paper trail attached to a transaction.
// Document storage (PDF uploads) is handled by a separate service; the
// tracker keeps only the reference number and dates.

type Quote struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date      time.Time `gorm:"column:date;type:date;not null"`
	Number    string    `gorm:"column:number;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date      time.Time `gorm:"column:date;type:date;not null"`
	Number    string    `gorm:"column:number;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type Invoice struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date      time.Time  `gorm:"column:date;type:date;not null"`
	Number    string     `gorm:"column:number;not null"`
	DatePaid  *time.Time `gorm:"column:date_paid;type:date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
