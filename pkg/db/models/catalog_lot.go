package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// CatalogLot is a farmer's listed batch of a single commodity. The remaining
// quantity only moves through guarded decrement/restore updates.
type CatalogLot struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	FarmerID          uuid.UUID             `gorm:"column:farmer_id;type:uuid;not null;index"`
	FarmerName        string                `gorm:"column:farmer_name;not null"`
	Name              string                `gorm:"column:name;not null"`
	Category          enums.ProduceCategory `gorm:"column:category;type:text;not null"`
	Unit              enums.ProduceUnit     `gorm:"column:unit;type:text;not null"`
	UnitPrice         decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	QuantityListed    int                   `gorm:"column:quantity_listed;not null"`
	QuantityRemaining int                   `gorm:"column:quantity_remaining;not null"`
	Location          string                `gorm:"column:location"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
