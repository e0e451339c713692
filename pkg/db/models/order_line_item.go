package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// OrderLineItem captures the snapshot of one item within an order. SourceKind
// plus SourceID locate the quantity pool the item was reserved from, which is
// also where a cancellation restores it.
type OrderLineItem struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	SourceKind enums.SourceKind  `gorm:"column:source_kind;type:text;not null"`
	SourceID   uuid.UUID         `gorm:"column:source_id;type:uuid;not null"`
	Name       string            `gorm:"column:name;not null"`
	Unit       enums.ProduceUnit `gorm:"column:unit;type:text;not null"`
	UnitPrice  decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Qty        int               `gorm:"column:qty;not null"`
	SellerName string            `gorm:"column:seller_name;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
