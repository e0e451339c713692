package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// InventoryRecord is a store's holding acquired from a catalog lot. The
// SourceLotID is provenance only; the record's lifecycle is independent of
// the lot once purchased. Resale listing is allowed only after delivery.
type InventoryRecord struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	StoreID        uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	StoreName      string                `gorm:"column:store_name;not null"`
	SourceLotID    uuid.UUID             `gorm:"column:source_lot_id;type:uuid;not null"`
	Name           string                `gorm:"column:name;not null"`
	Category       enums.ProduceCategory `gorm:"column:category;type:text;not null"`
	Unit           enums.ProduceUnit     `gorm:"column:unit;type:text;not null"`
	QtyPurchased   int                   `gorm:"column:qty_purchased;not null"`
	QtyAvailable   int                   `gorm:"column:qty_available;not null"`
	PurchasePrice  decimal.Decimal       `gorm:"column:purchase_price;type:numeric(12,2);not null"`
	SellingPrice   decimal.Decimal       `gorm:"column:selling_price;type:numeric(12,2);not null"`
	DeliveryStatus enums.DeliveryStatus  `gorm:"column:delivery_status;type:text;not null;default:'pending'"`
	Listed         bool                  `gorm:"column:listed;not null;default:false"`
	ListedQty      int                   `gorm:"column:listed_qty;not null;default:0"`
	ListedPrice    decimal.Decimal       `gorm:"column:listed_price;type:numeric(12,2);not null;default:0"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
