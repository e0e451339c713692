package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// Order is a buyer's transaction against a single seller. Line items are
// immutable snapshots taken at placement; later price or stock changes never
// alter a placed order.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID           uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID          uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;index"`
	SellerKind        enums.SellerKind        `gorm:"column:seller_kind;type:text;not null"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	TotalAmount       decimal.Decimal         `gorm:"column:total_amount;type:numeric(14,2);not null"`
	ShippingAddress   string                  `gorm:"column:shipping_address;not null"`
	ContactNumber     string                  `gorm:"column:contact_number;not null"`
	DeliveredAt       *time.Time              `gorm:"column:delivered_at"`
	PaidAt            *time.Time              `gorm:"column:paid_at"`
	CancelledAt       *time.Time              `gorm:"column:cancelled_at"`
	Items             []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
