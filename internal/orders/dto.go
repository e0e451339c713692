package orders

import (
	"github.com/google/uuid"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// LineItemInput names one quantity pool and how much the buyer wants from it.
type LineItemInput struct {
	SourceKind enums.SourceKind
	SourceID   uuid.UUID
	Qty        int
}

// PlaceOrderInput captures a buyer's order request. All items must resolve to
// the same seller.
type PlaceOrderInput struct {
	BuyerID         uuid.UUID
	ShippingAddress string
	ContactNumber   string
	Items           []LineItemInput
}

// Page is one page of orders plus the cursor for the next one.
type Page struct {
	Orders     []models.Order
	NextCursor string
}

// sellerRef identifies the single counterparty an order is placed against.
type sellerRef struct {
	ID   uuid.UUID
	Kind enums.SellerKind
	Name string
}
