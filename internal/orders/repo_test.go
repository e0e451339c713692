package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

func setupOrdersRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&models.Order{}, &models.OrderLineItem{}))
	return conn
}

func buildOrder(buyerID, sellerID uuid.UUID, createdAt time.Time) *models.Order {
	return &models.Order{
		BuyerID:           buyerID,
		SellerID:          sellerID,
		SellerKind:        enums.SellerKindFarmer,
		FulfillmentStatus: enums.FulfillmentStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		TotalAmount:       decimal.RequireFromString("490.00"),
		ShippingAddress:   "14 Mandi Road, Nashik",
		ContactNumber:     "+91-9000000000",
		CreatedAt:         createdAt,
		Items: []models.OrderLineItem{
			{
				SourceKind: enums.SourceKindCatalogLot,
				SourceID:   uuid.New(),
				Name:       "Wheat",
				Unit:       enums.ProduceUnitKg,
				UnitPrice:  decimal.RequireFromString("24.50"),
				Qty:        20,
				SellerName: "Ravi Patil",
			},
		},
	}
}

func TestRepositoryCreateAssignsIDs(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupOrdersRepoDB(t))

	order, err := repo.Create(context.Background(), buildOrder(uuid.New(), uuid.New(), time.Time{}))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	require.Len(t, order.Items, 1)
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
}

func TestRepositoryFindDetailPreloadsItems(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupOrdersRepoDB(t))

	created, err := repo.Create(context.Background(), buildOrder(uuid.New(), uuid.New(), time.Time{}))
	require.NoError(t, err)

	bare, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, bare.Items)

	detail, err := repo.FindDetail(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Wheat", detail.Items[0].Name)
	assert.True(t, detail.Items[0].UnitPrice.Equal(decimal.RequireFromString("24.50")))
}

func TestRepositoryListByBuyerPagesWithCursor(t *testing.T) {
	t.Parallel()

	db := setupOrdersRepoDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(context.Background(), buildOrder(buyerID, uuid.New(), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := repo.Create(context.Background(), buildOrder(uuid.New(), uuid.New(), base))
	require.NoError(t, err)

	first, err := repo.ListByBuyer(context.Background(), buyerID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListByBuyer(context.Background(), buyerID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	assert.True(t, rest[0].CreatedAt.After(first[1].CreatedAt))
	for _, order := range append(first, rest...) {
		assert.Equal(t, buyerID, order.BuyerID)
	}
}
