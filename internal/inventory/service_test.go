package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/internal/catalog"
	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/metrics"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

type fixture struct {
	db        *gorm.DB
	catalog   catalog.Service
	inventory Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.CatalogLot{}, &models.InventoryRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client, err := db.NewWithConn(conn)
	if err != nil {
		t.Fatalf("wrap conn: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test"})

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), logg)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	inventorySvc, err := NewService(NewRepository(conn), catalogSvc, client, logg, metrics.NewMarketplaceMetrics(nil))
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	return &fixture{db: conn, catalog: catalogSvc, inventory: inventorySvc}
}

func (f *fixture) seedLot(t *testing.T, qty int) *models.CatalogLot {
	t.Helper()
	lot, err := f.catalog.ListLot(context.Background(), catalog.ListLotInput{
		FarmerID:   uuid.New(),
		FarmerName: "Raghav Farms",
		Name:       "Wheat",
		Category:   enums.ProduceCategoryGrains,
		Unit:       enums.ProduceUnitKg,
		UnitPrice:  decimal.NewFromFloat(24.50),
		Quantity:   qty,
		Location:   "Nashik",
	})
	if err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	return lot
}

func (f *fixture) lotRemaining(t *testing.T, id uuid.UUID) int {
	t.Helper()
	lot, err := f.catalog.GetLot(context.Background(), id)
	if err != nil {
		t.Fatalf("reload lot: %v", err)
	}
	return lot.QuantityRemaining
}

func TestAcquire(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID:   storeID,
		StoreName: "Anand Traders",
		LotID:     lot.ID,
		Qty:       60,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if record.DeliveryStatus != enums.DeliveryStatusPending {
		t.Fatalf("expected pending delivery, got %s", record.DeliveryStatus)
	}
	if record.QtyPurchased != 60 || record.QtyAvailable != 60 {
		t.Fatalf("unexpected quantities: %+v", record)
	}
	if !record.PurchasePrice.Equal(lot.UnitPrice) {
		t.Fatalf("expected purchase price %s, got %s", lot.UnitPrice, record.PurchasePrice)
	}
	if !record.SellingPrice.Equal(lot.UnitPrice) {
		t.Fatalf("expected selling price to default to lot price, got %s", record.SellingPrice)
	}
	if got := f.lotRemaining(t, lot.ID); got != 40 {
		t.Fatalf("expected lot at 40, got %d", got)
	}
}

func TestAcquireInsufficientLeavesLotUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)

	_, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID:   uuid.New(),
		StoreName: "Anand Traders",
		LotID:     lot.ID,
		Qty:       150,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientQuantity {
		t.Fatalf("expected insufficient quantity, got %v", err)
	}
	if got := f.lotRemaining(t, lot.ID); got != 100 {
		t.Fatalf("failed acquire must not decrement, got %d", got)
	}

	var count int64
	if err := f.db.Model(&models.InventoryRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed acquire must not create a record, found %d", count)
	}
}

// Two stores split a 100kg lot; the second purchase beyond the remainder is
// rejected and nothing changes.
func TestAcquireSplitsLotAcrossStores(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)

	if _, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: uuid.New(), StoreName: "Store A", LotID: lot.ID, Qty: 60,
	}); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: uuid.New(), StoreName: "Store B", LotID: lot.ID, Qty: 40,
	}); err != nil {
		t.Fatalf("second acquire: %v", err)
	}

	_, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: uuid.New(), StoreName: "Store C", LotID: lot.ID, Qty: 1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientQuantity {
		t.Fatalf("expected drained lot to reject purchase, got %v", err)
	}
	if got := f.lotRemaining(t, lot.ID); got != 0 {
		t.Fatalf("expected empty lot, got %d", got)
	}
}

func TestMarkDelivered(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 50,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	delivered, err := f.inventory.MarkDelivered(ctx, record.ID, storeID)
	if err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if delivered.DeliveryStatus != enums.DeliveryStatusReceived {
		t.Fatalf("expected received, got %s", delivered.DeliveryStatus)
	}

	// Second call is a no-op, not an error.
	again, err := f.inventory.MarkDelivered(ctx, record.ID, storeID)
	if err != nil {
		t.Fatalf("repeat mark delivered: %v", err)
	}
	if again.DeliveryStatus != enums.DeliveryStatusReceived {
		t.Fatalf("expected received after repeat, got %s", again.DeliveryStatus)
	}

	_, err = f.inventory.MarkDelivered(ctx, record.ID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for other store, got %v", err)
	}
}

func TestCancelRestoresLot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 70,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := f.inventory.Cancel(ctx, record.ID, storeID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := f.lotRemaining(t, lot.ID); got != 100 {
		t.Fatalf("expected lot restored to 100, got %d", got)
	}

	_, err = f.inventory.GetRecord(ctx, record.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected record removed, got %v", err)
	}
}

func TestCancelDeliveredRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 70,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := f.inventory.MarkDelivered(ctx, record.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	err = f.inventory.Cancel(ctx, record.ID, storeID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestCancelSurvivesMissingLot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 30,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := f.db.Delete(&models.CatalogLot{}, "id = ?", lot.ID).Error; err != nil {
		t.Fatalf("delete lot: %v", err)
	}

	if err := f.inventory.Cancel(ctx, record.ID, storeID); err != nil {
		t.Fatalf("cancel with missing lot should still succeed: %v", err)
	}
}

func TestAdjustReconcilesLot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Raise 40 -> 70, lot loses 30 more.
	adjusted, err := f.inventory.Adjust(ctx, AdjustInput{RecordID: record.ID, StoreID: storeID, Qty: 70})
	if err != nil {
		t.Fatalf("adjust up: %v", err)
	}
	if adjusted.QtyPurchased != 70 || adjusted.QtyAvailable != 70 {
		t.Fatalf("unexpected quantities after raise: %+v", adjusted)
	}
	if got := f.lotRemaining(t, lot.ID); got != 30 {
		t.Fatalf("expected lot at 30, got %d", got)
	}

	// Lower 70 -> 20, lot gets 50 back.
	adjusted, err = f.inventory.Adjust(ctx, AdjustInput{RecordID: record.ID, StoreID: storeID, Qty: 20})
	if err != nil {
		t.Fatalf("adjust down: %v", err)
	}
	if adjusted.QtyPurchased != 20 {
		t.Fatalf("unexpected quantity after lower: %+v", adjusted)
	}
	if got := f.lotRemaining(t, lot.ID); got != 80 {
		t.Fatalf("expected lot at 80, got %d", got)
	}

	// Raising beyond what the lot holds fails and changes nothing.
	_, err = f.inventory.Adjust(ctx, AdjustInput{RecordID: record.ID, StoreID: storeID, Qty: 200})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientQuantity {
		t.Fatalf("expected insufficient quantity, got %v", err)
	}
	if got := f.lotRemaining(t, lot.ID); got != 80 {
		t.Fatalf("failed adjust must not move the lot, got %d", got)
	}
}

func TestAdjustUpdatesSellingPrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Same quantity, new price.
	adjusted, err := f.inventory.Adjust(ctx, AdjustInput{
		RecordID: record.ID, StoreID: storeID, Qty: 40,
		SellingPrice: decimal.NewFromInt(32),
	})
	if err != nil {
		t.Fatalf("adjust price: %v", err)
	}
	if !adjusted.SellingPrice.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("expected selling price 32, got %s", adjusted.SellingPrice)
	}

	reloaded, err := f.inventory.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.SellingPrice.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("price change not persisted, got %s", reloaded.SellingPrice)
	}

	// Quantity change without a price keeps the stored price.
	adjusted, err = f.inventory.Adjust(ctx, AdjustInput{
		RecordID: record.ID, StoreID: storeID, Qty: 25,
	})
	if err != nil {
		t.Fatalf("adjust quantity: %v", err)
	}
	if adjusted.QtyPurchased != 25 {
		t.Fatalf("unexpected quantity: %+v", adjusted)
	}
	if !adjusted.SellingPrice.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("price must survive a quantity-only adjust, got %s", adjusted.SellingPrice)
	}

	// Quantity and price together.
	adjusted, err = f.inventory.Adjust(ctx, AdjustInput{
		RecordID: record.ID, StoreID: storeID, Qty: 30,
		SellingPrice: decimal.NewFromInt(28),
	})
	if err != nil {
		t.Fatalf("adjust both: %v", err)
	}
	if adjusted.QtyPurchased != 30 || !adjusted.SellingPrice.Equal(decimal.NewFromInt(28)) {
		t.Fatalf("unexpected state: %+v", adjusted)
	}
}

func TestAdjustDeliveredRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := f.inventory.MarkDelivered(ctx, record.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	_, err = f.inventory.Adjust(ctx, AdjustInput{RecordID: record.ID, StoreID: storeID, Qty: 50})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestListForSaleLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 50,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Listing before delivery is rejected.
	_, err = f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 10, Price: decimal.NewFromInt(30),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state before delivery, got %v", err)
	}

	if _, err := f.inventory.MarkDelivered(ctx, record.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	// Listing more than held is rejected.
	_, err = f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 51, Price: decimal.NewFromInt(30),
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientQuantity {
		t.Fatalf("expected insufficient quantity, got %v", err)
	}

	listed, err := f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 30, Price: decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("list for sale: %v", err)
	}
	if !listed.Listed || listed.ListedQty != 30 {
		t.Fatalf("unexpected listing state: %+v", listed)
	}

	// Relisting replaces the previous quantity and price.
	relisted, err := f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 20, Price: decimal.NewFromInt(35),
	})
	if err != nil {
		t.Fatalf("relist: %v", err)
	}
	if relisted.ListedQty != 20 || !relisted.ListedPrice.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("unexpected relist state: %+v", relisted)
	}

	unlisted, err := f.inventory.Unlist(ctx, record.ID, storeID)
	if err != nil {
		t.Fatalf("unlist: %v", err)
	}
	if unlisted.Listed || unlisted.ListedQty != 0 {
		t.Fatalf("unexpected unlist state: %+v", unlisted)
	}

	// Unlisting again is a no-op.
	if _, err := f.inventory.Unlist(ctx, record.ID, storeID); err != nil {
		t.Fatalf("repeat unlist: %v", err)
	}
}

// An order that commits between the listing read and write lowers
// qty_available; the guarded listing write must see the new value instead of
// overcommitting against the stale read.
func TestListForSaleChecksFreshAvailability(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := f.inventory.MarkDelivered(ctx, record.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if _, err := f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 40, Price: decimal.NewFromInt(30),
	}); err != nil {
		t.Fatalf("list for sale: %v", err)
	}

	// 10 units sell out from under the next relist.
	err = f.db.Exec(`
		UPDATE inventory_records
		SET listed_qty = listed_qty - 10, qty_available = qty_available - 10
		WHERE id = ?
	`, record.ID).Error
	if err != nil {
		t.Fatalf("simulate sale: %v", err)
	}

	_, err = f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 40, Price: decimal.NewFromInt(30),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientQuantity {
		t.Fatalf("expected insufficient quantity, got %v", err)
	}

	relisted, err := f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: record.ID, StoreID: storeID, Qty: 30, Price: decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("relist within holdings: %v", err)
	}
	if relisted.ListedQty != 30 || relisted.QtyAvailable != 30 {
		t.Fatalf("unexpected relist state: %+v", relisted)
	}
}

// The listing write enforces availability on its own, without relying on the
// service pre-check that may have read stale state.
func TestSetListingGuardRejectsOvercommit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := f.inventory.MarkDelivered(ctx, record.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	repo := NewRepository(f.db)
	ok, err := repo.SetListing(ctx, record.ID, 50, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("set listing: %v", err)
	}
	if ok {
		t.Fatal("listing beyond qty_available must not be written")
	}

	ok, err = repo.SetListing(ctx, record.ID, 40, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("set listing within holdings: %v", err)
	}
	if !ok {
		t.Fatal("listing within qty_available must be written")
	}
}

// Pending-only transitions must refuse a record whose delivery landed after
// the caller's read.
func TestPendingGuardsRefuseDeliveredRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	record, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := f.inventory.MarkDelivered(ctx, record.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	repo := NewRepository(f.db)
	if ok, err := repo.MarkReceived(ctx, record.ID); err != nil || ok {
		t.Fatalf("repeat transition must not match a row: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.AdjustPending(ctx, record.ID, 10, nil); err != nil || ok {
		t.Fatalf("adjust must not touch a delivered record: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.DeletePending(ctx, record.ID); err != nil || ok {
		t.Fatalf("delete must not touch a delivered record: ok=%v err=%v", ok, err)
	}

	reloaded, err := f.inventory.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.QtyPurchased != 40 || reloaded.DeliveryStatus != enums.DeliveryStatusReceived {
		t.Fatalf("record must be untouched: %+v", reloaded)
	}
}

func TestBrowseListings(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lot := f.seedLot(t, 100)
	storeID := uuid.New()

	listedRec, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 40,
	})
	if err != nil {
		t.Fatalf("acquire listed: %v", err)
	}
	if _, err := f.inventory.MarkDelivered(ctx, listedRec.ID, storeID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if _, err := f.inventory.ListForSale(ctx, ListForSaleInput{
		RecordID: listedRec.ID, StoreID: storeID, Qty: 40, Price: decimal.NewFromInt(28),
	}); err != nil {
		t.Fatalf("list for sale: %v", err)
	}

	hiddenRec, err := f.inventory.Acquire(ctx, AcquireInput{
		StoreID: storeID, StoreName: "Anand Traders", LotID: lot.ID, Qty: 20,
	})
	if err != nil {
		t.Fatalf("acquire hidden: %v", err)
	}

	page, err := f.inventory.BrowseListings(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("browse listings: %v", err)
	}
	if len(page.Records) != 1 || page.Records[0].ID != listedRec.ID {
		t.Fatalf("expected only the listed record, got %+v", page.Records)
	}
	if page.Records[0].ID == hiddenRec.ID {
		t.Fatal("unlisted record must not appear")
	}

	store, err := f.inventory.StoreRecords(ctx, storeID, pagination.Params{})
	if err != nil {
		t.Fatalf("store records: %v", err)
	}
	if len(store.Records) != 2 {
		t.Fatalf("expected both records for the store, got %d", len(store.Records))
	}
}
