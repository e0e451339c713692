package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/metrics"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogLedger is the slice of the catalog service inventory needs: taking
// quantity out of a lot when a store buys, and putting it back when the
// purchase is cancelled or adjusted down.
type CatalogLedger interface {
	DecrementLot(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (*models.CatalogLot, error)
	RestoreLot(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
}

// AcquireInput captures a store's purchase from a catalog lot.
type AcquireInput struct {
	StoreID      uuid.UUID
	StoreName    string
	LotID        uuid.UUID
	Qty          int
	SellingPrice decimal.Decimal
}

// ListForSaleInput captures a resale listing for a delivered record.
type ListForSaleInput struct {
	RecordID uuid.UUID
	StoreID  uuid.UUID
	Qty      int
	Price    decimal.Decimal
}

// AdjustInput captures a pre-delivery correction to a purchase. A zero
// SellingPrice keeps the current price.
type AdjustInput struct {
	RecordID     uuid.UUID
	StoreID      uuid.UUID
	Qty          int
	SellingPrice decimal.Decimal
}

// Page is one page of inventory records plus the cursor for the next one.
type Page struct {
	Records    []models.InventoryRecord
	NextCursor string
}

// Service exposes the inventory ledger operations.
type Service interface {
	Acquire(ctx context.Context, input AcquireInput) (*models.InventoryRecord, error)
	MarkDelivered(ctx context.Context, recordID, storeID uuid.UUID) (*models.InventoryRecord, error)
	Cancel(ctx context.Context, recordID, storeID uuid.UUID) error
	Adjust(ctx context.Context, input AdjustInput) (*models.InventoryRecord, error)
	ListForSale(ctx context.Context, input ListForSaleInput) (*models.InventoryRecord, error)
	Unlist(ctx context.Context, recordID, storeID uuid.UUID) (*models.InventoryRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error)
	StoreRecords(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*Page, error)
	BrowseListings(ctx context.Context, params pagination.Params) (*Page, error)
}

type service struct {
	repo    Repository
	catalog CatalogLedger
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.MarketplaceMetrics
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, catalog CatalogLedger, tx txRunner, logg *logger.Logger, m *metrics.MarketplaceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx, logg: logg, metrics: m}, nil
}

// Acquire moves quantity from a catalog lot into a new pending inventory
// record. Decrement and record creation commit or roll back together.
func (s *service) Acquire(ctx context.Context, input AcquireInput) (*models.InventoryRecord, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.LotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot id required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.SellingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selling price cannot be negative")
	}

	var record *models.InventoryRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lot, err := s.catalog.DecrementLot(ctx, tx, input.LotID, input.Qty)
		if err != nil {
			return err
		}

		selling := input.SellingPrice
		if selling.IsZero() {
			selling = lot.UnitPrice
		}

		record = &models.InventoryRecord{
			StoreID:        input.StoreID,
			StoreName:      input.StoreName,
			SourceLotID:    lot.ID,
			Name:           lot.Name,
			Category:       lot.Category,
			Unit:           lot.Unit,
			QtyPurchased:   input.Qty,
			QtyAvailable:   input.Qty,
			PurchasePrice:  lot.UnitPrice,
			SellingPrice:   selling,
			DeliveryStatus: enums.DeliveryStatusPending,
		}
		record, err = s.repo.WithTx(tx).Create(ctx, record)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncInventoryAcquired()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"record_id": record.ID,
		"store_id":  record.StoreID,
		"lot_id":    record.SourceLotID,
		"quantity":  record.QtyPurchased,
	}), "inventory acquired from catalog")
	return record, nil
}

// MarkDelivered transitions a record from pending to received. Calling it on
// an already received record is a no-op.
func (s *service) MarkDelivered(ctx context.Context, recordID, storeID uuid.UUID) (*models.InventoryRecord, error) {
	record, err := s.ownedRecord(ctx, s.repo, recordID, storeID)
	if err != nil {
		return nil, err
	}
	if record.DeliveryStatus == enums.DeliveryStatusReceived {
		return record, nil
	}

	ok, err := s.repo.MarkReceived(ctx, record.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark record delivered")
	}
	if !ok {
		// Lost the transition to a concurrent caller; the reload tells us
		// whether the record is now received (fine) or gone.
		return s.ownedRecord(ctx, s.repo, recordID, storeID)
	}
	record.DeliveryStatus = enums.DeliveryStatusReceived
	return record, nil
}

// Cancel undoes a purchase that has not been delivered. The purchased
// quantity goes back to the source lot and the record is removed. A source
// lot that no longer exists is logged and skipped so the cancellation still
// completes.
func (s *service) Cancel(ctx context.Context, recordID, storeID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.ownedRecord(ctx, repo, recordID, storeID)
		if err != nil {
			return err
		}
		if record.DeliveryStatus != enums.DeliveryStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "only undelivered purchases can be cancelled").
				WithDetails(map[string]any{"delivery_status": record.DeliveryStatus})
		}

		if err := s.catalog.RestoreLot(ctx, tx, record.SourceLotID, record.QtyPurchased); err != nil {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				return err
			}
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"record_id": record.ID,
				"lot_id":    record.SourceLotID,
			}), "source lot gone, cancelling without restore")
		}

		ok, err := repo.DeletePending(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory record")
		}
		if !ok {
			// Delivery landed between the read and the delete; rolling back
			// also undoes the lot restore above.
			return pkgerrors.New(pkgerrors.CodeInvalidState, "only undelivered purchases can be cancelled").
				WithDetails(map[string]any{"delivery_status": enums.DeliveryStatusReceived})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncInventoryCancelled()
	return nil
}

// Adjust changes the purchased quantity, and optionally the selling price, of
// an undelivered record. The catalog lot absorbs the quantity difference in
// the same transaction: raising the quantity takes more from the lot, lowering
// it gives the difference back.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.InventoryRecord, error) {
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.SellingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selling price cannot be negative")
	}

	var record *models.InventoryRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.ownedRecord(ctx, repo, input.RecordID, input.StoreID)
		if err != nil {
			return err
		}
		if loaded.DeliveryStatus != enums.DeliveryStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "only undelivered purchases can be adjusted").
				WithDetails(map[string]any{"delivery_status": loaded.DeliveryStatus})
		}

		delta := input.Qty - loaded.QtyPurchased
		switch {
		case delta > 0:
			if _, err := s.catalog.DecrementLot(ctx, tx, loaded.SourceLotID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := s.catalog.RestoreLot(ctx, tx, loaded.SourceLotID, -delta); err != nil {
				typed := pkgerrors.As(err)
				if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
					return err
				}
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"record_id": loaded.ID,
					"lot_id":    loaded.SourceLotID,
				}), "source lot gone, adjusting without restore")
			}
		default:
			if input.SellingPrice.IsZero() {
				record = loaded
				return nil
			}
		}

		var price *decimal.Decimal
		if !input.SellingPrice.IsZero() {
			price = &input.SellingPrice
		}
		ok, err := repo.AdjustPending(ctx, loaded.ID, input.Qty, price)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust inventory record")
		}
		if !ok {
			// Delivery landed mid-transaction; the rollback undoes any lot
			// delta applied above.
			return pkgerrors.New(pkgerrors.CodeInvalidState, "only undelivered purchases can be adjusted").
				WithDetails(map[string]any{"delivery_status": enums.DeliveryStatusReceived})
		}
		loaded.QtyPurchased = input.Qty
		loaded.QtyAvailable = input.Qty
		if price != nil {
			loaded.SellingPrice = *price
		}
		record = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListForSale offers part of a delivered holding for resale. The listed
// quantity is absolute, so calling it again replaces the previous listing.
func (s *service) ListForSale(ctx context.Context, input ListForSaleInput) (*models.InventoryRecord, error) {
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing price must be positive")
	}

	record, err := s.ownedRecord(ctx, s.repo, input.RecordID, input.StoreID)
	if err != nil {
		return nil, err
	}
	if record.DeliveryStatus != enums.DeliveryStatusReceived {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "record must be delivered before listing").
			WithDetails(map[string]any{"delivery_status": record.DeliveryStatus})
	}
	if input.Qty > record.QtyAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientQuantity, "listing exceeds available quantity").
			WithDetails(map[string]any{
				"requested": input.Qty,
				"available": record.QtyAvailable,
			})
	}

	// The write re-checks qty_available so an order committing after the read
	// above cannot leave listed_qty higher than what is on hand.
	ok, err := s.repo.SetListing(ctx, record.ID, input.Qty, input.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list record for sale")
	}
	if !ok {
		return nil, s.listingRejected(ctx, input)
	}
	record.Listed = true
	record.ListedQty = input.Qty
	record.ListedPrice = input.Price
	return record, nil
}

// listingRejected classifies a SetListing guard miss from fresh state.
func (s *service) listingRejected(ctx context.Context, input ListForSaleInput) error {
	record, err := s.repo.FindByID(ctx, input.RecordID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	if record.DeliveryStatus != enums.DeliveryStatusReceived {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "record must be delivered before listing").
			WithDetails(map[string]any{"delivery_status": record.DeliveryStatus})
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientQuantity, "listing exceeds available quantity").
		WithDetails(map[string]any{
			"requested": input.Qty,
			"available": record.QtyAvailable,
		})
}

// Unlist withdraws a resale listing. Unlisting a record that is not listed is
// a no-op.
func (s *service) Unlist(ctx context.Context, recordID, storeID uuid.UUID) (*models.InventoryRecord, error) {
	record, err := s.ownedRecord(ctx, s.repo, recordID, storeID)
	if err != nil {
		return nil, err
	}
	if !record.Listed {
		return record, nil
	}

	// A false return means another caller already cleared the listing, which
	// lands on the same no-op outcome.
	if _, err := s.repo.ClearListing(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlist record")
	}
	record.Listed = false
	record.ListedQty = 0
	return record, nil
}

func (s *service) GetRecord(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	return record, nil
}

func (s *service) StoreRecords(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*Page, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	records, err := s.repo.ListByStore(ctx, storeID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store inventory")
	}
	return buildPage(records, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) BrowseListings(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	records, err := s.repo.ListListed(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list resale listings")
	}
	return buildPage(records, pagination.NormalizeLimit(params.Limit)), nil
}

// ownedRecord loads a record and checks it belongs to the acting store.
func (s *service) ownedRecord(ctx context.Context, repo Repository, recordID, storeID uuid.UUID) (*models.InventoryRecord, error) {
	if recordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	record, err := repo.FindByID(ctx, recordID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	if record.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "record does not belong to store")
	}
	return record, nil
}

func buildPage(records []models.InventoryRecord, limit int) *Page {
	page := &Page{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		last := page.Records[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page
}
