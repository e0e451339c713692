package catalog

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
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// ListLotInput captures the fields a farmer submits when listing produce.
type ListLotInput struct {
	FarmerID   uuid.UUID
	FarmerName string
	Name       string
	Category   enums.ProduceCategory
	Unit       enums.ProduceUnit
	UnitPrice  decimal.Decimal
	Quantity   int
	Location   string
}

// Page is one page of catalog lots plus the cursor for the next one.
type Page struct {
	Lots       []models.CatalogLot
	NextCursor string
}

// Service exposes the catalog ledger operations.
type Service interface {
	ListLot(ctx context.Context, input ListLotInput) (*models.CatalogLot, error)
	GetLot(ctx context.Context, id uuid.UUID) (*models.CatalogLot, error)
	BrowseAvailable(ctx context.Context, params pagination.Params) (*Page, error)
	FarmerLots(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*Page, error)
	DecrementLot(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (*models.CatalogLot, error)
	RestoreLot(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListLot(ctx context.Context, input ListLotInput) (*models.CatalogLot, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "produce name required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid produce category")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid produce unit")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.UnitPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}

	lot := &models.CatalogLot{
		FarmerID:          input.FarmerID,
		FarmerName:        input.FarmerName,
		Name:              input.Name,
		Category:          input.Category,
		Unit:              input.Unit,
		UnitPrice:         input.UnitPrice,
		QuantityListed:    input.Quantity,
		QuantityRemaining: input.Quantity,
		Location:          input.Location,
	}

	created, err := s.repo.Create(ctx, lot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog lot")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"lot_id":    created.ID,
		"farmer_id": created.FarmerID,
		"quantity":  created.QuantityListed,
	}), "catalog lot listed")
	return created, nil
}

func (s *service) GetLot(ctx context.Context, id uuid.UUID) (*models.CatalogLot, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot id required")
	}
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog lot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog lot")
	}
	return lot, nil
}

func (s *service) BrowseAvailable(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	lots, err := s.repo.ListAvailable(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available lots")
	}
	return buildPage(lots, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) FarmerLots(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*Page, error) {
	if farmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id required")
	}
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	lots, err := s.repo.ListByFarmer(ctx, farmerID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farmer lots")
	}
	return buildPage(lots, pagination.NormalizeLimit(params.Limit)), nil
}

// DecrementLot subtracts qty from a lot inside the caller's transaction. The
// returned snapshot is the lot as it was before the decrement, so callers can
// copy name, unit and price into their own records.
func (s *service) DecrementLot(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (*models.CatalogLot, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	lot, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog lot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog lot")
	}

	ok, err := repo.Decrement(ctx, id, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement catalog lot")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientQuantity, "lot has less quantity than requested").
			WithDetails(map[string]any{
				"lot_id":    id,
				"requested": qty,
				"available": lot.QuantityRemaining,
			})
	}
	return lot, nil
}

// RestoreLot adds qty back to a lot inside the caller's transaction.
func (s *service) RestoreLot(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lot id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	ok, err := s.repo.WithTx(tx).Restore(ctx, id, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore catalog lot")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog lot not found")
	}
	return nil
}

func buildPage(lots []models.CatalogLot, limit int) *Page {
	page := &Page{Lots: lots}
	if len(lots) > limit {
		page.Lots = lots[:limit]
		last := page.Lots[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page
}
