package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/internal/repo"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// Repository defines persistence operations for inventory records. State
// transitions are guarded single-statement updates so two callers racing on
// the same record can never both win; callers check the returned bool.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.InventoryRecord) (*models.InventoryRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.InventoryRecord, error)
	ListListed(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.InventoryRecord, error)
	MarkReceived(ctx context.Context, id uuid.UUID) (bool, error)
	AdjustPending(ctx context.Context, id uuid.UUID, qty int, price *decimal.Decimal) (bool, error)
	SetListing(ctx context.Context, id uuid.UUID, qty int, price decimal.Decimal) (bool, error)
	ClearListing(ctx context.Context, id uuid.UUID) (bool, error)
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, record *models.InventoryRecord) (*models.InventoryRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := r.DB(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.InventoryRecord, error) {
	q := r.DB(ctx).
		Where("store_id = ?", storeID)
	return page(q, cursor, limit)
}

func (r *repository) ListListed(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.InventoryRecord, error) {
	q := r.DB(ctx).
		Where("listed AND listed_qty > 0")
	return page(q, cursor, limit)
}

// MarkReceived flips a pending record to received. Returns false when the
// record is missing or already past pending.
func (r *repository) MarkReceived(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Exec(`
		UPDATE inventory_records
		SET delivery_status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND delivery_status = ?
	`, enums.DeliveryStatusReceived, id, enums.DeliveryStatusPending)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdjustPending rewrites the purchased quantity (and optionally the selling
// price) of a record that is still pending delivery. Returns false when the
// record is missing or delivery already happened.
func (r *repository) AdjustPending(ctx context.Context, id uuid.UUID, qty int, price *decimal.Decimal) (bool, error) {
	var res *gorm.DB
	if price != nil {
		res = r.DB(ctx).Exec(`
			UPDATE inventory_records
			SET qty_purchased = ?,
				qty_available = ?,
				selling_price = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND delivery_status = ?
		`, qty, qty, *price, id, enums.DeliveryStatusPending)
	} else {
		res = r.DB(ctx).Exec(`
			UPDATE inventory_records
			SET qty_purchased = ?,
				qty_available = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND delivery_status = ?
		`, qty, qty, id, enums.DeliveryStatusPending)
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetListing offers qty units for resale. The qty_available guard keeps the
// listing write from overcommitting when an order landed after the caller
// read the record.
func (r *repository) SetListing(ctx context.Context, id uuid.UUID, qty int, price decimal.Decimal) (bool, error) {
	res := r.DB(ctx).Exec(`
		UPDATE inventory_records
		SET listed = ?,
			listed_qty = ?,
			listed_price = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND delivery_status = ? AND qty_available >= ?
	`, true, qty, price, id, enums.DeliveryStatusReceived, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearListing withdraws a resale listing. Returns false when the record was
// not listed, which callers treat as the no-op case.
func (r *repository) ClearListing(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Exec(`
		UPDATE inventory_records
		SET listed = ?,
			listed_qty = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND listed
	`, false, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeletePending removes a record that is still pending delivery. Returns
// false when the record is missing or delivery already happened.
func (r *repository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Exec(`
		DELETE FROM inventory_records
		WHERE id = ? AND delivery_status = ?
	`, id, enums.DeliveryStatusPending)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func page(q *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.InventoryRecord, error) {
	if cursor != nil {
		q = q.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var records []models.InventoryRecord
	err := q.Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
