package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/internal/repo"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// Repository defines persistence operations for catalog lots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lot *models.CatalogLot) (*models.CatalogLot, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogLot, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.CatalogLot, error)
	ListAvailable(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CatalogLot, error)
	Decrement(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	Restore(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, lot *models.CatalogLot) (*models.CatalogLot, error) {
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(lot).Error; err != nil {
		return nil, err
	}
	return lot, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogLot, error) {
	var lot models.CatalogLot
	if err := r.DB(ctx).First(&lot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *repository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.CatalogLot, error) {
	q := r.DB(ctx).
		Where("farmer_id = ?", farmerID)
	return r.page(q, cursor, limit)
}

func (r *repository) ListAvailable(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CatalogLot, error) {
	q := r.DB(ctx).
		Where("quantity_remaining > 0")
	return r.page(q, cursor, limit)
}

func (r *repository) page(q *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.CatalogLot, error) {
	if cursor != nil {
		q = q.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var lots []models.CatalogLot
	err := q.Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// Decrement atomically subtracts qty from the lot's remaining quantity. It
// returns false when the lot is missing or holds less than qty; the guard in
// the WHERE clause is what makes concurrent oversells impossible.
func (r *repository) Decrement(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.DB(ctx).Exec(`
		UPDATE catalog_lots
		SET quantity_remaining = quantity_remaining - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity_remaining >= ?
	`, qty, id, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Restore adds qty back to the lot's remaining quantity. Returns false when
// the lot no longer exists.
func (r *repository) Restore(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.DB(ctx).Exec(`
		UPDATE catalog_lots
		SET quantity_remaining = quantity_remaining + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
