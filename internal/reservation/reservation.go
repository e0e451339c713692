// Package reservation implements guarded quantity holds over the catalog and
// inventory listing pools. All operations run inside a caller-supplied
// transaction; a shortfall surfaces as an error so the whole transaction rolls
// back and no partial hold survives.
package reservation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
)

// Request identifies one quantity pool and how much to take from it.
type Request struct {
	SourceKind enums.SourceKind
	SourceID   uuid.UUID
	Qty        int
}

// Reserve takes every requested quantity from its pool. The guarded WHERE
// clauses are the oversell protection; two concurrent orders can never both
// take the last unit.
func Reserve(ctx context.Context, tx *gorm.DB, requests []Request) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for reservation")
	}
	for _, req := range requests {
		if err := validate(req); err != nil {
			return err
		}
	}

	for _, req := range requests {
		var res *gorm.DB
		switch req.SourceKind {
		case enums.SourceKindCatalogLot:
			res = tx.WithContext(ctx).Exec(`
				UPDATE catalog_lots
				SET quantity_remaining = quantity_remaining - ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND quantity_remaining >= ?
			`, req.Qty, req.SourceID, req.Qty)
		case enums.SourceKindInventoryRecord:
			res = tx.WithContext(ctx).Exec(`
				UPDATE inventory_records
				SET listed_qty = listed_qty - ?,
					qty_available = qty_available - ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND listed AND listed_qty >= ? AND qty_available >= ?
			`, req.Qty, req.Qty, req.SourceID, req.Qty, req.Qty)
		}
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve quantity")
		}
		if res.RowsAffected != 1 {
			return shortfall(ctx, tx, req)
		}
	}
	return nil
}

// Release returns quantities to their pools. Pools that no longer exist are
// skipped and reported back so the caller can log them; a vanished pool must
// not block a cancellation.
func Release(ctx context.Context, tx *gorm.DB, requests []Request) ([]Request, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for release")
	}

	var skipped []Request
	for _, req := range requests {
		if err := validate(req); err != nil {
			return nil, err
		}

		var res *gorm.DB
		switch req.SourceKind {
		case enums.SourceKindCatalogLot:
			res = tx.WithContext(ctx).Exec(`
				UPDATE catalog_lots
				SET quantity_remaining = quantity_remaining + ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`, req.Qty, req.SourceID)
		case enums.SourceKindInventoryRecord:
			res = tx.WithContext(ctx).Exec(`
				UPDATE inventory_records
				SET qty_available = qty_available + ?,
					listed_qty = listed_qty + (CASE WHEN listed THEN ? ELSE 0 END),
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`, req.Qty, req.Qty, req.SourceID)
		}
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release quantity")
		}
		if res.RowsAffected != 1 {
			skipped = append(skipped, req)
		}
	}
	return skipped, nil
}

func validate(req Request) error {
	if !req.SourceKind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation source kind")
	}
	if req.SourceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation source id required")
	}
	if req.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}
	return nil
}

// shortfall inspects the pool that rejected the guarded update to tell a
// missing source apart from one with too little quantity.
func shortfall(ctx context.Context, tx *gorm.DB, req Request) error {
	query := `SELECT quantity_remaining FROM catalog_lots WHERE id = ?`
	if req.SourceKind == enums.SourceKindInventoryRecord {
		// The buyable amount is the listed quantity capped by what is
		// physically still on hand.
		query = `
			SELECT CASE
				WHEN NOT listed THEN 0
				WHEN qty_available < listed_qty THEN qty_available
				ELSE listed_qty
			END
			FROM inventory_records WHERE id = ?`
	}

	var available []int
	if err := tx.WithContext(ctx).Raw(query, req.SourceID).Scan(&available).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect reservation source")
	}
	if len(available) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reservation source not found")
	}

	return pkgerrors.New(pkgerrors.CodeInsufficientQuantity, "source has less quantity than requested").
		WithDetails(map[string]any{
			"source_kind": req.SourceKind,
			"source_id":   req.SourceID,
			"requested":   req.Qty,
			"available":   available[0],
		})
}
