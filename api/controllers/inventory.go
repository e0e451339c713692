package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/api/responses"
	"github.com/agrimandi/agrimandi-backend/api/validators"
	inventorysvc "github.com/agrimandi/agrimandi-backend/internal/inventory"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

type acquireRequest struct {
	StoreName    string `json:"store_name" validate:"required"`
	LotID        string `json:"lot_id" validate:"required,uuid"`
	Qty          int    `json:"qty" validate:"required,min=1"`
	SellingPrice string `json:"selling_price,omitempty"`
}

func (r acquireRequest) toInput() (inventorysvc.AcquireInput, error) {
	lotID, err := validators.ParseUUIDParam(r.LotID, "lot_id")
	if err != nil {
		return inventorysvc.AcquireInput{}, err
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(r.SellingPrice); raw != "" {
		price, err = decimal.NewFromString(raw)
		if err != nil {
			return inventorysvc.AcquireInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selling price")
		}
	}

	return inventorysvc.AcquireInput{
		StoreName:    strings.TrimSpace(r.StoreName),
		LotID:        lotID,
		Qty:          r.Qty,
		SellingPrice: price,
	}, nil
}

// AcquireInventory handles a store buying quantity out of a catalog lot.
func AcquireInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload acquireRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.StoreID = actorID

		record, err := svc.Acquire(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// MarkDelivered confirms a purchase arrived at the store.
func MarkDelivered(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, recordID, err := actorAndRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.MarkDelivered(r.Context(), recordID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CancelInventory undoes an undelivered purchase and returns the quantity to
// the source lot.
func CancelInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, recordID, err := actorAndRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), recordID, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

type adjustRequest struct {
	Qty          int    `json:"qty" validate:"required,min=1"`
	SellingPrice string `json:"selling_price,omitempty"`
}

// AdjustInventory changes the purchased quantity, and optionally the selling
// price, of an undelivered record.
func AdjustInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, recordID, err := actorAndRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price := decimal.Zero
		if raw := strings.TrimSpace(payload.SellingPrice); raw != "" {
			price, err = decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selling price"))
				return
			}
		}

		record, err := svc.Adjust(r.Context(), inventorysvc.AdjustInput{
			RecordID:     recordID,
			StoreID:      actorID,
			Qty:          payload.Qty,
			SellingPrice: price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

type listForSaleRequest struct {
	Qty   int    `json:"qty" validate:"required,min=1"`
	Price string `json:"price" validate:"required"`
}

// ListForSale offers part of a delivered holding for resale.
func ListForSale(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, recordID, err := actorAndRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload listForSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(payload.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		record, err := svc.ListForSale(r.Context(), inventorysvc.ListForSaleInput{
			RecordID: recordID,
			StoreID:  actorID,
			Qty:      payload.Qty,
			Price:    price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// Unlist withdraws a resale listing.
func Unlist(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, recordID, err := actorAndRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Unlist(r.Context(), recordID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// StoreInventory returns the acting store's holdings.
func StoreInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.StoreRecords(r.Context(), actorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"records":     page.Records,
			"next_cursor": page.NextCursor,
		})
	}
}

// BrowseListings returns store holdings currently offered for resale.
func BrowseListings(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.BrowseListings(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"records":     page.Records,
			"next_cursor": page.NextCursor,
		})
	}
}

func actorAndRecord(r *http.Request) (actorID, recordID uuid.UUID, err error) {
	actorID, err = requireActor(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	recordID, err = validators.ParseUUIDParam(chi.URLParam(r, "recordID"), "recordID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return actorID, recordID, nil
}
