package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/api/middleware"
	"github.com/agrimandi/agrimandi-backend/api/responses"
	"github.com/agrimandi/agrimandi-backend/api/validators"
	catalogsvc "github.com/agrimandi/agrimandi-backend/internal/catalog"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

type listLotRequest struct {
	FarmerName string `json:"farmer_name" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Unit       string `json:"unit" validate:"required"`
	UnitPrice  string `json:"unit_price" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
	Location   string `json:"location,omitempty"`
}

func (r listLotRequest) toInput() (catalogsvc.ListLotInput, error) {
	category, err := enums.ParseProduceCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return catalogsvc.ListLotInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	unit, err := enums.ParseProduceUnit(strings.TrimSpace(r.Unit))
	if err != nil {
		return catalogsvc.ListLotInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.UnitPrice))
	if err != nil {
		return catalogsvc.ListLotInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}

	return catalogsvc.ListLotInput{
		FarmerName: strings.TrimSpace(r.FarmerName),
		Name:       strings.TrimSpace(r.Name),
		Category:   category,
		Unit:       unit,
		UnitPrice:  price,
		Quantity:   r.Quantity,
		Location:   strings.TrimSpace(r.Location),
	}, nil
}

// ListLot handles a farmer putting a new produce lot on the catalog.
func ListLot(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload listLotRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.FarmerID = actorID

		lot, err := svc.ListLot(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, lot)
	}
}

// BrowseLots returns the page of lots that still have quantity to sell.
func BrowseLots(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.BrowseAvailable(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"lots":        page.Lots,
			"next_cursor": page.NextCursor,
		})
	}
}

// MyLots returns the acting farmer's lots, sold out ones included.
func MyLots(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.FarmerLots(r.Context(), actorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"lots":        page.Lots,
			"next_cursor": page.NextCursor,
		})
	}
}

// GetLot returns a single catalog lot.
func GetLot(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "lotID"), "lotID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.GetLot(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lot)
	}
}

// requireActor pulls the acting party's id from the request context.
func requireActor(r *http.Request) (uuid.UUID, error) {
	actorID := middleware.ActorIDFromContext(r.Context())
	if actorID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "actor identity missing")
	}
	return actorID, nil
}
