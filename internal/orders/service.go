package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/internal/catalog"
	"github.com/agrimandi/agrimandi-backend/internal/inventory"
	"github.com/agrimandi/agrimandi-backend/internal/reservation"
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

// Service exposes the order pipeline operations.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	AdvanceStatus(ctx context.Context, orderID, actorID uuid.UUID, target enums.FulfillmentStatus) (*models.Order, error)
	Cancel(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error)
	CompletePayment(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error)
	BuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*Page, error)
	SellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*Page, error)
}

type service struct {
	repo      Repository
	catalog   catalog.Repository
	inventory inventory.Repository
	tx        txRunner
	logg      *logger.Logger
	metrics   *metrics.MarketplaceMetrics
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, inventoryRepo inventory.Repository, tx txRunner, logg *logger.Logger, m *metrics.MarketplaceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		catalog:   catalogRepo,
		inventory: inventoryRepo,
		tx:        tx,
		logg:      logg,
		metrics:   m,
	}, nil
}

// Place reserves every requested quantity, snapshots the line items and
// creates the order in one transaction. A shortfall on any item aborts the
// whole order and leaves every pool untouched.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceInput(input); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		seller, items, total, err := s.snapshotItems(ctx, tx, input)
		if err != nil {
			return err
		}

		requests := make([]reservation.Request, 0, len(input.Items))
		for _, item := range input.Items {
			requests = append(requests, reservation.Request{
				SourceKind: item.SourceKind,
				SourceID:   item.SourceID,
				Qty:        item.Qty,
			})
		}
		if err := reservation.Reserve(ctx, tx, requests); err != nil {
			return err
		}

		order = &models.Order{
			BuyerID:           input.BuyerID,
			SellerID:          seller.ID,
			SellerKind:        seller.Kind,
			FulfillmentStatus: enums.FulfillmentStatusPending,
			PaymentStatus:     enums.PaymentStatusPending,
			TotalAmount:       total,
			ShippingAddress:   input.ShippingAddress,
			ContactNumber:     input.ContactNumber,
			Items:             items,
		}
		order, err = s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientQuantity {
			s.metrics.IncReservationShortfall(shortfallKind(typed))
		}
		return nil, err
	}

	s.metrics.IncOrderPlaced(order.SellerKind.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":  order.ID,
		"buyer_id":  order.BuyerID,
		"seller_id": order.SellerID,
		"items":     len(order.Items),
		"total":     order.TotalAmount,
	}), "order placed")
	return order, nil
}

// snapshotItems resolves every source inside the transaction, enforces the
// single-seller rule and freezes name, unit and price into line items.
func (s *service) snapshotItems(ctx context.Context, tx *gorm.DB, input PlaceOrderInput) (*sellerRef, []models.OrderLineItem, decimal.Decimal, error) {
	var seller *sellerRef
	items := make([]models.OrderLineItem, 0, len(input.Items))
	total := decimal.Zero

	catalogRepo := s.catalog.WithTx(tx)
	inventoryRepo := s.inventory.WithTx(tx)

	for _, item := range input.Items {
		var (
			ref   sellerRef
			line  models.OrderLineItem
			price decimal.Decimal
		)

		switch item.SourceKind {
		case enums.SourceKindCatalogLot:
			lot, err := catalogRepo.FindByID(ctx, item.SourceID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "catalog lot not found").
						WithDetails(map[string]any{"source_id": item.SourceID})
				}
				return nil, nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog lot")
			}
			ref = sellerRef{ID: lot.FarmerID, Kind: enums.SellerKindFarmer, Name: lot.FarmerName}
			price = lot.UnitPrice
			line = models.OrderLineItem{
				SourceKind: item.SourceKind,
				SourceID:   lot.ID,
				Name:       lot.Name,
				Unit:       lot.Unit,
				UnitPrice:  price,
				Qty:        item.Qty,
				SellerName: lot.FarmerName,
			}
		case enums.SourceKindInventoryRecord:
			record, err := inventoryRepo.FindByID(ctx, item.SourceID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "inventory listing not found").
						WithDetails(map[string]any{"source_id": item.SourceID})
				}
				return nil, nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory listing")
			}
			ref = sellerRef{ID: record.StoreID, Kind: enums.SellerKindStore, Name: record.StoreName}
			price = record.ListedPrice
			line = models.OrderLineItem{
				SourceKind: item.SourceKind,
				SourceID:   record.ID,
				Name:       record.Name,
				Unit:       record.Unit,
				UnitPrice:  price,
				Qty:        item.Qty,
				SellerName: record.StoreName,
			}
		}

		if seller == nil {
			seller = &ref
		} else if seller.ID != ref.ID {
			return nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "order items must belong to one seller")
		}

		items = append(items, line)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}

	if seller.ID == input.BuyerID {
		return nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeForbidden, "cannot order own produce")
	}
	return seller, items, total, nil
}

// AdvanceStatus moves the fulfillment status one step forward. Only the
// seller can advance, and only to the immediate successor of the current
// status. Reaching delivered stamps the delivery time.
func (s *service) AdvanceStatus(ctx context.Context, orderID, actorID uuid.UUID, target enums.FulfillmentStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status")
	}
	if target == enums.FulfillmentStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, orderID, actorID)
		if err != nil {
			return err
		}
		if loaded.SellerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can advance an order")
		}

		next, ok := loaded.FulfillmentStatus.Next()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "order is in a terminal state").
				WithDetails(map[string]any{"from": loaded.FulfillmentStatus})
		}
		if target != next {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "fulfillment advances one step at a time").
				WithDetails(map[string]any{
					"from":     loaded.FulfillmentStatus,
					"to":       target,
					"expected": next,
				})
		}

		updates := map[string]any{"fulfillment_status": target}
		if target == enums.FulfillmentStatusDelivered {
			now := time.Now().UTC()
			updates["delivered_at"] = now
			loaded.DeliveredAt = &now
		}
		if err := repo.Update(ctx, loaded.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment status")
		}
		loaded.FulfillmentStatus = target
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel aborts an order that has not started processing. Every line item
// quantity goes back to its source pool in the same transaction; pools that
// vanished since placement are logged and skipped.
func (s *service) Cancel(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrderDetail(ctx, repo, orderID, actorID)
		if err != nil {
			return err
		}
		if !loaded.FulfillmentStatus.CanCancel() {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "order can no longer be cancelled").
				WithDetails(map[string]any{"fulfillment_status": loaded.FulfillmentStatus})
		}

		requests := make([]reservation.Request, 0, len(loaded.Items))
		for _, item := range loaded.Items {
			requests = append(requests, reservation.Request{
				SourceKind: item.SourceKind,
				SourceID:   item.SourceID,
				Qty:        item.Qty,
			})
		}
		skipped, err := reservation.Release(ctx, tx, requests)
		if err != nil {
			return err
		}
		for _, miss := range skipped {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_id":    loaded.ID,
				"source_kind": miss.SourceKind,
				"source_id":   miss.SourceID,
				"quantity":    miss.Qty,
			}), "source pool gone, cancelling without restore")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"fulfillment_status": enums.FulfillmentStatusCancelled,
			"cancelled_at":       now,
		}
		if err := repo.Update(ctx, loaded.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		loaded.FulfillmentStatus = enums.FulfillmentStatusCancelled
		loaded.CancelledAt = &now
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderCancelled(order.SellerKind.String())
	return order, nil
}

// CompletePayment releases the buyer's payment for a delivered order.
func (s *service) CompletePayment(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, orderID, actorID)
		if err != nil {
			return err
		}
		if loaded.BuyerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can complete payment")
		}
		if loaded.PaymentStatus == enums.PaymentStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeAlreadyPaid, "order is already paid")
		}
		if loaded.FulfillmentStatus != enums.FulfillmentStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "payment is released after delivery").
				WithDetails(map[string]any{"fulfillment_status": loaded.FulfillmentStatus})
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"payment_status": enums.PaymentStatusCompleted,
			"paid_at":        now,
		}
		if err := repo.Update(ctx, loaded.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete payment")
		}
		loaded.PaymentStatus = enums.PaymentStatusCompleted
		loaded.PaidAt = &now
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPaymentCompleted()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"total":    order.TotalAmount,
	}), "payment completed")
	return order, nil
}

// GetOrder loads an order with its items for one of the two parties.
func (s *service) GetOrder(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error) {
	return s.loadOrderDetail(ctx, s.repo, orderID, actorID)
}

func (s *service) BuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*Page, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	orders, err := s.repo.ListByBuyer(ctx, buyerID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return buildPage(orders, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) SellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*Page, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	orders, err := s.repo.ListBySeller(ctx, sellerID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return buildPage(orders, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID, actorID uuid.UUID) (*models.Order, error) {
	if err := checkOrderActor(orderID, actorID); err != nil {
		return nil, err
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return requireParty(order, actorID)
}

func (s *service) loadOrderDetail(ctx context.Context, repo Repository, orderID, actorID uuid.UUID) (*models.Order, error) {
	if err := checkOrderActor(orderID, actorID); err != nil {
		return nil, err
	}
	order, err := repo.FindDetail(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return requireParty(order, actorID)
}

func checkOrderActor(orderID, actorID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	return nil
}

func requireParty(order *models.Order, actorID uuid.UUID) (*models.Order, error) {
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not involve this actor")
	}
	return order, nil
}

func validatePlaceInput(input PlaceOrderInput) error {
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if input.ShippingAddress == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if input.ContactNumber == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact number required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if !item.SourceKind.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid item source kind")
		}
		if item.SourceID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item source id required")
		}
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	return nil
}

func shortfallKind(err *pkgerrors.Error) string {
	details, ok := err.Details().(map[string]any)
	if !ok {
		return ""
	}
	if kind, ok := details["source_kind"].(enums.SourceKind); ok {
		return kind.String()
	}
	return ""
}

func buildPage(orders []models.Order, limit int) *Page {
	page := &Page{Orders: orders}
	if len(orders) > limit {
		page.Orders = orders[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page
}
