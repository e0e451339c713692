package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MarketplaceMetrics records counters for the order and inventory pipelines.
type MarketplaceMetrics struct {
	ordersPlaced         *prometheus.CounterVec
	ordersCancelled      *prometheus.CounterVec
	paymentsCompleted    prometheus.Counter
	reservationShortfall *prometheus.CounterVec
	inventoryAcquired    prometheus.Counter
	inventoryCancelled   prometheus.Counter
}

// NewMarketplaceMetrics registers the marketplace metrics on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders successfully placed, by seller kind.",
	}, []string{"seller_kind"})
	ordersCancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled before processing, by seller kind.",
	}, []string{"seller_kind"})
	paymentsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Payments released after confirmed delivery.",
	})
	reservationShortfall := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_shortfall_total",
		Help: "Quantity reservations rejected for insufficient stock, by source kind.",
	}, []string{"source_kind"})
	inventoryAcquired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_acquired_total",
		Help: "Inventory records created from catalog purchases.",
	})
	inventoryCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_cancelled_total",
		Help: "Undelivered inventory records cancelled and restored to catalog.",
	})
	reg.MustRegister(
		ordersPlaced,
		ordersCancelled,
		paymentsCompleted,
		reservationShortfall,
		inventoryAcquired,
		inventoryCancelled,
	)
	return &MarketplaceMetrics{
		ordersPlaced:         ordersPlaced,
		ordersCancelled:      ordersCancelled,
		paymentsCompleted:    paymentsCompleted,
		reservationShortfall: reservationShortfall,
		inventoryAcquired:    inventoryAcquired,
		inventoryCancelled:   inventoryCancelled,
	}
}

// IncOrderPlaced increments the placement counter for the seller kind.
func (m *MarketplaceMetrics) IncOrderPlaced(sellerKind string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(sellerKind)).Inc()
}

// IncOrderCancelled increments the cancellation counter for the seller kind.
func (m *MarketplaceMetrics) IncOrderCancelled(sellerKind string) {
	if m == nil || m.ordersCancelled == nil {
		return
	}
	m.ordersCancelled.WithLabelValues(normalizeLabel(sellerKind)).Inc()
}

// IncPaymentCompleted increments the payment release counter.
func (m *MarketplaceMetrics) IncPaymentCompleted() {
	if m == nil || m.paymentsCompleted == nil {
		return
	}
	m.paymentsCompleted.Inc()
}

// IncReservationShortfall increments the shortfall counter for the source kind.
func (m *MarketplaceMetrics) IncReservationShortfall(sourceKind string) {
	if m == nil || m.reservationShortfall == nil {
		return
	}
	m.reservationShortfall.WithLabelValues(normalizeLabel(sourceKind)).Inc()
}

// IncInventoryAcquired increments the acquisition counter.
func (m *MarketplaceMetrics) IncInventoryAcquired() {
	if m == nil || m.inventoryAcquired == nil {
		return
	}
	m.inventoryAcquired.Inc()
}

// IncInventoryCancelled increments the inventory cancellation counter.
func (m *MarketplaceMetrics) IncInventoryCancelled() {
	if m == nil || m.inventoryCancelled == nil {
		return
	}
	m.inventoryCancelled.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
