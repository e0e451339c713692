package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrimandi/agrimandi-backend/api/controllers"
	"github.com/agrimandi/agrimandi-backend/api/middleware"
	"github.com/agrimandi/agrimandi-backend/internal/catalog"
	"github.com/agrimandi/agrimandi-backend/internal/inventory"
	"github.com/agrimandi/agrimandi-backend/internal/orders"
	"github.com/agrimandi/agrimandi-backend/pkg/config"
	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	catalogService catalog.Service,
	inventoryService inventory.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.ActorContext(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		var store redis.IdempotencyStore
		if redisClient != nil {
			store = redisClient
		}
		r.Use(middleware.Idempotency(store, cfg.Idempotency, logg))

		r.Route("/catalog/lots", func(r chi.Router) {
			r.Post("/", controllers.ListLot(catalogService, logg))
			r.Get("/", controllers.BrowseLots(catalogService, logg))
			r.Get("/mine", controllers.MyLots(catalogService, logg))
			r.Get("/{lotID}", controllers.GetLot(catalogService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", controllers.AcquireInventory(inventoryService, logg))
			r.Get("/", controllers.StoreInventory(inventoryService, logg))
			r.Route("/{recordID}", func(r chi.Router) {
				r.Patch("/", controllers.AdjustInventory(inventoryService, logg))
				r.Post("/delivered", controllers.MarkDelivered(inventoryService, logg))
				r.Post("/cancel", controllers.CancelInventory(inventoryService, logg))
				r.Post("/listing", controllers.ListForSale(inventoryService, logg))
				r.Delete("/listing", controllers.Unlist(inventoryService, logg))
			})
		})

		r.Get("/listings", controllers.BrowseListings(inventoryService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(orderService, logg))
			r.Get("/", controllers.MyOrders(orderService, logg))
			r.Get("/selling", controllers.MySales(orderService, logg))
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", controllers.GetOrder(orderService, logg))
				r.Post("/status", controllers.AdvanceOrderStatus(orderService, logg))
				r.Post("/cancel", controllers.CancelOrder(orderService, logg))
				r.Post("/payment", controllers.CompleteOrderPayment(orderService, logg))
			})
		})
	})

	return r
}
