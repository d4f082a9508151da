package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookhavenph/bookhaven-backend/api/controllers"
	webhookcontrollers "github.com/bookhavenph/bookhaven-backend/api/controllers/webhooks"
	"github.com/bookhavenph/bookhaven-backend/api/middleware"
	"github.com/bookhavenph/bookhaven-backend/internal/books"
	"github.com/bookhavenph/bookhaven-backend/internal/cart"
	checkoutsvc "github.com/bookhavenph/bookhaven-backend/internal/checkout"
	"github.com/bookhavenph/bookhaven-backend/internal/orders"
	paymongowebhook "github.com/bookhavenph/bookhaven-backend/internal/webhooks/paymongo"
	"github.com/bookhavenph/bookhaven-backend/pkg/config"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config            *config.Config
	Logger            *logger.Logger
	DBPinger          controllers.Pinger
	RedisPinger       controllers.Pinger
	Registry          *prometheus.Registry
	BooksService      books.Service
	BooksAdminService books.AdminService
	CartService       cart.Service
	CheckoutService   checkoutsvc.Service
	OrdersService     orders.Service
	WebhookService    *paymongowebhook.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paymongo", webhookcontrollers.PayMongoWebhook(deps.WebhookService, cfg.PayMongo, cfg.Checkout, logg))
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", controllers.BookList(deps.BooksService, logg))
		r.Get("/{slug}", controllers.BookDetail(deps.BooksService, logg))
	})
	r.Get("/api/v1/categories", controllers.CategoryList(deps.BooksService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(deps.CartService, logg))
			r.Post("/items", controllers.CartAdd(deps.CartService, logg))
			r.Patch("/items/{bookId}", controllers.CartUpdateItem(deps.CartService, logg))
			r.Delete("/items/{bookId}", controllers.CartRemoveItem(deps.CartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.OrdersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/books", func(r chi.Router) {
			r.Post("/", controllers.AdminBookCreate(deps.BooksAdminService, logg))
			r.Patch("/{bookId}", controllers.AdminBookUpdate(deps.BooksAdminService, logg))
			r.Delete("/{bookId}", controllers.AdminBookDelete(deps.BooksAdminService, logg))
		})

		r.Post("/categories", controllers.AdminCategoryCreate(deps.BooksAdminService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.OrdersService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderStatus(deps.OrdersService, logg))
		})
	})

	return r
}
