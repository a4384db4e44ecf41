package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hzpumpworks/workshop-backend/api/controllers"
	"github.com/hzpumpworks/workshop-backend/api/middleware"
	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	catalogsvc "github.com/hzpumpworks/workshop-backend/internal/catalog"
	ordersvc "github.com/hzpumpworks/workshop-backend/internal/orders"
	purchasesvc "github.com/hzpumpworks/workshop-backend/internal/purchasing"
	usersvc "github.com/hzpumpworks/workshop-backend/internal/users"
	"github.com/hzpumpworks/workshop-backend/pkg/auth/session"
	"github.com/hzpumpworks/workshop-backend/pkg/config"
	"github.com/hzpumpworks/workshop-backend/pkg/db"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
	"github.com/hzpumpworks/workshop-backend/pkg/metrics"
	redisclient "github.com/hzpumpworks/workshop-backend/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Users      usersvc.Service
	Catalog    catalogsvc.Service
	Orders     ordersvc.Service
	Purchasing purchasesvc.Service
	Logs       auditlog.Service
}

// NewRouter wires the HTTP surface. The catalog and docs clients are only
// probed by the readiness endpoint; everything stateful flows through the
// services. Gatherer and httpMetrics may be nil, which disables /metrics
// and request instrumentation respectively.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	catalogDB, docsDB *db.Client,
	cache *redisclient.Client,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	adminOnly := middleware.RequireRoles(logg, enums.UserRoleAdmin.String())
	purchasingRoles := middleware.RequireRoles(logg,
		enums.UserRoleAdmin.String(), enums.UserRolePurchaser.String())

	loginPolicy := middleware.NewLoginRateLimitPolicy(
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(catalogDB, docsDB, cache, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(loginPolicy, cache, logg)).
			Post("/login", controllers.Login(svcs.Users, logg))
		r.Post("/refresh", controllers.Refresh(svcs.Users, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.Logout(svcs.Users, logg))
			r.With(adminOnly).Post("/register", controllers.Register(svcs.Users, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.Me(svcs.Users, logg))
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.With(adminOnly).Put("/role", controllers.UpdateUserRole(svcs.Users, logg))
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", controllers.ListMaterials(svcs.Catalog, logg))
			r.Get("/search", controllers.SearchMaterials(svcs.Catalog, logg))
			r.With(adminOnly).Post("/", controllers.CreateMaterial(svcs.Catalog, logg))
			r.With(adminOnly).Patch("/counts", controllers.UpdateMaterialCounts(svcs.Catalog, logg))
		})

		r.Route("/material-categories", func(r chi.Router) {
			r.Get("/", controllers.ListMaterialCategories(svcs.Catalog, logg))
			r.With(adminOnly).Post("/", controllers.CreateMaterialCategory(svcs.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
			r.Get("/{id}/materials", controllers.ListProductMaterials(svcs.Catalog, logg))
			r.With(adminOnly).Post("/", controllers.CreateProduct(svcs.Catalog, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeleteProduct(svcs.Catalog, logg))
			r.With(adminOnly).Post("/{id}/materials", controllers.LinkProductMaterials(svcs.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{id}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/required-materials", controllers.ResolveRequiredMaterials(svcs.Orders, logg))
			r.With(adminOnly).Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.With(adminOnly).Put("/{id}/status", controllers.ChangeOrderStatus(svcs.Orders, logg))
			r.With(adminOnly).Put("/{id}", controllers.UpdateOrder(svcs.Orders, logg))
			r.With(adminOnly).Put("/use-required-materials", controllers.UseRequiredMaterials(svcs.Orders, logg))
			r.With(adminOnly).Post("/{id}/restore-inventory", controllers.RestoreOrderInventory(svcs.Orders, logg))
		})

		r.Route("/purchasing", func(r chi.Router) {
			r.Use(purchasingRoles)
			r.Get("/", controllers.ListPurchasing(svcs.Purchasing, logg))
			r.Get("/{id}", controllers.GetPurchasing(svcs.Purchasing, logg))
			r.Post("/", controllers.CreatePurchasing(svcs.Purchasing, logg))
			r.Post("/{id}/start", controllers.StartPurchasing(svcs.Purchasing, logg))
			r.Post("/{id}/finish", controllers.FinishPurchasing(svcs.Purchasing, logg))
		})

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", controllers.ListLogs(svcs.Logs, logg))
			r.Post("/", controllers.CreateLog(svcs.Logs, logg))
		})
	})

	return r
}
