package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hysabee/hysabee-backend/api/controllers"
	webhookcontrollers "github.com/hysabee/hysabee-backend/api/controllers/webhooks"
	"github.com/hysabee/hysabee-backend/api/middleware"
	"github.com/hysabee/hysabee-backend/internal/auth"
	"github.com/hysabee/hysabee-backend/internal/branches"
	"github.com/hysabee/hysabee-backend/internal/customers"
	"github.com/hysabee/hysabee-backend/internal/dashboard"
	"github.com/hysabee/hysabee-backend/internal/stores"
	subscriptionsvc "github.com/hysabee/hysabee-backend/internal/subscriptions"
	"github.com/hysabee/hysabee-backend/internal/transactions"
	"github.com/hysabee/hysabee-backend/internal/users"
	"github.com/hysabee/hysabee-backend/internal/webhooks"
	"github.com/hysabee/hysabee-backend/pkg/auth/session"
	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/db"
	"github.com/hysabee/hysabee-backend/pkg/dodo"
	"github.com/hysabee/hysabee-backend/pkg/logger"
	"github.com/hysabee/hysabee-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker

	AuthService         auth.Service
	RegisterService     auth.RegisterService
	SwitchBranchService auth.SwitchBranchService
	StoreService        stores.Service
	BranchService       branches.Service
	CustomerService     customers.Service
	TransactionService  transactions.Service
	DashboardService    dashboard.Service
	SubscriptionService subscriptionsvc.Service
	UserRepo            *users.Repository

	Reconciler      *webhooks.Reconciler
	WebhookVerifier *dodo.WebhookVerifier
	WebhookGuard    *webhooks.DeliveryGuard
	MetricsHandler  http.Handler
}

// NewRouter assembles the full route tree.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/dodo-payments", webhookcontrollers.DodoWebhook(deps.Reconciler, deps.WebhookVerifier, deps.WebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).Post("/change-password", controllers.AuthChangePassword(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.StoreContext(logg))

			r.Route("/stores", func(r chi.Router) {
				r.Get("/me", controllers.StoreProfile(deps.StoreService, logg))
				r.Put("/me", controllers.StoreUpdate(deps.StoreService, logg))
			})

			r.Route("/branches", func(r chi.Router) {
				r.Get("/", controllers.BranchList(deps.BranchService, logg))
				r.Post("/", controllers.BranchCreate(deps.BranchService, logg))
				r.Get("/{branchId}", controllers.BranchGet(deps.BranchService, logg))
				r.Put("/{branchId}", controllers.BranchUpdate(deps.BranchService, logg))
				r.Post("/{branchId}/set-main", controllers.BranchSetMain(deps.BranchService, logg))
				r.Post("/{branchId}/activate", controllers.BranchActivate(deps.SwitchBranchService, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.CustomerList(deps.CustomerService, logg))
				r.Post("/", controllers.CustomerCreate(deps.CustomerService, logg))
				r.Get("/{customerId}", controllers.CustomerGet(deps.CustomerService, logg))
				r.Put("/{customerId}", controllers.CustomerUpdate(deps.CustomerService, logg))
				r.Route("/{customerId}/transactions", func(r chi.Router) {
					r.Get("/", controllers.TransactionList(deps.TransactionService, logg))
					r.Post("/", controllers.TransactionCreate(deps.TransactionService, logg))
				})
			})

			r.Get("/dashboard/stats", controllers.DashboardStats(deps.DashboardService, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", controllers.SubscriptionCurrent(deps.SubscriptionService, logg))
			r.Get("/history", controllers.SubscriptionHistory(deps.SubscriptionService, logg))
			r.Get("/plans", controllers.SubscriptionPlans(deps.SubscriptionService, logg))
			r.Post("/checkout", controllers.SubscriptionCheckout(deps.SubscriptionService, deps.UserRepo, logg))
			r.Post("/change-plan", controllers.SubscriptionChangePlan(deps.SubscriptionService, logg))
			r.Get("/portal", controllers.SubscriptionPortal(deps.SubscriptionService, logg))
		})
	})

	return r
}
