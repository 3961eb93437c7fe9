package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"shiftwise/cmd/fx/account_fx"
	"shiftwise/cmd/fx/billing_fx"
	"shiftwise/cmd/fx/config_fx"
	"shiftwise/cmd/fx/controllers_fx"
	"shiftwise/cmd/fx/db_fx"
	"shiftwise/cmd/fx/geocode_fx"
	"shiftwise/cmd/fx/mail_fx"
	"shiftwise/cmd/fx/memcache_fx"
	"shiftwise/cmd/fx/shift_fx"
	"shiftwise/cmd/fx/subscription_fx"
	"shiftwise/internal/access"
	"shiftwise/internal/api/controllers"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/internal/services"
	"shiftwise/pkg/middleware"
	"shiftwise/pkg/utils"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		billing_fx.Module,
		geocode_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		subscription_fx.Module,
		shift_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("starting HTTP server", slog.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type routerDeps struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Tokens    *utils.TokenIssuer
	Identity  services.IdentityService

	Accounts      *controllers.AccountController
	Agencies      *controllers.AgencyController
	Subscriptions *controllers.SubscriptionController
	Webhooks      *controllers.WebhookController
	Shifts        *controllers.ShiftController
	Performance   *controllers.PerformanceController
	Admin         *controllers.AdminController
	Health        *controllers.HealthController
}

func ProvideRouter(d routerDeps) *gin.Engine {
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(d.Config.RateLimit.AuthPerMinute)
	d.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			limiter.Stop()
			return nil
		},
	})

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   d.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(sessions.Sessions("shiftwise_session", store))
	r.Use(middleware.IdentityMiddleware(d.Tokens, d.Identity, d.Logger))

	RegisterRoutes(r, d, limiter)
	return r
}

func RegisterRoutes(r *gin.Engine, d routerDeps, limiter *middleware.RateLimiter) {
	gate := func(req access.Requirement) gin.HandlerFunc {
		return middleware.AccessGate(req, d.Metrics)
	}
	loggedIn := gate(access.Authenticated())
	owners := gate(access.Member(access.GroupAgencyOwners))
	managers := gate(access.ManagerOrOwner())
	staff := gate(access.Member(access.GroupAgencyStaff))
	superuser := gate(access.Superuser())

	r.GET("/healthz", d.Health.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	r.GET(access.RouteHome, d.Accounts.Home)

	accounts := r.Group("/accounts")
	accounts.POST("/register", limiter.Middleware(), d.Accounts.Register)
	accounts.GET("/login", d.Accounts.LoginPage)
	accounts.POST("/login", limiter.Middleware(), d.Accounts.Login)
	accounts.POST("/logout", d.Accounts.Logout)
	accounts.POST("/forgot-password", limiter.Middleware(), d.Accounts.ForgotPassword)
	accounts.POST("/reset-password", limiter.Middleware(), d.Accounts.ResetPassword)
	accounts.GET("/me", middleware.RequireAuth(), d.Accounts.Me)
	accounts.GET("/profile", loggedIn, d.Accounts.ProfilePage)
	accounts.POST("/profile", loggedIn, d.Accounts.UpdateProfile)
	accounts.GET("/agency/create", loggedIn, d.Agencies.CreatePage)
	accounts.POST("/agency/create", loggedIn, d.Agencies.Create)
	accounts.POST("/agency/members", middleware.RequireAuth(), d.Agencies.AddMember)

	subs := r.Group("/subscriptions")
	subs.POST("/webhook", d.Webhooks.Handle)
	subs.GET("/", loggedIn, d.Subscriptions.Home)
	subs.POST("/subscribe/:plan_id", owners, d.Subscriptions.Subscribe)
	subs.GET("/upgrade", owners, gate(access.ActiveSubscription()), d.Subscriptions.UpgradePage)
	subs.POST("/upgrade", owners, gate(access.ActiveSubscription()), d.Subscriptions.Upgrade)
	subs.GET("/downgrade", owners, gate(access.ActiveSubscription()), d.Subscriptions.DowngradePage)
	subs.POST("/downgrade", owners, gate(access.ActiveSubscription()), d.Subscriptions.Downgrade)
	subs.POST("/cancel-subscription", owners, d.Subscriptions.CancelSubscription)
	subs.GET("/manage", owners, d.Subscriptions.Manage)
	subs.POST("/payment-method", owners, d.Subscriptions.PaymentMethod)
	subs.GET("/success", loggedIn, d.Subscriptions.Success)
	subs.GET("/cancel", loggedIn, d.Subscriptions.Cancel)

	shifts := r.Group("/shifts", loggedIn, gate(access.ActiveSubscription(access.FeatureShiftManagement)))
	shifts.GET("", d.Shifts.List)
	shifts.GET("/:id", d.Shifts.Get)
	shifts.POST("", managers, d.Shifts.Create)
	shifts.PUT("/:id", managers, d.Shifts.Update)
	shifts.DELETE("/:id", managers, d.Shifts.Delete)
	shifts.POST("/:id/book", staff, d.Shifts.Book)
	shifts.POST("/:id/unbook", staff, d.Shifts.Unbook)
	shifts.POST("/:id/assign", managers, d.Shifts.Assign)
	shifts.POST("/:id/unassign", managers, d.Shifts.Unassign)
	shifts.POST("/:id/complete", staff, d.Shifts.Complete)
	shifts.POST("/:id/complete/:worker_id", managers, d.Shifts.CompleteFor)

	performance := r.Group("/performance", loggedIn, managers, gate(access.ActiveSubscription(access.FeatureStaffPerformance)))
	performance.GET("", d.Performance.List)
	performance.GET("/:id", d.Performance.Get)
	performance.POST("", d.Performance.Create)
	performance.PUT("/:id", d.Performance.Update)
	performance.DELETE("/:id", d.Performance.Delete)

	admin := r.Group("/admin", middleware.RequireAuth())
	admin.GET("/shifts", managers, d.Admin.Shifts)
	admin.GET("/assignments", managers, gate(access.Features(access.FeatureAdvancedReporting)), d.Admin.Assignments)
	admin.GET("/subscriptions", owners, d.Admin.Subscriptions)
	admin.GET("/agencies", managers, d.Admin.Agencies)
	admin.GET("/plans", superuser, d.Admin.Plans)
	admin.POST("/accounts/:id/groups", superuser, d.Accounts.SetGroups)
}
