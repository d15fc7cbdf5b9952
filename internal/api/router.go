package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/vinodhini/portal/docs"
	"github.com/vinodhini/portal/internal/api/handler"
	"github.com/vinodhini/portal/internal/api/middleware"
	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/infrastructure/http/handlers"
)

const (
	defaultLoginRate = 1
	loginBurst       = 5
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Workspaces middleware.WorkspaceProvider
	Cookie     middleware.CookieConfig
	// LoginRateLimit is POST /login attempts per second per client IP.
	LoginRateLimit float64
	// Probes are checked by /health/ready, keyed by dependency name.
	Probes map[string]handlers.Probe
	// Metrics receives the HTTP request collectors; the default registry
	// when nil.
	Metrics prometheus.Registerer
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: d.Metrics,
	}))

	// --- Operations (no session) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Probes).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session-bound surfaces ---
	auth := handler.NewAuthHandler()
	app := e.Group("", middleware.Session(d.Workspaces, d.Cookie))
	app.GET("/", auth.Root)
	app.POST("/logout", auth.Logout)

	pages := app.Group("", middleware.Gate())
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	pages.GET("/login", auth.LoginPage)
	pages.POST("/login", auth.Login, loginLimiter(d.LoginRateLimit))
	pages.GET("/forgot-password", auth.ForgotPasswordPage)
	pages.POST("/forgot-password", auth.ForgotPassword)

	nav := handler.NewNavigationHandler()
	pages.GET("/navigation", nav.Navigation)
	pages.GET("/dashboard", nav.Dashboard)

	projects := handler.NewProjectHandler()
	pages.GET("/projects", projects.List)
	pages.POST("/projects", projects.Create, adminOnly)
	pages.GET("/projects/reconciliations", projects.Reconciliations, adminOnly)
	pages.GET("/projects/:id", projects.Get)
	pages.PUT("/projects/:id", projects.Update, adminOnly)
	pages.DELETE("/projects/:id", projects.Delete, adminOnly)
	pages.PATCH("/projects/:id/progress", projects.SetProgress)
	pages.PATCH("/projects/:id/status", projects.SetStatus)
	pages.POST("/projects/:id/reconcile", projects.Reconcile)
	pages.POST("/projects/:id/assign", projects.Assign, adminOnly)
	pages.GET("/projects/:id/messages", projects.Messages)

	requests := handler.NewServiceRequestHandler()
	pages.GET("/service-requests", requests.List)
	pages.GET("/service-requests/:id", requests.Get)
	pages.POST("/service-requests/:id/approve", requests.Approve, adminOnly)
	pages.POST("/service-requests/:id/reject", requests.Reject, adminOnly)
	pages.DELETE("/service-requests/:id", requests.Delete, adminOnly)
	pages.GET("/request-service", requests.RequestServicePage)
	pages.POST("/request-service", requests.RequestService)

	registerUsers(pages, "/users", handler.NewUserHandler(ports.CollectionUsers, ""))
	registerUsers(pages, "/employees", handler.NewUserHandler(ports.CollectionEmployees, domain.RoleEmployee))
	registerUsers(pages, "/clients", handler.NewUserHandler(ports.CollectionClients, domain.RoleClient))

	services := handler.NewServiceTypeHandler()
	pages.GET("/services", services.List)
	pages.POST("/services", services.Create)
	pages.GET("/services/:id", services.Get)
	pages.PUT("/services/:id", services.Update)
	pages.DELETE("/services/:id", services.Delete)

	messages := handler.NewMessageHandler()
	pages.GET("/messages", messages.List)
	pages.POST("/messages", messages.Create)
	pages.GET("/messages/:id", messages.Get)
	pages.DELETE("/messages/:id", messages.Delete)

	profile := handler.NewProfileHandler()
	pages.GET("/profile", profile.Get)
	pages.PUT("/profile", profile.Update)

	notifications := handler.NewNotificationHandler()
	pages.GET("/notifications", notifications.List)
	pages.POST("/notifications/clear", notifications.Clear)
	pages.POST("/notifications/refresh", notifications.Refresh)

	return e
}

func registerUsers(g *echo.Group, prefix string, h *handler.UserHandler) {
	g.GET(prefix, h.List)
	g.POST(prefix, h.Create)
	g.GET(prefix+"/:id", h.Get)
	g.PUT(prefix+"/:id", h.Update)
	g.PATCH(prefix+"/:id", h.Patch)
	g.DELETE(prefix+"/:id", h.Delete)
}

func loginLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = defaultLoginRate
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     loginBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many login attempts. Please wait and try again.", Retryable: true})
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
