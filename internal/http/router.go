package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Prom and Metrics are
// optional.
type Deps struct {
	Log      *slog.Logger
	Prom     *observability.Prom
	Metrics  http.Handler
	Tokens   middlewares.TokenVerifier
	Users    middlewares.UserLookup
	Accounts handlers.AccountService
	Catalog  handlers.CourseCatalog
	Enroller handlers.Enroller
	Profiles handlers.ProfileService
	Reviews  handlers.ReviewService
	Progress handlers.ProgressService
	Admin    handlers.ReconcileScheduler
	Jobs     handlers.JobReader
	Ready    map[string]handlers.Pinger
}

func NewRouter(cfg config.Config, d Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(cfg.Env == "prod"))
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	authMW := middlewares.NewAuthMiddleware(d.Tokens, d.Users)
	limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	health := handlers.NewHealthHandler(d.Ready)
	authH := handlers.NewAuthHandler(d.Accounts, d.Log)
	coursesH := handlers.NewCoursesHandler(d.Catalog, d.Log)
	enrollH := handlers.NewEnrollmentsHandler(d.Enroller, d.Log)
	profileH := handlers.NewProfileHandler(d.Profiles, d.Log)
	reviewsH := handlers.NewReviewsHandler(d.Reviews, d.Log)
	progressH := handlers.NewProgressHandler(d.Progress, d.Log)
	adminH := handlers.NewAdminHandler(d.Admin, d.Jobs, d.Log)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	} else {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")

	api.GET("/health", health.Healthz)
	api.GET("/ready", health.Readyz)

	// credentials endpoints are limited per IP
	public := api.Group("", limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	public.POST("/signup", authH.SignUp)
	public.POST("/login", authH.Login)

	api.GET("/courses", coursesH.List)
	api.GET("/courses/:id", coursesH.Get)
	api.GET("/courses/:id/reviews", reviewsH.List)

	authed := api.Group("", authMW.RequireAuth(), limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	authed.POST("/courses/:id/enroll", enrollH.Enroll)
	authed.POST("/courses/:id/reviews", reviewsH.Submit)
	authed.GET("/courses/:id/progress", progressH.Get)
	authed.PUT("/courses/:id/progress", progressH.MarkLesson)
	authed.GET("/profile", profileH.Get)
	authed.PUT("/profile", profileH.Update)
	authed.GET("/enrolled-courses", profileH.EnrolledCourses)

	authed.POST("/courses", authMW.RequireRole(user.RoleInstructor, user.RoleAdmin), coursesH.Create)

	admin := authed.Group("/admin", authMW.RequireRole(user.RoleAdmin))
	admin.POST("/courses/:id/reconcile", adminH.ReconcileCourse)
	admin.GET("/jobs/:id", adminH.GetJob)

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "API endpoint not found")
	})

	return r
}
