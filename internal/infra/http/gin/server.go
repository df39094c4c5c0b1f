package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"roamly/internal/infra/config"
	"roamly/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Check(c *gin.Context)
	Alternatives(c *gin.Context)
}

type PricingHTTP interface {
	Quote(c *gin.Context)
}

type BookingHTTP interface {
	Commit(c *gin.Context)
	Get(c *gin.Context)
}

type Handlers struct {
	Availability AvailabilityHTTP
	Pricing      PricingHTTP
	Booking      BookingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/units/:id/availability", h.Availability.Check)
		api.GET("/units/:id/alternatives", h.Availability.Alternatives)
	}
	if h.Pricing != nil {
		api.GET("/units/:id/quote", h.Pricing.Quote)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Commit)
		api.GET("/bookings/:reference", h.Booking.Get)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
