// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The gateway webhook is exempt from rate limiting: throttling it turns
//     one slow moment into a redelivery storm
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/config"
	"github.com/roseate/go-payments-backend/internal/gateway"
	"github.com/roseate/go-payments-backend/internal/http/handlers"
	"github.com/roseate/go-payments-backend/internal/http/middleware"
	"github.com/roseate/go-payments-backend/internal/hotel"
	"github.com/roseate/go-payments-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII and signature scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per client IP; the webhook route is exempt)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. The webhook signature is a
	// secret-derived value and must never reach the logs.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{handlers.HeaderWebhookSignature},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses (folio documents are large and repetitive)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP. The webhook path is marked
	// exempt before the limiter runs: a 429 there turns one slow moment into
	// a gateway redelivery storm.
	r.Use(middleware.RateExempt(webhookPath(cfg.APIBasePath)))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.HeaderWebhookSignature},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.HeaderWebhookSignature},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: token source → PMS client → gateway client →
	// services → handlers.
	tokens := hotel.NewTokenSource(cfg.Hotel, nil)
	pms := hotel.NewClient(cfg.Hotel, tokens, nil)
	gw := gateway.NewClient(cfg.Gateway)

	paySvc := &services.PaymentService{
		DB:              db,
		Gateway:         gw,
		DefaultCurrency: cfg.DefaultCurrency,
	}
	hookSvc := &services.WebhookService{
		DB:     db,
		Secret: cfg.Gateway.WebhookSecret,
		Reconciler: &services.ReconcileService{
			DB:          db,
			PMS:         pms,
			Parallelism: cfg.ReconcileParallelism,
		},
	}
	h := handlers.New(paySvc, hookSvc, pms, cfg.DefaultCurrency)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Payment links
		api.POST("/payment-links", h.CreatePaymentLink)
		api.GET("/payment-links", h.ListPaymentLinks)
		api.GET("/payment-links/status/:status", h.ListPaymentLinksByStatus)
		api.GET("/payment-links/:id", h.GetPaymentLink)
		api.POST("/payment-links/:id/cancel", h.CancelPaymentLink)
		api.GET("/payment-links/:id/transactions", h.ListLinkTransactions)

		// Transaction history
		api.GET("/transactions", h.ListTransactions)
		api.GET("/transactions/stats", h.TransactionStats)

		// Gateway webhook (rate-limit exempt, see above)
		api.POST("/webhooks/razorpay", h.HandleWebhook)

		// Reservation proxies
		api.GET("/reservations/:hotelId/:reservationId", h.GetReservation)
		api.GET("/reservations/:hotelId/:reservationId/deposit-folio", h.GetDepositFolio)
		api.GET("/reservations/:hotelId/:reservationId/checkout-folio", h.GetCheckoutFolio)
		api.GET("/reservations/:hotelId/:reservationId/complete", h.GetCompleteReservation)
		api.GET("/reservations/:hotelId/:reservationId/validate", h.ValidateReservation)
		api.POST("/reservations/:hotelId/:reservationId/deposit-payment", h.PostDepositPayment)
		api.POST("/reservations/:hotelId/:reservationId/payment", h.PostFolioPayment)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// webhookPath resolves the absolute webhook route under the API base path.
func webhookPath(base string) string {
	if base == "" || base == "/" {
		return "/webhooks/razorpay"
	}
	return base + "/webhooks/razorpay"
}
