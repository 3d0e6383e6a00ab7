// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, the database path, rate limiting,
// observability, and the credentials for the payment gateway and hotel PMS.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-payments-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// GatewayConfig holds the payment-gateway (Razorpay) credentials and webhook
// signing secret. KeyID/KeySecret authenticate API calls; WebhookSecret is
// the shared secret used to verify inbound webhook signatures.
type GatewayConfig struct {
	KeyID         string // RAZORPAY_KEY_ID
	KeySecret     string // RAZORPAY_KEY_SECRET
	WebhookSecret string // RAZORPAY_WEBHOOK_SECRET
	CallbackURL   string // PAYMENT_CALLBACK_URL
}

// HotelConfig holds the hotel PMS (OPERA Cloud) connection settings. All
// calls are scoped by AppKey and EnterpriseID; ClientID/ClientSecret drive
// the client-credential token exchange.
type HotelConfig struct {
	BaseURL      string // HOTEL_API_BASE_URL
	ClientID     string // HOTEL_CLIENT_ID
	ClientSecret string // HOTEL_CLIENT_SECRET
	AppKey       string // HOTEL_APP_KEY
	EnterpriseID string // HOTEL_ENTERPRISE_ID

	// TokenSafetyMargin is subtracted from the declared token lifetime so a
	// token is never returned right at its expiry boundary.
	TokenSafetyMargin time.Duration // HOTEL_TOKEN_SAFETY_MARGIN

	// CashierID identifies the posting cashier on deposit/folio payments.
	CashierID string // HOTEL_CASHIER_ID
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath          string // SQLite path
	DefaultCurrency string // ISO 4217 code used when a request omits one

	// Reconciliation fan-out bound; 1 preserves strict posting order.
	ReconcileParallelism int

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Integrations
	Gateway GatewayConfig
	Hotel   HotelConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:               getenv("DB_PATH", "payments.db"),
		DefaultCurrency:      strings.ToUpper(getenv("DEFAULT_CURRENCY", "INR")),
		ReconcileParallelism: getint("RECONCILE_PARALLELISM", 1),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Integrations
		Gateway: GatewayConfig{
			KeyID:         getenv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getenv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getenv("RAZORPAY_WEBHOOK_SECRET", ""),
			CallbackURL:   getenv("PAYMENT_CALLBACK_URL", ""),
		},
		Hotel: HotelConfig{
			BaseURL:           strings.TrimRight(getenv("HOTEL_API_BASE_URL", ""), "/"),
			ClientID:          getenv("HOTEL_CLIENT_ID", ""),
			ClientSecret:      getenv("HOTEL_CLIENT_SECRET", ""),
			AppKey:            getenv("HOTEL_APP_KEY", ""),
			EnterpriseID:      getenv("HOTEL_ENTERPRISE_ID", ""),
			TokenSafetyMargin: getdur("HOTEL_TOKEN_SAFETY_MARGIN", 60*time.Second),
			CashierID:         getenv("HOTEL_CASHIER_ID", "1"),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-payments-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.ReconcileParallelism < 1 {
		cfg.ReconcileParallelism = 1
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if len(cfg.DefaultCurrency) != 3 {
		return cfg, errors.New("DEFAULT_CURRENCY must be a 3-letter ISO 4217 code")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Hotel.TokenSafetyMargin < 0 {
		return cfg, errors.New("HOTEL_TOKEN_SAFETY_MARGIN must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	if err := cfg.Gateway.validate(); err != nil {
		return cfg, err
	}
	if err := cfg.Hotel.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// validate checks that all gateway credentials are present.
func (g GatewayConfig) validate() error {
	required := map[string]string{
		"RAZORPAY_KEY_ID":         g.KeyID,
		"RAZORPAY_KEY_SECRET":     g.KeySecret,
		"RAZORPAY_WEBHOOK_SECRET": g.WebhookSecret,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return errors.New("missing required configuration: " + name)
		}
	}
	return nil
}

// validate checks that all hotel API connection settings are present.
func (h HotelConfig) validate() error {
	required := map[string]string{
		"HOTEL_API_BASE_URL":  h.BaseURL,
		"HOTEL_CLIENT_ID":     h.ClientID,
		"HOTEL_CLIENT_SECRET": h.ClientSecret,
		"HOTEL_APP_KEY":       h.AppKey,
		"HOTEL_ENTERPRISE_ID": h.EnterpriseID,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return errors.New("missing required configuration: " + name)
		}
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
