package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// Config holds application level configuration loaded from file, environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenStrategy   string
	LogLevel        string
	ShutdownTimeout time.Duration

	Gateway GatewayConfig
	// FiatUnit denominates order amounts and referral commissions.
	FiatUnit string

	SweepInterval     time.Duration
	ReconcileInterval time.Duration
	ReconcileBatch    int
	WorkerPoolSize    int

	AMQPURL        string
	AMQPExchange   string
	OutboxInterval time.Duration
	OutboxBatch    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JobLockTTL    time.Duration

	CommissionRates []decimal.Decimal
	Packages        []model.Package
}

// GatewayConfig describes the external payment gateway.
type GatewayConfig struct {
	BaseURL     string
	Secret      string
	CreatePath  string
	QueryPath   string
	Timeout     time.Duration
	NotifyURL   string
	RedirectURL string
	OrderTTL    time.Duration
	Currencies  []string
}

// Token strategies accepted by TokenStrategy.
const (
	TokenStrategyHMAC = "hmac"
	TokenStrategyJWT  = "jwt"
)

const (
	defaultRunAddress        = ":8080"
	defaultJWTSecret         = "change-me-in-production"
	defaultTokenStrategy     = TokenStrategyHMAC
	defaultLogLevel          = "info"
	defaultShutdownTimeout   = 10 * time.Second
	defaultGatewayTimeout    = 30 * time.Second
	defaultGatewayCreatePath = "/api/v1/order/create-transaction"
	defaultOrderTTL          = 30 * time.Minute
	defaultFiatUnit          = "USD"
	defaultSweepInterval     = time.Minute
	defaultReconcileInterval = 5 * time.Minute
	defaultReconcileBatch    = 50
	defaultWorkerPoolSize    = 4
	defaultAMQPExchange      = "cryptopay.events"
	defaultOutboxInterval    = 2 * time.Second
	defaultOutboxBatch       = 100
	defaultJobLockTTL        = 30 * time.Second
)

var (
	defaultCurrencies      = []string{"usdt.trc20"}
	defaultCommissionRates = []decimal.Decimal{decimal.RequireFromString("0.10")}
)

// DefaultPackages is the catalog used when none is configured.
func DefaultPackages() []model.Package {
	return []model.Package{
		{Code: "points-100", Type: model.OrderTypePoints, Name: "100 points", Amount: decimal.RequireFromString("10.00"), Points: 100},
		{Code: "points-550", Type: model.OrderTypePoints, Name: "550 points", Amount: decimal.RequireFromString("50.00"), Points: 550},
		{Code: "vip-30", Type: model.OrderTypeVIP, Name: "VIP Monthly", Amount: decimal.RequireFromString("9.90"), VIPDays: 30},
		{Code: "vip-365", Type: model.OrderTypeVIP, Name: "VIP Yearly", Amount: decimal.RequireFromString("99.00"), VIPDays: 365},
	}
}

// Load parses configuration from the process arguments and environment.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

// FromArgs parses configuration from explicit arguments and the process environment.
func FromArgs(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func defaults() *Config {
	return &Config{
		RunAddress:      defaultRunAddress,
		JWTSecret:       defaultJWTSecret,
		TokenStrategy:   defaultTokenStrategy,
		LogLevel:        defaultLogLevel,
		ShutdownTimeout: defaultShutdownTimeout,
		Gateway: GatewayConfig{
			CreatePath: defaultGatewayCreatePath,
			Timeout:    defaultGatewayTimeout,
			OrderTTL:   defaultOrderTTL,
			Currencies: append([]string(nil), defaultCurrencies...),
		},
		FiatUnit:          defaultFiatUnit,
		SweepInterval:     defaultSweepInterval,
		ReconcileInterval: defaultReconcileInterval,
		ReconcileBatch:    defaultReconcileBatch,
		WorkerPoolSize:    defaultWorkerPoolSize,
		AMQPExchange:      defaultAMQPExchange,
		OutboxInterval:    defaultOutboxInterval,
		OutboxBatch:       defaultOutboxBatch,
		JobLockTTL:        defaultJobLockTTL,
		CommissionRates:   append([]decimal.Decimal(nil), defaultCommissionRates...),
		Packages:          DefaultPackages(),
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := defaults()

	path := getString(lookup, "CONFIG_PATH", "")
	if p := configPathFromArgs(args); p != "" {
		path = p
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("cryptopay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath           = path
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
		gatewayTimeoutStr    = cfg.Gateway.Timeout.String()
		sweepIntervalStr     = cfg.SweepInterval.String()
		reconcileIntervalStr = cfg.ReconcileInterval.String()
	)

	fs.StringVar(&configPath, "c", configPath, "Path to YAML configuration file")
	fs.StringVar(&configPath, "config", configPath, "Path to YAML configuration file")
	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.Gateway.BaseURL, "g", cfg.Gateway.BaseURL, "Payment gateway base URL")
	fs.StringVar(&cfg.Gateway.NotifyURL, "notify-url", cfg.Gateway.NotifyURL, "Public webhook URL handed to the gateway")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Auth token strategy: hmac or jwt")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "RabbitMQ URL for event publishing")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for job locks")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum orders per reconciliation batch")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Gateway request timeout")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expiry sweeps")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between reconciliation passes")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.Gateway.Timeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if err := readSecretFiles(cfg, lookup); err != nil {
		return nil, err
	}

	applyFallbacks(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup envLookup) error {
	cfg.RunAddress = getString(lookup, "RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabaseURI = getString(lookup, "DATABASE_URI", cfg.DatabaseURI)
	cfg.JWTSecret = getString(lookup, "JWT_SECRET", cfg.JWTSecret)
	cfg.TokenStrategy = getString(lookup, "TOKEN_STRATEGY", cfg.TokenStrategy)
	cfg.LogLevel = getString(lookup, "LOG_LEVEL", cfg.LogLevel)
	cfg.ShutdownTimeout = getDuration(lookup, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.Gateway.BaseURL = getString(lookup, "GATEWAY_URL", cfg.Gateway.BaseURL)
	cfg.Gateway.Secret = getString(lookup, "GATEWAY_SECRET", cfg.Gateway.Secret)
	cfg.Gateway.CreatePath = getString(lookup, "GATEWAY_CREATE_PATH", cfg.Gateway.CreatePath)
	cfg.Gateway.QueryPath = getString(lookup, "GATEWAY_QUERY_PATH", cfg.Gateway.QueryPath)
	cfg.Gateway.Timeout = getDuration(lookup, "GATEWAY_TIMEOUT", cfg.Gateway.Timeout)
	cfg.Gateway.NotifyURL = getString(lookup, "GATEWAY_NOTIFY_URL", cfg.Gateway.NotifyURL)
	cfg.Gateway.RedirectURL = getString(lookup, "GATEWAY_REDIRECT_URL", cfg.Gateway.RedirectURL)
	cfg.Gateway.OrderTTL = getDuration(lookup, "ORDER_TTL", cfg.Gateway.OrderTTL)
	cfg.Gateway.Currencies = getList(lookup, "GATEWAY_CURRENCIES", cfg.Gateway.Currencies)
	cfg.FiatUnit = getString(lookup, "FIAT_UNIT", cfg.FiatUnit)

	cfg.SweepInterval = getDuration(lookup, "SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.ReconcileInterval = getDuration(lookup, "RECONCILE_INTERVAL", cfg.ReconcileInterval)
	cfg.ReconcileBatch = getInt(lookup, "RECONCILE_BATCH", cfg.ReconcileBatch)
	cfg.WorkerPoolSize = getInt(lookup, "WORKER_POOL_SIZE", cfg.WorkerPoolSize)

	cfg.AMQPURL = getString(lookup, "AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getString(lookup, "AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.OutboxInterval = getDuration(lookup, "OUTBOX_INTERVAL", cfg.OutboxInterval)
	cfg.OutboxBatch = getInt(lookup, "OUTBOX_BATCH", cfg.OutboxBatch)

	cfg.RedisAddr = getString(lookup, "REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getString(lookup, "REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getInt(lookup, "REDIS_DB", cfg.RedisDB)
	cfg.JobLockTTL = getDuration(lookup, "JOB_LOCK_TTL", cfg.JobLockTTL)

	if raw := getList(lookup, "COMMISSION_RATES", nil); raw != nil {
		rates, err := parseRates(raw)
		if err != nil {
			return err
		}
		cfg.CommissionRates = rates
	}
	return nil
}

func readSecretFiles(cfg *Config, lookup envLookup) error {
	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}
	if secretFile, ok := lookup("GATEWAY_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return fmt.Errorf("read gateway secret file: %w", err)
		}
		cfg.Gateway.Secret = strings.TrimSpace(string(content))
	}
	return nil
}

func applyFallbacks(cfg *Config) {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}
	if cfg.OutboxBatch <= 0 {
		cfg.OutboxBatch = defaultOutboxBatch
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = defaultGatewayTimeout
	}
	if cfg.Gateway.OrderTTL <= 0 {
		cfg.Gateway.OrderTTL = defaultOrderTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}
	if cfg.OutboxInterval <= 0 {
		cfg.OutboxInterval = defaultOutboxInterval
	}
	if cfg.JobLockTTL <= 0 {
		cfg.JobLockTTL = defaultJobLockTTL
	}
	if cfg.Gateway.CreatePath == "" {
		cfg.Gateway.CreatePath = defaultGatewayCreatePath
	}
	if len(cfg.Gateway.Currencies) == 0 {
		cfg.Gateway.Currencies = append([]string(nil), defaultCurrencies...)
	}
	if len(cfg.Packages) == 0 {
		cfg.Packages = DefaultPackages()
	}
}

func validate(cfg *Config) error {
	if cfg.DatabaseURI == "" {
		return errors.New("database URI must be provided")
	}
	if cfg.Gateway.BaseURL == "" {
		return errors.New("gateway URL must be provided")
	}
	if cfg.Gateway.Secret == "" {
		return errors.New("gateway secret must be provided")
	}
	if cfg.Gateway.NotifyURL == "" {
		return errors.New("gateway notify URL must be provided")
	}
	switch cfg.TokenStrategy {
	case TokenStrategyHMAC, TokenStrategyJWT:
	default:
		return fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}
	for i, rate := range cfg.CommissionRates {
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("commission rate at level %d must be in [0, 1)", i+1)
		}
	}
	return validatePackages(cfg.Packages)
}

func validatePackages(packages []model.Package) error {
	seen := make(map[string]struct{}, len(packages))
	for _, p := range packages {
		if p.Code == "" {
			return errors.New("package code must be provided")
		}
		if _, dup := seen[p.Code]; dup {
			return fmt.Errorf("duplicate package %q", p.Code)
		}
		seen[p.Code] = struct{}{}

		if !p.Amount.IsPositive() {
			return fmt.Errorf("package %q: amount must be positive", p.Code)
		}
		switch p.Type {
		case model.OrderTypePoints:
			if p.Points <= 0 {
				return fmt.Errorf("package %q: points must be positive", p.Code)
			}
		case model.OrderTypeVIP:
			if p.VIPDays <= 0 {
				return fmt.Errorf("package %q: vip days must be positive", p.Code)
			}
		default:
			return fmt.Errorf("package %q: unknown type %q", p.Code, p.Type)
		}
	}
	return nil
}

// configPathFromArgs finds -c/--config before the flag set is parsed so the file
// can be applied underneath environment and flag overrides.
func configPathFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		for _, name := range []string{"-c", "--c", "-config", "--config"} {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(arg, name+"=") {
				return strings.TrimPrefix(arg, name+"=")
			}
		}
	}
	return ""
}

func parseRates(raw []string) ([]decimal.Decimal, error) {
	rates := make([]decimal.Decimal, 0, len(raw))
	for _, r := range raw {
		rate, err := decimal.NewFromString(r)
		if err != nil {
			return nil, fmt.Errorf("invalid commission rate %q: %w", r, err)
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string, def []string) []string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
