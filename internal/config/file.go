package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// fileConfig mirrors the YAML layout. Zero values leave defaults untouched.
type fileConfig struct {
	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
		LogLevel        string `yaml:"log_level"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Auth struct {
		Secret   string `yaml:"secret"`
		Strategy string `yaml:"strategy"`
	} `yaml:"auth"`
	Gateway struct {
		BaseURL     string   `yaml:"base_url"`
		Secret      string   `yaml:"secret"`
		CreatePath  string   `yaml:"create_path"`
		QueryPath   string   `yaml:"query_path"`
		Timeout     string   `yaml:"timeout"`
		NotifyURL   string   `yaml:"notify_url"`
		RedirectURL string   `yaml:"redirect_url"`
		OrderTTL    string   `yaml:"order_ttl"`
		Currencies  []string `yaml:"currencies"`
		FiatUnit    string   `yaml:"fiat_unit"`
	} `yaml:"gateway"`
	Jobs struct {
		SweepInterval     string `yaml:"sweep_interval"`
		ReconcileInterval string `yaml:"reconcile_interval"`
		ReconcileBatch    int    `yaml:"reconcile_batch"`
		WorkerPool        int    `yaml:"worker_pool"`
		LockTTL           string `yaml:"lock_ttl"`
	} `yaml:"jobs"`
	AMQP struct {
		URL            string `yaml:"url"`
		Exchange       string `yaml:"exchange"`
		OutboxInterval string `yaml:"outbox_interval"`
		OutboxBatch    int    `yaml:"outbox_batch"`
	} `yaml:"amqp"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Commission struct {
		Rates []string `yaml:"rates"`
	} `yaml:"commission"`
	Packages []struct {
		Code    string `yaml:"code"`
		Type    string `yaml:"type"`
		Name    string `yaml:"name"`
		Amount  string `yaml:"amount"`
		Points  int64  `yaml:"points"`
		VIPDays int    `yaml:"vip_days"`
	} `yaml:"packages"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.RunAddress, fc.Server.Addr)
	setString(&cfg.LogLevel, fc.Server.LogLevel)
	setString(&cfg.DatabaseURI, fc.DB.DSN)
	setString(&cfg.JWTSecret, fc.Auth.Secret)
	setString(&cfg.TokenStrategy, fc.Auth.Strategy)

	setString(&cfg.Gateway.BaseURL, fc.Gateway.BaseURL)
	setString(&cfg.Gateway.Secret, fc.Gateway.Secret)
	setString(&cfg.Gateway.CreatePath, fc.Gateway.CreatePath)
	setString(&cfg.Gateway.QueryPath, fc.Gateway.QueryPath)
	setString(&cfg.Gateway.NotifyURL, fc.Gateway.NotifyURL)
	setString(&cfg.Gateway.RedirectURL, fc.Gateway.RedirectURL)
	setString(&cfg.FiatUnit, fc.Gateway.FiatUnit)
	if len(fc.Gateway.Currencies) > 0 {
		cfg.Gateway.Currencies = fc.Gateway.Currencies
	}

	setString(&cfg.AMQPURL, fc.AMQP.URL)
	setString(&cfg.AMQPExchange, fc.AMQP.Exchange)
	setInt(&cfg.OutboxBatch, fc.AMQP.OutboxBatch)

	setString(&cfg.RedisAddr, fc.Redis.Addr)
	setString(&cfg.RedisPassword, fc.Redis.Password)
	setInt(&cfg.RedisDB, fc.Redis.DB)

	setInt(&cfg.ReconcileBatch, fc.Jobs.ReconcileBatch)
	setInt(&cfg.WorkerPoolSize, fc.Jobs.WorkerPool)

	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{"server.shutdown_timeout", fc.Server.ShutdownTimeout, &cfg.ShutdownTimeout},
		{"gateway.timeout", fc.Gateway.Timeout, &cfg.Gateway.Timeout},
		{"gateway.order_ttl", fc.Gateway.OrderTTL, &cfg.Gateway.OrderTTL},
		{"jobs.sweep_interval", fc.Jobs.SweepInterval, &cfg.SweepInterval},
		{"jobs.reconcile_interval", fc.Jobs.ReconcileInterval, &cfg.ReconcileInterval},
		{"jobs.lock_ttl", fc.Jobs.LockTTL, &cfg.JobLockTTL},
		{"amqp.outbox_interval", fc.AMQP.OutboxInterval, &cfg.OutboxInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.target = parsed
	}

	if len(fc.Commission.Rates) > 0 {
		rates, err := parseRates(fc.Commission.Rates)
		if err != nil {
			return err
		}
		cfg.CommissionRates = rates
	}

	if len(fc.Packages) > 0 {
		packages := make([]model.Package, 0, len(fc.Packages))
		for _, p := range fc.Packages {
			amount, err := decimal.NewFromString(p.Amount)
			if err != nil {
				return fmt.Errorf("package %q: invalid amount %q: %w", p.Code, p.Amount, err)
			}
			packages = append(packages, model.Package{
				Code:    p.Code,
				Type:    model.OrderType(p.Type),
				Name:    p.Name,
				Amount:  amount,
				Points:  p.Points,
				VIPDays: p.VIPDays,
			})
		}
		cfg.Packages = packages
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
