package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Server   ServerConfig   `validate:"required"`
	Logging  LoggingConfig  `validate:"required"`
	Postgres PostgresConfig `validate:"required"`
	Paynow   PaynowConfig   `validate:"required"`
	Cron     CronConfig     `validate:"required"`
	Plans    PlansConfig    `validate:"required"`
	Billing  BillingConfig  `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level string `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `mapstructure:"conn_max_lifetime_minutes"`
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// PaynowConfig configures the mobile money gateway integration
type PaynowConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	IntegrationID  string `mapstructure:"integration_id"`
	IntegrationKey string `mapstructure:"integration_key"`
	ResultURL      string `mapstructure:"result_url"`
	ReturnURL      string `mapstructure:"return_url"`
	// Timeout bounds every gateway call; a timed-out create must leave no
	// payment row behind
	Timeout time.Duration
}

// CronConfig configures the reconciler triggers
type CronConfig struct {
	// Secret is the bearer token the HTTP trigger endpoint requires
	Secret string
	// Schedule is a robfig/cron expression for the in-process daily run
	Schedule string
}

// PlanPricing is one row of the plan price table
type PlanPricing struct {
	MonthlyPrice decimal.Decimal `mapstructure:"monthly_price"`
	YearlyPrice  decimal.Decimal `mapstructure:"yearly_price"`
}

// PlansConfig is the single source of truth for plan prices. Upgrade invoice
// amounts and tenant monthly revenue are always derived from here; prices are
// never hardcoded at call sites.
type PlansConfig struct {
	Currency string
	Prices   map[string]PlanPricing
}

// PriceFor returns the pricing row for a plan
func (p PlansConfig) PriceFor(plan types.SubscriptionPlan) (PlanPricing, error) {
	pricing, ok := p.Prices[strings.ToLower(plan.String())]
	if !ok {
		return PlanPricing{}, ierr.NewError("plan not priced").
			WithHintf("No price configured for plan %s", plan).
			Mark(ierr.ErrValidation)
	}
	return pricing, nil
}

// BillingConfig carries the billing engine's tunables
type BillingConfig struct {
	// OverdueSuspensionDays is how long past due an OVERDUE invoice must be
	// before the reconciler suspends the tenant
	OverdueSuspensionDays int `mapstructure:"overdue_suspension_days"`
	// DocumentExpiryWarningDays is the look-ahead window for license and
	// insurance expiry in the due-balance feed
	DocumentExpiryWarningDays int `mapstructure:"document_expiry_warning_days"`
	// DueBalanceCacheTTL bounds staleness of the due-balance feed cache
	DueBalanceCacheTTL time.Duration `mapstructure:"due_balance_cache_ttl"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fleetcore")

	v.SetEnvPrefix("FLEETCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config, viper.DecodeHook(decimalDecodeHook())); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "fleetcore")
	v.SetDefault("postgres.dbname", "fleetcore")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)

	v.SetDefault("paynow.base_url", "https://www.paynow.co.zw/interface")
	v.SetDefault("paynow.timeout", "30s")

	v.SetDefault("cron.schedule", "0 2 * * *")

	// Canonical plan prices. The originating system disagreed with itself
	// about BASIC pricing across call sites; these values are the single
	// configurable source of truth.
	v.SetDefault("plans.currency", "USD")
	v.SetDefault("plans.prices.free.monthly_price", "0")
	v.SetDefault("plans.prices.free.yearly_price", "0")
	v.SetDefault("plans.prices.basic.monthly_price", "29.99")
	v.SetDefault("plans.prices.basic.yearly_price", "299.90")
	v.SetDefault("plans.prices.premium.monthly_price", "99.99")
	v.SetDefault("plans.prices.premium.yearly_price", "999.90")

	v.SetDefault("billing.overdue_suspension_days", 30)
	v.SetDefault("billing.document_expiry_warning_days", 30)
	v.SetDefault("billing.due_balance_cache_ttl", "2m")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	for _, plan := range []types.SubscriptionPlan{
		types.SubscriptionPlanFree,
		types.SubscriptionPlanBasic,
		types.SubscriptionPlanPremium,
	} {
		if _, err := c.Plans.PriceFor(plan); err != nil {
			return err
		}
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development and
// tests, with the full plan price table populated.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server:  ServerConfig{Address: ":8080"},
		Logging: LoggingConfig{Level: "debug"},
		Paynow: PaynowConfig{
			BaseURL: "https://www.paynow.co.zw/interface",
			Timeout: 30 * time.Second,
		},
		Cron: CronConfig{
			Secret:   "test-cron-secret",
			Schedule: "0 2 * * *",
		},
		Plans: PlansConfig{
			Currency: "USD",
			Prices: map[string]PlanPricing{
				"free":    {MonthlyPrice: decimal.Zero, YearlyPrice: decimal.Zero},
				"basic":   {MonthlyPrice: decimal.RequireFromString("29.99"), YearlyPrice: decimal.RequireFromString("299.90")},
				"premium": {MonthlyPrice: decimal.RequireFromString("99.99"), YearlyPrice: decimal.RequireFromString("999.90")},
			},
		},
		Billing: BillingConfig{
			OverdueSuspensionDays:     30,
			DocumentExpiryWarningDays: 30,
			DueBalanceCacheTTL:        2 * time.Minute,
		},
	}
}
