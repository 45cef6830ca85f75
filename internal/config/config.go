package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	DB       DBConfig     `mapstructure:"db"`
	Engine   EngineConfig `mapstructure:"engine"`
	Source   SourceConfig `mapstructure:"source"`
	Output   OutputConfig `mapstructure:"output"`
	LogLevel string       `mapstructure:"log_level"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // mysql or postgres
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type SourceConfig struct {
	Kind   string `mapstructure:"kind"` // csv or db
	CSVDir string `mapstructure:"csv_dir"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// EngineConfig holds every analysis parameter. AsOfDate is required: recency
// and churn are measured against it, never against the wall clock, so two
// runs over the same snapshot always agree.
type EngineConfig struct {
	AsOfDate              string  `mapstructure:"asOfDate"`
	ParetoThreshold       float64 `mapstructure:"paretoThreshold"`
	PriceIncreasePct      float64 `mapstructure:"priceIncreasePct"`
	RetentionMultiplier   float64 `mapstructure:"retentionMultiplier"`
	ChurnLossMultiplier   float64 `mapstructure:"churnLossMultiplier"`
	ExpansionMultiplier   float64 `mapstructure:"expansionMultiplier"`
	CohortStartMonth      string  `mapstructure:"cohortStartMonth"`
	MinOrdersForPricing   int     `mapstructure:"minOrdersForPricing"`
	MinCategorySampleSize int     `mapstructure:"minCategorySampleSize"`
}

// ParamError reports an out-of-range engine parameter. Parameter validation
// fails the run before any computation starts.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("configuration: parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// Defaults applied when the config file leaves engine parameters unset.
const (
	DefaultParetoThreshold       = 0.80
	DefaultPriceIncreasePct      = 0.15
	DefaultRetentionMultiplier   = 0.10
	DefaultChurnLossMultiplier   = 0.30
	DefaultExpansionMultiplier   = 1.0
	DefaultCohortStartMonth      = "2017-01"
	DefaultMinOrdersForPricing   = 10
	DefaultMinCategorySampleSize = 3
)

// LoadConfig loads configuration from config.yaml and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.storelens/")
	v.AddConfigPath("/etc/storelens/")

	v.SetEnvPrefix("STORELENS")
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.maxOpenConns", 10)
	v.SetDefault("source.kind", "csv")
	v.SetDefault("output.dir", "reports")
	v.SetDefault("engine.paretoThreshold", DefaultParetoThreshold)
	v.SetDefault("engine.priceIncreasePct", DefaultPriceIncreasePct)
	v.SetDefault("engine.retentionMultiplier", DefaultRetentionMultiplier)
	v.SetDefault("engine.churnLossMultiplier", DefaultChurnLossMultiplier)
	v.SetDefault("engine.expansionMultiplier", DefaultExpansionMultiplier)
	v.SetDefault("engine.cohortStartMonth", DefaultCohortStartMonth)
	v.SetDefault("engine.minOrdersForPricing", DefaultMinOrdersForPricing)
	v.SetDefault("engine.minCategorySampleSize", DefaultMinCategorySampleSize)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// AsOf parses the required as-of date.
func (e *EngineConfig) AsOf() (time.Time, error) {
	t, err := time.Parse("2006-01-02", e.AsOfDate)
	if err != nil {
		return time.Time{}, &ParamError{Name: "asOfDate", Value: e.AsOfDate, Reason: "must be a YYYY-MM-DD date"}
	}
	return t.UTC(), nil
}

// CohortFloor parses the first cohort month to report.
func (e *EngineConfig) CohortFloor() (time.Time, error) {
	t, err := time.Parse("2006-01", e.CohortStartMonth)
	if err != nil {
		return time.Time{}, &ParamError{Name: "cohortStartMonth", Value: e.CohortStartMonth, Reason: "must be a YYYY-MM month"}
	}
	return t.UTC(), nil
}

// Validate checks every engine parameter before a run starts.
func (e *EngineConfig) Validate() error {
	if e.AsOfDate == "" {
		return &ParamError{Name: "asOfDate", Value: "", Reason: "required"}
	}
	if _, err := e.AsOf(); err != nil {
		return err
	}
	if _, err := e.CohortFloor(); err != nil {
		return err
	}
	if e.ParetoThreshold <= 0 || e.ParetoThreshold > 1 {
		return &ParamError{Name: "paretoThreshold", Value: e.ParetoThreshold, Reason: "must be in (0, 1]"}
	}
	if e.PriceIncreasePct < 0 {
		return &ParamError{Name: "priceIncreasePct", Value: e.PriceIncreasePct, Reason: "must not be negative"}
	}
	if e.RetentionMultiplier < 0 {
		return &ParamError{Name: "retentionMultiplier", Value: e.RetentionMultiplier, Reason: "must not be negative"}
	}
	if e.ChurnLossMultiplier < 0 {
		return &ParamError{Name: "churnLossMultiplier", Value: e.ChurnLossMultiplier, Reason: "must not be negative"}
	}
	if e.ExpansionMultiplier < 0 {
		return &ParamError{Name: "expansionMultiplier", Value: e.ExpansionMultiplier, Reason: "must not be negative"}
	}
	if e.MinOrdersForPricing < 1 {
		return &ParamError{Name: "minOrdersForPricing", Value: e.MinOrdersForPricing, Reason: "must be at least 1"}
	}
	if e.MinCategorySampleSize < 1 {
		return &ParamError{Name: "minCategorySampleSize", Value: e.MinCategorySampleSize, Reason: "must be at least 1"}
	}
	return nil
}
