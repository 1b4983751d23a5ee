package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Equity  EquityConfig  `yaml:"equity" mapstructure:"equity"`
	Triage  TriageConfig  `yaml:"triage" mapstructure:"triage"`
	Weather WeatherConfig `yaml:"weather" mapstructure:"weather"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DataConfig holds the path of every dataset file. An empty path leaves the
// collection unloaded.
type DataConfig struct {
	Neighborhoods string `yaml:"neighborhoods" mapstructure:"neighborhoods"` // .geojson or .shp
	Tracts        string `yaml:"tracts" mapstructure:"tracts"`
	Stops         string `yaml:"stops" mapstructure:"stops"`
	StopStats     string `yaml:"stop_stats" mapstructure:"stop_stats"`
	Groceries     string `yaml:"groceries" mapstructure:"groceries"`
	Vacancies     string `yaml:"vacancies" mapstructure:"vacancies"` // .csv or .xlsx
	Crime         string `yaml:"crime" mapstructure:"crime"`
	Complaints    string `yaml:"complaints" mapstructure:"complaints"`
	Demographics  string `yaml:"demographics" mapstructure:"demographics"`
	ComplaintLog  string `yaml:"complaint_log" mapstructure:"complaint_log"`
	Weather       string `yaml:"weather" mapstructure:"weather"`
}

// EquityConfig selects the spatial index used by the radius joins.
type EquityConfig struct {
	Index         string  `yaml:"index" mapstructure:"index"`
	GridCellMiles float64 `yaml:"grid_cell_miles" mapstructure:"grid_cell_miles"`
}

// TriageConfig holds the vacancy triage component weights (sum = 100).
type TriageConfig struct {
	ConditionWeight float64 `yaml:"condition_weight" mapstructure:"condition_weight"`
	TaxWeight       float64 `yaml:"tax_weight" mapstructure:"tax_weight"`
	ViolationWeight float64 `yaml:"violation_weight" mapstructure:"violation_weight"`
	ComplaintWeight float64 `yaml:"complaint_weight" mapstructure:"complaint_weight"`
	OwnershipWeight float64 `yaml:"ownership_weight" mapstructure:"ownership_weight"`
	LotSizeWeight   float64 `yaml:"lot_size_weight" mapstructure:"lot_size_weight"`
	MaxTaxYears     int     `yaml:"max_tax_years" mapstructure:"max_tax_years"`
	MaxViolations   int     `yaml:"max_violations" mapstructure:"max_violations"`
	MaxComplaints   int     `yaml:"max_complaints" mapstructure:"max_complaints"`
	LargeLotSqFt    float64 `yaml:"large_lot_sq_ft" mapstructure:"large_lot_sq_ft"`
}

// WeightSum returns the sum of all triage component weights.
func (t TriageConfig) WeightSum() float64 {
	return t.ConditionWeight + t.TaxWeight + t.ViolationWeight +
		t.ComplaintWeight + t.OwnershipWeight + t.LotSizeWeight
}

// WeatherConfig holds the thresholds used to partition daily counts.
type WeatherConfig struct {
	RainyInches     float64 `yaml:"rainy_inches" mapstructure:"rainy_inches"`
	HotF            float64 `yaml:"hot_f" mapstructure:"hot_f"`
	HeavyRainInches float64 `yaml:"heavy_rain_inches" mapstructure:"heavy_rain_inches"`
	MovingAvgWindow int     `yaml:"moving_avg_window" mapstructure:"moving_avg_window"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CIVIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "civic.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("equity.index", "linear")
	v.SetDefault("equity.grid_cell_miles", 0.5)
	v.SetDefault("triage.condition_weight", 30)
	v.SetDefault("triage.tax_weight", 20)
	v.SetDefault("triage.violation_weight", 20)
	v.SetDefault("triage.complaint_weight", 15)
	v.SetDefault("triage.ownership_weight", 10)
	v.SetDefault("triage.lot_size_weight", 5)
	v.SetDefault("triage.max_tax_years", 10)
	v.SetDefault("triage.max_violations", 10)
	v.SetDefault("triage.max_complaints", 25)
	v.SetDefault("triage.large_lot_sq_ft", 10000)
	v.SetDefault("weather.rainy_inches", 0.1)
	v.SetDefault("weather.hot_f", 85)
	v.SetDefault("weather.heavy_rain_inches", 0.5)
	v.SetDefault("weather.moving_avg_window", 7)

	// Data paths have no defaults, but registering them lets env vars
	// such as CIVIC_DATA_TRACTS reach Unmarshal.
	for _, key := range []string{
		"neighborhoods", "tracts", "stops", "stop_stats", "groceries", "vacancies",
		"crime", "complaints", "demographics", "complaint_log", "weather",
	} {
		v.SetDefault("data."+key, "")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is internally consistent for the
// given mode ("score" or "serve").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "score":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
			errs = append(errs, "server rate limits must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch c.Equity.Index {
	case "linear", "grid":
	default:
		errs = append(errs, fmt.Sprintf("equity.index must be linear or grid, got %q", c.Equity.Index))
	}
	if c.Equity.Index == "grid" && c.Equity.GridCellMiles <= 0 {
		errs = append(errs, "equity.grid_cell_miles must be > 0")
	}

	if math.Abs(c.Triage.WeightSum()-100) > 1 {
		errs = append(errs, fmt.Sprintf("triage weights should sum to 100, got %.1f", c.Triage.WeightSum()))
	}

	if c.Weather.MovingAvgWindow < 1 {
		errs = append(errs, "weather.moving_avg_window must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
