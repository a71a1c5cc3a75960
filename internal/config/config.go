package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/metiseon/metiseon/internal/core"
	"github.com/spf13/viper"
)

// minPITLagDays is the enforced floor on the point-in-time lag. Anything
// shorter would let backtests see fundamentals before the market did.
const minPITLagDays = 45

type Config struct {
	Tickers    []string                   `mapstructure:"tickers"`
	Ledger     LedgerConfig               `mapstructure:"ledger"`
	Allocation AllocationConfig           `mapstructure:"allocation"`
	Risk       RiskConfig                 `mapstructure:"risk"`
	Collectors map[string]CollectorConfig `mapstructure:"collectors"`
	Report     ReportConfig               `mapstructure:"report"`
	Archive    ArchiveConfig              `mapstructure:"archive"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
}

type LedgerConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// AllocationConfig holds the sizing and cost-gate surface.
type AllocationConfig struct {
	FeeBP        float64 `mapstructure:"fee_bp"`
	SlipCapBP    float64 `mapstructure:"slip_cap_bp"`
	WeeklyBuy    float64 `mapstructure:"weekly_buy"`
	WeeklyPct    float64 `mapstructure:"weekly_pct"` // 0 means unset
	Denomination string  `mapstructure:"denomination"`
}

// RiskConfig holds the volatility-estimation surface.
type RiskConfig struct {
	SigmaMethod string `mapstructure:"sigma_method"`
	Window      int    `mapstructure:"window"`
	PITLagDays  int    `mapstructure:"pit_lag_days"`
}

// PITLag returns the point-in-time lag as a duration, floored at 45 days.
func (r RiskConfig) PITLag() time.Duration {
	days := r.PITLagDays
	if days < minPITLagDays {
		days = minPITLagDays
	}
	return time.Duration(days) * 24 * time.Hour
}

type CollectorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	APIKey   string        `mapstructure:"api_key"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ReportConfig struct {
	Path string `mapstructure:"path"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that have no safe fallback.
func (c *Config) Validate() error {
	switch core.Denomination(c.Allocation.Denomination) {
	case core.DenomFiat, core.DenomNumeraire:
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("denomination %q (want fiat or numeraire)", c.Allocation.Denomination))
	}
	switch core.SigmaMethod(c.Risk.SigmaMethod) {
	case core.SigmaGarch, core.SigmaRealised:
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sigma_method %q (want garch or realised)", c.Risk.SigmaMethod))
	}
	if c.Allocation.SlipCapBP < 0 || c.Allocation.FeeBP < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("negative basis-point setting"))
	}
	return nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Ledger: LedgerConfig{
			DBPath: "portfolio.db",
		},
		Allocation: AllocationConfig{
			FeeBP:        12,
			SlipCapBP:    35,
			WeeklyBuy:    100,
			Denomination: string(core.DenomFiat),
		},
		Risk: RiskConfig{
			SigmaMethod: string(core.SigmaGarch),
			Window:      63,
			PITLagDays:  minPITLagDays,
		},
		Report: ReportConfig{
			Path: "reports/latest.html",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "reports",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9091",
		},
	}
}
