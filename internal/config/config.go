package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/tradejournal/internal/alert"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/notifier"
	"github.com/newthinker/tradejournal/internal/playbook"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/newthinker/tradejournal/internal/storage/archive"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Account   AccountConfig             `mapstructure:"account"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Archive   ArchiveConfig             `mapstructure:"archive"`
	Risk      RiskConfig                `mapstructure:"risk"`
	Rubric    RubricConfig              `mapstructure:"rubric"`
	Kelly     KellyConfig               `mapstructure:"kelly"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Alerts    AlertsConfig              `mapstructure:"alerts"`
	Notifiers map[string]NotifierConfig `mapstructure:"notifiers"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AccountConfig identifies the journal's account.
type AccountConfig struct {
	ID              string  `mapstructure:"id"`
	StartingBalance float64 `mapstructure:"starting_balance"`
}

// Trade store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // "memory" or "sqlite"
	Path      string `mapstructure:"path"`   // SQLite database file
	MaxTrades int    `mapstructure:"max_trades"`
	// ImportPath is a CSV or JSON trade file loaded at startup.
	ImportPath string `mapstructure:"import_path"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// RiskConfig holds the account's risk limits, in percent of balance.
type RiskConfig struct {
	MaxRiskPerTradePct     float64 `mapstructure:"max_risk_per_trade_pct"`
	MaxDailyRiskPct        float64 `mapstructure:"max_daily_risk_pct"`
	MaxWeeklyRiskPct       float64 `mapstructure:"max_weekly_risk_pct"`
	MaxMonthlyRiskPct      float64 `mapstructure:"max_monthly_risk_pct"`
	MaxDrawdownPct         float64 `mapstructure:"max_drawdown_pct"`
	MaxConsecutiveLosses   int     `mapstructure:"max_consecutive_losses"`
	MaxOpenPositions       int     `mapstructure:"max_open_positions"`
	MaxCorrelatedPositions int     `mapstructure:"max_correlated_positions"`
	MinRewardRisk          float64 `mapstructure:"min_reward_risk"`
}

// RubricConfig holds setup grading weights.
type RubricConfig struct {
	WeightRules       float64                `mapstructure:"weight_rules"`
	WeightConfluences float64                `mapstructure:"weight_confluences"`
	WeightChecklist   float64                `mapstructure:"weight_checklist"`
	MustRulePenalty   float64                `mapstructure:"must_rule_penalty"`
	MinChecks         int                    `mapstructure:"min_checks"`
	GradeCutoffs      []playbook.GradeCutoff `mapstructure:"grade_cutoffs"`
	FloorGrade        string                 `mapstructure:"floor_grade"`
	PrimaryMultiplier float64                `mapstructure:"primary_multiplier"`
	Redistribution    playbook.Split         `mapstructure:"redistribution"`
}

type KellyConfig struct {
	MinSample int `mapstructure:"min_sample"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AlertsConfig holds the risk monitor configuration.
type AlertsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	// MinStatus is the lowest risk rule status that alerts: warning or violated.
	MinStatus string       `mapstructure:"min_status"`
	Rules     []alert.Rule `mapstructure:"rules"`
}

type NotifierConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIURL   string `mapstructure:"api_url"`
	// Webhook notifier fields
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Load reads configuration from file on top of Defaults.
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

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	s := risk.DefaultSettings()
	r := playbook.DefaultRubric()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Account: AccountConfig{
			ID:              "default",
			StartingBalance: 10000,
		},
		Storage: StorageConfig{
			Driver:    DriverMemory,
			MaxTrades: 100000,
		},
		Archive: ArchiveConfig{
			Type: archive.BackendLocal,
			Path: "./data/archive",
		},
		Risk: RiskConfig{
			MaxRiskPerTradePct:     s.MaxRiskPerTradePct,
			MaxDailyRiskPct:        s.MaxDailyRiskPct,
			MaxWeeklyRiskPct:       s.MaxWeeklyRiskPct,
			MaxMonthlyRiskPct:      s.MaxMonthlyRiskPct,
			MaxDrawdownPct:         s.MaxDrawdownPct,
			MaxConsecutiveLosses:   s.MaxConsecutiveLosses,
			MaxOpenPositions:       s.MaxOpenPositions,
			MaxCorrelatedPositions: s.MaxCorrelatedPositions,
			MinRewardRisk:          s.MinRewardRisk,
		},
		Rubric: RubricConfig{
			WeightRules:       r.WeightRules,
			WeightConfluences: r.WeightConfluences,
			WeightChecklist:   r.WeightChecklist,
			MustRulePenalty:   r.MustRulePenalty,
			MinChecks:         r.MinChecks,
			GradeCutoffs:      r.GradeCutoffs,
			FloorGrade:        r.FloorGrade,
			PrimaryMultiplier: r.PrimaryMultiplier,
			Redistribution:    r.Redistribution,
		},
		Kelly: KellyConfig{
			MinSample: risk.DefaultKellyMinSample,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Alerts: AlertsConfig{
			Enabled:       false,
			CheckInterval: 60 * time.Second,
			Cooldown:      time.Hour,
			MinStatus:     string(risk.StatusWarning),
		},
	}
}

// RiskSettings converts the risk section.
func (c *Config) RiskSettings() risk.Settings {
	r := c.Risk
	return risk.Settings{
		MaxRiskPerTradePct:     r.MaxRiskPerTradePct,
		MaxDailyRiskPct:        r.MaxDailyRiskPct,
		MaxWeeklyRiskPct:       r.MaxWeeklyRiskPct,
		MaxMonthlyRiskPct:      r.MaxMonthlyRiskPct,
		MaxDrawdownPct:         r.MaxDrawdownPct,
		MaxConsecutiveLosses:   r.MaxConsecutiveLosses,
		MaxOpenPositions:       r.MaxOpenPositions,
		MaxCorrelatedPositions: r.MaxCorrelatedPositions,
		MinRewardRisk:          r.MinRewardRisk,
	}
}

// PlaybookRubric converts the rubric section.
func (c *Config) PlaybookRubric() playbook.Rubric {
	r := c.Rubric
	cutoffs := make([]playbook.GradeCutoff, len(r.GradeCutoffs))
	copy(cutoffs, r.GradeCutoffs)
	return playbook.Rubric{
		WeightRules:       r.WeightRules,
		WeightConfluences: r.WeightConfluences,
		WeightChecklist:   r.WeightChecklist,
		MustRulePenalty:   r.MustRulePenalty,
		MinChecks:         r.MinChecks,
		GradeCutoffs:      cutoffs,
		FloorGrade:        r.FloorGrade,
		PrimaryMultiplier: r.PrimaryMultiplier,
		Redistribution:    r.Redistribution,
	}
}

// ArchiveStorage converts the archive section.
func (c *Config) ArchiveStorage() archive.Config {
	a := c.Archive
	return archive.Config{
		Backend: a.Type,
		Path:    a.Path,
		S3: archive.S3Config{
			Bucket:    a.S3.Bucket,
			Endpoint:  a.S3.Endpoint,
			Region:    a.S3.Region,
			AccessKey: a.S3.AccessKey,
			SecretKey: a.S3.SecretKey,
			Prefix:    a.S3.Prefix,
		},
	}
}

// NotifierConfigs returns the enabled notifiers as generic configs, sorted
// by name.
func (c *Config) NotifierConfigs() []notifier.Config {
	names := make([]string, 0, len(c.Notifiers))
	for name, n := range c.Notifiers {
		if n.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]notifier.Config, 0, len(names))
	for _, name := range names {
		n := c.Notifiers[name]
		params := map[string]any{}
		set := func(k, v string) {
			if v != "" {
				params[k] = v
			}
		}
		set("bot_token", n.BotToken)
		set("chat_id", n.ChatID)
		set("api_url", n.APIURL)
		set("url", n.URL)
		if len(n.Headers) > 0 {
			params["headers"] = n.Headers
		}
		out = append(out, notifier.Config{Type: name, Params: params})
	}
	return out
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Account.StartingBalance < 0 {
		return invalid("account starting_balance cannot be negative, got %f", c.Account.StartingBalance)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("storage path required for sqlite driver"))
		}
	default:
		return invalid("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case archive.BackendLocal:
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive path required for localfs"))
			}
		case archive.BackendS3:
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive s3 bucket required"))
			}
		default:
			return invalid("unknown archive type %q", c.Archive.Type)
		}
	}

	if err := c.validateRisk(); err != nil {
		return err
	}

	if err := c.PlaybookRubric().Validate(); err != nil {
		return err
	}

	if c.Kelly.MinSample < 0 {
		return invalid("kelly min_sample cannot be negative, got %d", c.Kelly.MinSample)
	}

	if c.Alerts.Enabled {
		if c.Alerts.CheckInterval <= 0 {
			return invalid("alerts check_interval must be positive, got %s", c.Alerts.CheckInterval)
		}
		switch risk.Status(c.Alerts.MinStatus) {
		case risk.StatusWarning, risk.StatusViolated:
		default:
			return invalid("alerts min_status must be warning or violated, got %q", c.Alerts.MinStatus)
		}
		for i := range c.Alerts.Rules {
			if err := c.Alerts.Rules[i].Validate(); err != nil {
				return err
			}
		}
	}

	for name, n := range c.Notifiers {
		if !n.Enabled {
			continue
		}
		switch name {
		case "telegram":
			if n.BotToken == "" || n.ChatID == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("telegram bot_token and chat_id required when enabled"))
			}
		case "webhook":
			if n.URL == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("webhook url required when enabled"))
			}
		default:
			return invalid("unknown notifier %q", name)
		}
	}

	return nil
}

func (c *Config) validateRisk() error {
	pcts := []struct {
		name string
		v    float64
	}{
		{"max_risk_per_trade_pct", c.Risk.MaxRiskPerTradePct},
		{"max_daily_risk_pct", c.Risk.MaxDailyRiskPct},
		{"max_weekly_risk_pct", c.Risk.MaxWeeklyRiskPct},
		{"max_monthly_risk_pct", c.Risk.MaxMonthlyRiskPct},
		{"max_drawdown_pct", c.Risk.MaxDrawdownPct},
	}
	for _, p := range pcts {
		if p.v < 0 || p.v > 100 {
			return invalid("risk %s must be between 0 and 100, got %f", p.name, p.v)
		}
	}
	if c.Risk.MaxConsecutiveLosses < 0 || c.Risk.MaxOpenPositions < 0 || c.Risk.MaxCorrelatedPositions < 0 {
		return invalid("risk position and streak limits cannot be negative")
	}
	if c.Risk.MinRewardRisk < 0 {
		return invalid("risk min_reward_risk cannot be negative, got %f", c.Risk.MinRewardRisk)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return core.WrapError(core.ErrConfigInvalid, fmt.Errorf(format, args...))
}
