package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bidmonitor/internal/models"
)

var ErrMissingCredentials = errors.New("missing required store credentials")

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Store    StoreConfig    `mapstructure:"store"`
	Superbid SuperbidConfig `mapstructure:"superbid"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Cron     CronConfig     `mapstructure:"cron"`
	RunLog   RunLogConfig   `mapstructure:"run_log"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// StoreConfig locates the auctions schema. URL is a Postgres connection URL and
// Key the access key (database password) that goes with it.
type StoreConfig struct {
	URL            string            `mapstructure:"url"`
	Key            string            `mapstructure:"key"`
	Schema         string            `mapstructure:"schema"`
	ReferenceView  string            `mapstructure:"reference_view"`
	HistoryTable   string            `mapstructure:"history_table"`
	RunTable       string            `mapstructure:"run_table"`
	CategoryTables map[string]string `mapstructure:"category_tables"`
}

type SuperbidConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	SiteURL       string        `mapstructure:"site_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PageSize      int           `mapstructure:"page_size"`
	Locale        string        `mapstructure:"locale"`
	OrderBy       string        `mapstructure:"order_by"`
	PortalID      string        `mapstructure:"portal_id"`
	RequestOrigin string        `mapstructure:"request_origin"`
	SearchType    string        `mapstructure:"search_type"`
	TimeZoneID    string        `mapstructure:"time_zone_id"`
	UserAgent     string        `mapstructure:"user_agent"`
}

type MonitorConfig struct {
	Source            string   `mapstructure:"source"`
	ReferencePageSize int      `mapstructure:"reference_page_size"`
	Categories        []string `mapstructure:"categories"`
}

type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type RunLogConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads defaults, the optional YAML file at path and the environment.
// A missing file is not an error; missing credentials are (see Validate).
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BIDMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	// SUPABASE_URL and SUPABASE_KEY are accepted as fallbacks.
	if err := v.BindEnv("store.url", "BIDMON_STORE_URL", "SUPABASE_URL"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("store.key", "BIDMON_STORE_KEY", "SUPABASE_KEY"); err != nil {
		return Config{}, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Monitor.Categories = splitList(cfg.Monitor.Categories)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)
	v.SetDefault("db.max_open_conns", 4)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.connect_timeout", "10s")
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("store.url", "")
	v.SetDefault("store.key", "")
	v.SetDefault("store.schema", "auctions")
	v.SetDefault("store.reference_view", "vw_auctions_unified")
	v.SetDefault("store.history_table", "auction_bid_history")
	v.SetDefault("store.run_table", "bid_monitor_runs")
	v.SetDefault("superbid.base_url", "https://offer-query.superbid.net")
	v.SetDefault("superbid.site_url", "https://exchange.superbid.net")
	v.SetDefault("superbid.timeout", "30s")
	v.SetDefault("superbid.page_size", 100)
	v.SetDefault("superbid.locale", "pt_BR")
	v.SetDefault("superbid.order_by", "score:desc")
	v.SetDefault("superbid.portal_id", "[2,15]")
	v.SetDefault("superbid.request_origin", "marketplace")
	v.SetDefault("superbid.search_type", "openedAll")
	v.SetDefault("superbid.time_zone_id", "America/Sao_Paulo")
	v.SetDefault("superbid.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("monitor.source", "superbid")
	v.SetDefault("monitor.reference_page_size", 1000)
	v.SetDefault("monitor.categories", models.CategorySlugs())
	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.schedule", "@every 30m")
	v.SetDefault("run_log.enabled", false)
}

// Validate checks the settings a run cannot start without.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Store.URL) == "" {
		missing = append(missing, "store.url (BIDMON_STORE_URL or SUPABASE_URL)")
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		missing = append(missing, "store.key (BIDMON_STORE_KEY or SUPABASE_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if len(c.Monitor.Categories) == 0 {
		return errors.New("monitor.categories is empty")
	}
	for _, raw := range c.Monitor.Categories {
		if _, ok := models.ParseCategory(raw); !ok {
			return fmt.Errorf("unknown category in monitor.categories: %q", raw)
		}
	}
	for raw, table := range c.Store.CategoryTables {
		if _, ok := models.ParseCategory(raw); !ok {
			return fmt.Errorf("unknown category in store.category_tables: %q", raw)
		}
		if strings.TrimSpace(table) == "" {
			return fmt.Errorf("empty table for category %q in store.category_tables", raw)
		}
	}
	if strings.TrimSpace(c.Monitor.Source) == "" {
		return errors.New("monitor.source is empty")
	}
	return nil
}

// Categories returns the configured categories as allow-listed values.
// Validate has already rejected unknown slugs.
func (c Config) Categories() []models.Category {
	out := make([]models.Category, 0, len(c.Monitor.Categories))
	for _, raw := range c.Monitor.Categories {
		if cat, ok := models.ParseCategory(raw); ok {
			out = append(out, cat)
		}
	}
	return out
}

// splitList accepts both a YAML list and a single comma separated env value.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
