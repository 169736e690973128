// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MinRadiusKm = 5
	MaxRadiusKm = 50

	defaultConfigPath = "configs/config.yaml"
)

type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Adapters  AdaptersConfig  `yaml:"adapters"`
	Browser   BrowserConfig   `yaml:"browser"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Broker    BrokerConfig    `yaml:"broker"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Schedules []ScheduleEntry `yaml:"schedules"`
	//Paths
	OutputPath string `yaml:"output_path"`
}

type SearchConfig struct {
	RadiusKm        int           `yaml:"radius_km"`
	MaxPages        int           `yaml:"max_pages"`
	ScrollPasses    int           `yaml:"scroll_passes"`
	FetchRetries    int           `yaml:"fetch_retries"`
	FallbackAddress string        `yaml:"fallback_address"`
	Country         string        `yaml:"country"`
	AdapterTimeout  time.Duration `yaml:"adapter_timeout"`
}

// AdaptersConfig restricts which registered sites run, by name. Empty means all.
type AdaptersConfig struct {
	Jobs           []string `yaml:"jobs"`
	Accommodations []string `yaml:"accommodations"`
}

type BrowserConfig struct {
	Headless    bool          `yaml:"headless"`
	Timeout     time.Duration `yaml:"timeout"`
	InitialWait time.Duration `yaml:"initial_wait"`
	ScrollWait  time.Duration `yaml:"scroll_wait"`
	UserAgent   string        `yaml:"user_agent"`
	CookiesPath string        `yaml:"cookies_path"`
	Screenshots string        `yaml:"screenshots_path"`
}

type GeocoderConfig struct {
	URL        string        `yaml:"url"`
	UserAgent  string        `yaml:"user_agent"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

type StoreConfig struct {
	// Driver is one of postgres, sqlite, mongo, memory.
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	MongoURL    string `yaml:"mongo_url"`
	MongoDB     string `yaml:"mongo_db"`
}

type RedisConfig struct {
	URL     string        `yaml:"url"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

type BrokerConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type TelegramConfig struct {
	Token       string `yaml:"token"`
	ChatID      int64  `yaml:"chat_id"`
	NotifyLimit int    `yaml:"notify_limit"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	FluentHost string `yaml:"fluent_host"`
	FluentPort int    `yaml:"fluent_port"`
}

type HTTPConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ScheduleEntry is a saved search re-run on a cron spec.
type ScheduleEntry struct {
	Spec      string `yaml:"spec"`
	Address   string `yaml:"address"`
	RadiusKm  int    `yaml:"radius_km"`
	Category  string `yaml:"category"`
	Keyword   string `yaml:"keyword"`
	CustomURL string `yaml:"custom_url"`
}

// Load reads .env, then the YAML file named by LOCATOR_CONFIG
// (configs/config.yaml by default), then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("LOCATOR_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

// LoadFile is Load without .env handling. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Browser.Headless = true

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	setString(&c.Store.MongoURL, "MONGO_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Broker.URL, "AMQP_URL")
	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.FluentHost, "FLUENT_HOST")
	setString(&c.HTTP.Port, "PORT")
	setString(&c.Geocoder.URL, "NOMINATIM_URL")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if port := os.Getenv("FLUENT_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid FLUENT_PORT: %w", err)
		}
		c.Log.FluentPort = p
	}
	return nil
}

func (c *Config) applyDefaults() {
	s := &c.Search
	if s.RadiusKm == 0 {
		s.RadiusKm = 10
	}
	s.RadiusKm = ClampRadius(s.RadiusKm)
	if s.MaxPages <= 0 {
		s.MaxPages = 20
	}
	if s.ScrollPasses <= 0 {
		s.ScrollPasses = 2
	}
	if s.FetchRetries < 0 {
		s.FetchRetries = 0
	}
	if s.FallbackAddress == "" {
		s.FallbackAddress = "Sydney NSW"
	}
	if s.Country == "" {
		s.Country = "Australia"
	}
	if s.AdapterTimeout == 0 {
		s.AdapterTimeout = 5 * time.Minute
	}

	b := &c.Browser
	if b.Timeout == 0 {
		b.Timeout = 30 * time.Second
	}
	if b.InitialWait == 0 {
		b.InitialWait = 5 * time.Second
	}
	if b.ScrollWait == 0 {
		b.ScrollWait = 3 * time.Second
	}
	if b.UserAgent == "" {
		b.UserAgent = "LocatorApp/1.0"
	}
	if b.CookiesPath == "" {
		b.CookiesPath = ".cookies"
	}
	if b.Screenshots == "" {
		b.Screenshots = "logs/screenshots"
	}

	g := &c.Geocoder
	if g.URL == "" {
		g.URL = "https://nominatim.openstreetmap.org/search"
	}
	if g.UserAgent == "" {
		g.UserAgent = "locator_app"
	}
	if g.RatePerSec <= 0 {
		g.RatePerSec = 1
	}
	if g.CacheTTL == 0 {
		g.CacheTTL = 7 * 24 * time.Hour
	}

	if c.Store.Driver == "" {
		if c.Store.DatabaseURL != "" {
			c.Store.Driver = "postgres"
		} else {
			c.Store.Driver = "sqlite"
		}
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "locator.db"
	}
	if c.Store.MongoDB == "" {
		c.Store.MongoDB = "locator"
	}
	if c.Redis.LockTTL == 0 {
		c.Redis.LockTTL = 2 * time.Hour
	}
	if c.Broker.Exchange == "" {
		c.Broker.Exchange = "locator.listings"
	}
	if c.Telegram.NotifyLimit == 0 {
		c.Telegram.NotifyLimit = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.FluentPort == 0 {
		c.Log.FluentPort = 24224
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.OutputPath == "" {
		c.OutputPath = "logs"
	}
}

// ClampRadius bounds a search radius to the supported 5–50 km window.
func ClampRadius(km int) int {
	if km < MinRadiusKm {
		return MinRadiusKm
	}
	if km > MaxRadiusKm {
		return MaxRadiusKm
	}
	return km
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
