package config

import "time"

// S3Config selects the attachment bucket. An empty Bucket disables uploads.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// Config holds runtime settings for the sync daemon.
//
// Durations are time.Duration values; BatteryThreshold is a percentage.
type Config struct {
	GatewayAddr      string
	AccessToken      string
	OwnerID          string
	DatabasePath     string
	SyncInterval     time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	ProbeInterval    time.Duration
	RequestTimeout   time.Duration
	BatteryThreshold int
	PowerSupplyDir   string
	LogLevel         string
	S3               S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.GatewayAddr = "127.0.0.1:50051"
	c.DatabasePath = "healthsync.db"
	c.SyncInterval = 15 * time.Minute
	c.InitialBackoff = 15 * time.Minute
	c.MaxBackoff = 5 * time.Hour
	c.ProbeInterval = 30 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.BatteryThreshold = 15
	c.PowerSupplyDir = "/sys/class/power_supply"
	c.LogLevel = "info"
	c.S3.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
