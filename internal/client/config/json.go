package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nipa/healthsync/internal/flagx"
	"github.com/nipa/healthsync/internal/timex"
)

// EnvConfigFile names the variable consulted when no -c/-config flag is given.
const EnvConfigFile = "HEALTHSYNC_CONFIG"

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "15m" or integer nanoseconds.
type JsonConfig struct {
	GatewayAddr      string         `json:"gateway_addr"`
	AccessToken      string         `json:"access_token"`
	OwnerID          string         `json:"owner_id"`
	DatabasePath     string         `json:"database_path"`
	SyncInterval     timex.Duration `json:"sync_interval"`
	InitialBackoff   timex.Duration `json:"initial_backoff"`
	MaxBackoff       timex.Duration `json:"max_backoff"`
	ProbeInterval    timex.Duration `json:"probe_interval"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	BatteryThreshold *int           `json:"battery_threshold"`
	PowerSupplyDir   string         `json:"power_supply_dir"`
	LogLevel         string         `json:"log_level"`
	S3               struct {
		Region       string `json:"region"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		BaseEndpoint string `json:"base_endpoint"`
		Bucket       string `json:"bucket"`
	} `json:"s3"`
}

// parseJson overlays Config with the values present in the JSON file named by
// -c/-config or HEALTHSYNC_CONFIG. Absent keys keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag(EnvConfigFile)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.GatewayAddr, jc.GatewayAddr)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.OwnerID, jc.OwnerID)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.PowerSupplyDir, jc.PowerSupplyDir)
	setString(&cfg.LogLevel, jc.LogLevel)

	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.InitialBackoff, jc.InitialBackoff)
	setDuration(&cfg.MaxBackoff, jc.MaxBackoff)
	setDuration(&cfg.ProbeInterval, jc.ProbeInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)

	if jc.BatteryThreshold != nil {
		cfg.BatteryThreshold = *jc.BatteryThreshold
	}

	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.BaseEndpoint, jc.S3.BaseEndpoint)
	setString(&cfg.S3.Bucket, jc.S3.Bucket)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
