package config

import (
	"encoding/json"
	"os"

	"github.com/nipa/healthsync/internal/flagx"
	"github.com/nipa/healthsync/internal/timex"
)

// EnvConfigFile names the variable consulted when no -c/-config flag is given.
const EnvConfigFile = "HEALTHSYNC_GATEWAY_CONFIG"

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for the token validity, which allows parsing both
// string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its non-empty fields are copied into Config.
type JsonConfig struct {
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	LogLevel              string         `json:"log_level"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	The HEALTHSYNC_GATEWAY_CONFIG environment variable.
//	If neither is set, no JSON file is loaded.
//
// Only non-empty values overwrite config, so a partial file keeps the
// defaults for everything it omits. If the file cannot be read or contains
// invalid JSON, the function panics.
//
// Fields populated:
//   - EndpointAddrGRPC, DatabaseDSN, SecretKey
//   - TokenValidityDuration
//   - LogLevel
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFileFlag(EnvConfigFile)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
