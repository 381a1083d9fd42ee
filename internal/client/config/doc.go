// Package config loads runtime configuration for the sync daemon.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or HEALTHSYNC_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-g string     address:port of the document gateway
//	-t string     access token
//	-o string     owner id (user or provider)
//	-d string     local cache database path
//	-i duration   periodic sync interval
//	-b duration   initial retry backoff
//	-m duration   maximum retry backoff
//	-p duration   connectivity probe interval
//	-r duration   remote call timeout
//	-l int        low battery threshold (percent)
//	-v string     log level
//
// # JSON schema
//
//	{
//	  "gateway_addr": "127.0.0.1:50051",
//	  "owner_id": "provider-7",
//	  "sync_interval": "15m",
//	  "max_backoff": "5h",
//	  "battery_threshold": 20,
//	  "s3": {"bucket": "attachments", "base_endpoint": "http://127.0.0.1:9000"}
//	}
//
// S3 settings and the power supply directory are JSON only.
package config
