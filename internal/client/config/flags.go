package config

import (
	"flag"
	"os"

	"github.com/nipa/healthsync/internal/flagx"
)

var knownFlags = []string{"-g", "-t", "-o", "-d", "-i", "-b", "-m", "-p", "-r", "-l", "-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-g string     gateway address (e.g., "127.0.0.1:50051")
//	-t string     access token
//	-o string     owner id (user id for notifications, provider id for history)
//	-d string     path of the SQLite cache file
//	-i duration   periodic sync interval (e.g., "15m")
//	-b duration   first retry delay after a transient failure
//	-m duration   retry delay cap (e.g., "5h")
//	-p duration   connectivity probe interval
//	-r duration   per-request timeout
//	-l int        battery percentage below which periodic sync pauses
//	-v string     log level
//
// Notes:
//   - Only the flags listed in knownFlags are parsed; the config file flag
//     (-c/-config) is handled by parseJson.
//   - Durations use time.ParseDuration syntax, unlike the JSON file where
//     timex.Duration also accepts plain nanosecond numbers.
//   - A malformed value panics.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GatewayAddr, "g", cfg.GatewayAddr, "address and port of the document gateway")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token sent with every request")
	fs.StringVar(&cfg.OwnerID, "o", cfg.OwnerID, "id of the signed-in user or provider")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local cache database")
	fs.DurationVar(&cfg.SyncInterval, "i", cfg.SyncInterval, "periodic sync interval")
	fs.DurationVar(&cfg.InitialBackoff, "b", cfg.InitialBackoff, "first retry delay after a failed sync")
	fs.DurationVar(&cfg.MaxBackoff, "m", cfg.MaxBackoff, "upper bound for the retry delay")
	fs.DurationVar(&cfg.ProbeInterval, "p", cfg.ProbeInterval, "connectivity probe interval")
	fs.DurationVar(&cfg.RequestTimeout, "r", cfg.RequestTimeout, "timeout of a single remote call")
	fs.IntVar(&cfg.BatteryThreshold, "l", cfg.BatteryThreshold, "battery percentage below which periodic sync pauses")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
