package config

import (
	"flag"
	"io"

	"github.com/Extra154/spectra-data-server/internal/flagx"
)

// parseFlags overlays command-line flags on cfg.
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-m string     store driver: postgres or memory
//	-d string     PostgreSQL DSN
//	-t duration   story TTL (e.g. "24h")
//	-w duration   story sweep interval, 0 disables
//	-r duration   per-request timeout, 0 disables
//	-l int        pull page cap, 0 means unlimited
//	-v string     log level
//
// Arguments are first filtered with flagx.FilterArgs so -c/-config and
// unknown flags do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-d", "-t", "-w", "-r", "-l", "-v"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&cfg.StoreDriver, "m", cfg.StoreDriver, "store driver (postgres|memory)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.DurationVar(&cfg.StoryTTL, "t", cfg.StoryTTL, "story time to live")
	fs.DurationVar(&cfg.StorySweepInterval, "w", cfg.StorySweepInterval, "story sweep interval (0 disables)")
	fs.DurationVar(&cfg.RequestTimeout, "r", cfg.RequestTimeout, "per-request timeout (0 disables)")
	fs.IntVar(&cfg.PullLimit, "l", cfg.PullLimit, "max records per pull (0 = unlimited)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug|info|warn|error)")

	return fs.Parse(args)
}
