package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/jsternberg/zap-logfmt"
	"github.com/prometheus/client_golang/prometheus"
	ver "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/config"
)

const appName = "dp-query-cli"

// Version is set via build flag -ldflags -X main.Version.
var (
	Version  string
	Branch   string
	Revision string
)

func init() {
	version.Version = Version
	version.Branch = Branch
	version.Revision = Revision
	prometheus.MustRegister(ver.NewCollector(appName))
}

// globalOptions carries state every subcommand's Run needs: the loaded
// config and a logger, following the kong convention of a
// context object threaded through Run(ctx) methods.
type globalOptions struct {
	cfg    *config.Config
	logger *zap.Logger
}

// cli is the kong command tree root.
var cli struct {
	ConfigFile string `name:"config.file" help:"Configuration file to load."`
	ExpandEnv  bool   `name:"config.expand-env" help:"Expand environment variables in the config file."`
	DebugAddr  string `name:"debug.addr" help:"If set, serve /debug/version and /debug/config on this address."`

	Query  queryCmd  `cmd:"" help:"Decompose, recover and assemble one request against a query endpoint."`
	Score  scoreCmd  `cmd:"" help:"Replay a batch of requests against an endpoint and print a scoring summary."`
	Config configCmd `cmd:"" help:"Print an example configuration or verify one."`
}

func newLogger(level string) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	lvl := zapcore.InfoLevel
	_ = lvl.UnmarshalText([]byte(level))
	return zap.New(zapcore.NewCore(zaplogfmt.NewEncoder(encCfg), os.Stdout, lvl))
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("Test harness for the data-platform query recovery library."),
	)

	// kong owns CLI-flag parsing for this binary, so config loading only
	// overlays the YAML file (if any) and environment variables — see
	// config.LoadFile's doc comment.
	cfg, err := config.LoadFile(cli.ConfigFile, cli.ExpandEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed parsing config: %v\n", err)
		os.Exit(exitConfigError)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync() //nolint:errcheck

	if warnings := cfg.CheckConfig(); len(warnings) > 0 {
		for _, w := range warnings {
			logger.Warn("configuration warning", zap.String("field", w.Field), zap.String("message", w.Message))
		}
	}

	// Validity is not enforced here: `config verify` must be able to
	// report on an invalid configuration rather than have main() bail
	// out before it runs. query/score check cfg.Validate() themselves.
	opts := &globalOptions{cfg: cfg, logger: logger}
	serveDebug(cli.DebugAddr, opts)

	if err := ctx.Run(opts); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(exitCodeFor(err))
	}
}
