// Package config implements the configuration/override facility (C10,
// §6 "Configuration"): a YAML-described tree of records, flag defaults,
// and a three-tier override precedence of (1) CLI flag / system
// property, (2) environment variable, (3) YAML file value.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/drone/envsubst"
	"github.com/grafana/dskit/flagext"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
)

// EnvPrefix is the ALL_CAPS root prefix override keys are joined under
// (§6 "Override keys use an ALL_CAPS root prefix ... joined with path
// elements by _").
const EnvPrefix = "DP_API"

// Config is the root configuration record for the query-recovery
// library and its CLI harness.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Buffer    BufferConfig    `yaml:"buffer"`
	Assembler AssemblerConfig `yaml:"assembler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Scoring   ScoringConfig   `yaml:"scoring"`
}

// TransportConfig tunes the gRPC-style transport and the recovery
// channel's retry/breaker policy (§4.2).
type TransportConfig struct {
	Endpoint             string        `yaml:"endpoint"`
	CallTimeout          time.Duration `yaml:"call_timeout"`
	MaxRetries           int           `yaml:"max_retries"`
	MaxConcurrentStreams int           `yaml:"max_concurrent_streams"`
	BreakerFailThreshold int           `yaml:"breaker_fail_threshold"`
}

// BufferConfig tunes the message buffer (§4.3).
type BufferConfig struct {
	Capacity int `yaml:"capacity"`
}

// AssemblerConfig tunes the aggregate assembler (§4.7).
type AssemblerConfig struct {
	StrictOrdering  bool `yaml:"strict_ordering"`
	TolerantDefault bool `yaml:"tolerant_default"`
}

// LoggingConfig tunes the CLI harness's zap logger (ambient stack).
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ScoringConfig tunes the performance-scoring summaries (§4.8).
type ScoringConfig struct {
	ThresholdMBps float64 `yaml:"threshold_mbps"`
}

// RegisterFlagsAndApplyDefaults registers every leaf's CLI flag and
// sets its default value.
func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&c.Transport.Endpoint, prefix+"transport.endpoint", "localhost:50051", "Query service gRPC endpoint.")
	f.DurationVar(&c.Transport.CallTimeout, prefix+"transport.call-timeout", 30*time.Second, "Per sub-request call timeout.")
	f.IntVar(&c.Transport.MaxRetries, prefix+"transport.max-retries", 2, "Per sub-request retry attempts on a transient transport error.")
	f.IntVar(&c.Transport.MaxConcurrentStreams, prefix+"transport.max-concurrent-streams", 8, "Bound on concurrently in-flight sub-request streams.")
	f.IntVar(&c.Transport.BreakerFailThreshold, prefix+"transport.breaker-fail-threshold", 5, "Consecutive failures before the circuit breaker opens.")

	f.IntVar(&c.Buffer.Capacity, prefix+"buffer.capacity", 256, "Message buffer bounded queue size.")

	f.BoolVar(&c.Assembler.StrictOrdering, prefix+"assembler.strict-ordering", false, "Promote OrderingViolation/DomainCollision to fatal instead of fusing.")
	f.BoolVar(&c.Assembler.TolerantDefault, prefix+"assembler.tolerant-default", false, "Default ToleratePartial for requests that don't specify it.")

	f.StringVar(&c.Logging.Level, prefix+"log.level", "info", "Logging level: debug, info, warn, error.")

	f.Float64Var(&c.Scoring.ThresholdMBps, prefix+"scoring.threshold-mbps", 1.0, "Data rate (MB/s) counted as a scoring 'hit'.")
}

// descriptor names one leaf's YAML path, for env-var binding.
type descriptor struct {
	yamlPath string
	bind     func(v *viper.Viper, c *Config)
}

// descriptors is the manually-maintained leaf table driving the
// environment-variable override tier (Design Note 4's alternative to
// reflection-walking the struct: "a manually-maintained descriptor
// table").
var descriptors = []descriptor{
	{"transport.endpoint", func(v *viper.Viper, c *Config) {
		if v.IsSet("transport.endpoint") {
			c.Transport.Endpoint = v.GetString("transport.endpoint")
		}
	}},
	{"transport.call_timeout", func(v *viper.Viper, c *Config) {
		if v.IsSet("transport.call_timeout") {
			c.Transport.CallTimeout = v.GetDuration("transport.call_timeout")
		}
	}},
	{"transport.max_retries", func(v *viper.Viper, c *Config) {
		if v.IsSet("transport.max_retries") {
			c.Transport.MaxRetries = v.GetInt("transport.max_retries")
		}
	}},
	{"transport.max_concurrent_streams", func(v *viper.Viper, c *Config) {
		if v.IsSet("transport.max_concurrent_streams") {
			c.Transport.MaxConcurrentStreams = v.GetInt("transport.max_concurrent_streams")
		}
	}},
	{"buffer.capacity", func(v *viper.Viper, c *Config) {
		if v.IsSet("buffer.capacity") {
			c.Buffer.Capacity = v.GetInt("buffer.capacity")
		}
	}},
	{"assembler.strict_ordering", func(v *viper.Viper, c *Config) {
		if v.IsSet("assembler.strict_ordering") {
			c.Assembler.StrictOrdering = v.GetBool("assembler.strict_ordering")
		}
	}},
	{"logging.level", func(v *viper.Viper, c *Config) {
		if v.IsSet("logging.level") {
			c.Logging.Level = v.GetString("logging.level")
		}
	}},
	{"scoring.threshold_mbps", func(v *viper.Viper, c *Config) {
		if v.IsSet("scoring.threshold_mbps") {
			c.Scoring.ThresholdMBps = v.GetFloat64("scoring.threshold_mbps")
		}
	}},
}

// applyEnvOverrides is the environment-variable tier (§6 precedence
// step 2), modeled on cmd/tempo-query/tempo/config.go's InitFromViper:
// bind every descriptor's YAML path to its ALL_CAPS env var and copy
// any that are set over the YAML-loaded value.
func applyEnvOverrides(c *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, d := range descriptors {
		_ = v.BindEnv(d.yamlPath)
		d.bind(v, c)
	}
}

const (
	configFileOption      = "config.file"
	configExpandEnvOption = "config.expand-env"
	configVerifyOption    = "config.verify"
)

// scanMetaFlags extracts the three config.* meta-flags from args before
// the rest of the flag set is registered: parsing stops at the first
// unrecognized flag, so it re-tries with the slice shifted by one until
// the meta-flags are found or args run out.
func scanMetaFlags(args []string) (file string, expandEnv bool, verify bool) {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&file, configFileOption, "", "")
	fs.BoolVar(&expandEnv, configExpandEnvOption, false, "")
	fs.BoolVar(&verify, configVerifyOption, false, "")

	for len(args) > 0 {
		_ = fs.Parse(args)
		args = args[1:]
	}
	return file, expandEnv, verify
}

// Load builds a Config by registering flag defaults, overlaying a YAML
// file if -config.file names one, overlaying environment variables,
// then re-parsing flags so a flag explicitly passed on the command line
// wins over everything (§6 precedence: system property/flag > env var >
// YAML). verify reports whether -config.verify was passed.
func Load(args []string) (cfg *Config, verify bool, err error) {
	cfg = &Config{}
	cfg.RegisterFlagsAndApplyDefaults("", flag.CommandLine)

	configFile, configExpandEnv, configVerify := scanMetaFlags(args[1:])
	if err := overlayFileAndEnv(cfg, configFile, configExpandEnv); err != nil {
		return nil, false, err
	}

	flagext.IgnoredFlag(flag.CommandLine, configFileOption, "Configuration file to load")
	flagext.IgnoredFlag(flag.CommandLine, configExpandEnvOption, "Whether to expand environment variables in config file")
	flagext.IgnoredFlag(flag.CommandLine, configVerifyOption, "Verify configuration and exit")
	if err := flag.CommandLine.Parse(args[1:]); err != nil {
		return nil, false, dperrors.Wrap(dperrors.KindConfigError, "parsing command-line flags", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, configVerify, err
	}
	return cfg, configVerify, nil
}

// LoadFile builds a Config from its flag defaults, an optional YAML
// file, and environment-variable overrides, skipping the CLI-flag tier
// entirely — for host programs (like the kong-based dp-query-cli) that
// own CLI-flag parsing themselves and only want the YAML/env tiers.
func LoadFile(file string, expandEnv bool) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	cfg.RegisterFlagsAndApplyDefaults("", fs)
	if err := overlayFileAndEnv(cfg, file, expandEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayFileAndEnv(cfg *Config, file string, expandEnv bool) error {
	if file != "" {
		buf, readErr := os.ReadFile(file)
		if readErr != nil {
			return dperrors.Wrap(dperrors.KindConfigError, fmt.Sprintf("reading config file %s", file), readErr)
		}
		if expandEnv {
			expanded, evalErr := envsubst.EvalEnv(string(buf))
			if evalErr != nil {
				return dperrors.Wrap(dperrors.KindConfigError, fmt.Sprintf("expanding env vars in %s", file), evalErr)
			}
			buf = []byte(expanded)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return dperrors.Wrap(dperrors.KindConfigError, fmt.Sprintf("parsing config file %s", file), err)
		}
	}
	applyEnvOverrides(cfg)
	return nil
}

// Validate collects all null-valued required fields and reports them
// (§6 "On load, validation collects all null-valued required fields and
// reports them").
func (c *Config) Validate() error {
	var missing []string
	if c.Transport.Endpoint == "" {
		missing = append(missing, "transport.endpoint")
	}
	if len(missing) > 0 {
		return dperrors.Newf(dperrors.KindConfigError, "missing required config fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ConfigWarning names a non-fatal configuration concern surfaced by
// CheckConfig.
type ConfigWarning struct {
	Field   string
	Message string
}

func (w ConfigWarning) String() string { return fmt.Sprintf("%s: %s", w.Field, w.Message) }

// CheckConfig checks the loaded config for suspect-but-not-invalid
// values and returns a bundled list of warnings.
func (c *Config) CheckConfig() []ConfigWarning {
	var warnings []ConfigWarning
	if c.Transport.MaxConcurrentStreams < 1 {
		warnings = append(warnings, ConfigWarning{"transport.max_concurrent_streams", "must be >= 1; recovery would deadlock"})
	}
	if c.Buffer.Capacity < 1 {
		warnings = append(warnings, ConfigWarning{"buffer.capacity", "must be >= 1; every offer would block forever"})
	}
	if c.Transport.CallTimeout <= 0 {
		warnings = append(warnings, ConfigWarning{"transport.call-timeout", "non-positive timeout disables per-call deadlines"})
	}
	return warnings
}

// ExampleYAML renders an example configuration holding every default,
// for the CLI's `config example` subcommand.
func ExampleYAML() (string, error) {
	c := &Config{}
	fs := flag.NewFlagSet("", flag.PanicOnError)
	c.RegisterFlagsAndApplyDefaults("", fs)
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", dperrors.Wrap(dperrors.KindConfigError, "marshalling example config", err)
	}
	return string(out), nil
}
