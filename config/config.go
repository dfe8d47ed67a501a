// Package config loads the vestingd node configuration from YAML.
package config

import (
	"bytes"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/blockberries/vesting/types"
)

// Log formats.
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
)

// Config is the node configuration.
type Config struct {
	// Listen is the gRPC address the verifier serves on.
	Listen string `yaml:"listen"`
	// MetricsListen is the address of the Prometheus endpoint.
	// Empty disables metrics.
	MetricsListen string `yaml:"metrics_listen"`
	Log           Log    `yaml:"log"`
	// Workers bounds the goroutines verifying one block.
	Workers int `yaml:"workers"`

	// Chain parameters used when genesis does not carry them.
	ChainID         string `yaml:"chain_id"`
	VestingCodeHash string `yaml:"vesting_code_hash"`
	MaxTxBytes      uint64 `yaml:"max_tx_bytes"`
	MaxCells        uint32 `yaml:"max_cells"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Color  bool   `yaml:"color"`
}

// Default returns the configuration used for unset fields.
func Default() Config {
	return Config{
		Listen: "127.0.0.1:26658",
		Log: Log{
			Level:  "info",
			Format: FormatTerminal,
		},
		Workers:    runtime.NumCPU(),
		MaxTxBytes: 64 * 1024,
		MaxCells:   64,
	}
}

// Load reads the file at path over the defaults and validates the
// result. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen is required")
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case FormatTerminal, FormatJSON:
	default:
		return errors.Errorf("log.format must be %q or %q, got %q", FormatTerminal, FormatJSON, c.Log.Format)
	}
	if _, err := c.codeHash(); err != nil {
		return err
	}
	return nil
}

// Params returns the verifier parameters the configuration carries.
func (c Config) Params() (types.VerifierParams, error) {
	h, err := c.codeHash()
	if err != nil {
		return types.VerifierParams{}, err
	}
	return types.VerifierParams{
		VestingCodeHash: h,
		MaxTxBytes:      c.MaxTxBytes,
		MaxCells:        c.MaxCells,
	}, nil
}

func (c Config) codeHash() (types.Hash, error) {
	var h types.Hash
	if c.VestingCodeHash == "" {
		return h, nil
	}
	b, err := hexutil.Decode(c.VestingCodeHash)
	if err != nil {
		return h, errors.Wrap(err, "vesting_code_hash")
	}
	if len(b) != len(h) {
		return h, errors.Errorf("vesting_code_hash is %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// SlogLevel maps the configured level name onto a logger level.
func (l Log) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "", "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	return 0, errors.Errorf("unknown log level %q", l.Level)
}
