package cli

import (
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/log"

	"github.com/blockberries/vesting/config"
)

// SetupLogging installs the root logger described by cfg.
func SetupLogging(w io.Writer, cfg config.Log) error {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	var h slog.Handler
	if cfg.Format == config.FormatJSON {
		h = log.JSONHandlerWithLevel(w, lvl)
	} else {
		h = log.NewTerminalHandlerWithLevel(w, lvl, cfg.Color)
	}
	log.SetDefault(log.NewLogger(h))
	return nil
}
