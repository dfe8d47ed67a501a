package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/vesting/config"
)

func TestLoadServeConfigDefaults(t *testing.T) {
	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}}
	cmd := NewServeCommand(opts.RootOptions)

	cfg, err := loadServeConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadServeConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vestingd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 127.0.0.1:9000\nchain_id: vesting-test\n"), 0644))

	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewServeCommand(rootOpts)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--listen", "127.0.0.1:9100"}))
	opts := &ServeOptions{RootOptions: rootOpts, ConfigPath: path, Listen: "127.0.0.1:9100"}

	cfg, err := loadServeConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Listen)
	assert.Equal(t, "vesting-test", cfg.ChainID)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadServeConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vestingd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0644))

	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}, ConfigPath: path}
	cmd := NewServeCommand(opts.RootOptions)

	_, err := loadServeConfig(cmd, opts)
	require.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeBadListenAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = "not an address"

	err := serve(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
