package cli

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/blockberries/vesting/app"
	"github.com/blockberries/vesting/config"
	vestinggrpc "github.com/blockberries/vesting/grpc"
	"github.com/blockberries/vesting/metrics"
)

var logger = log.New("pkg", "cli")

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
	Listen     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the verifier to a consensus engine over gRPC",
		Long: `Serve the vesting verifier over gRPC until interrupted.

The engine drives the lifecycle: it performs the handshake, then
executes and commits blocks. Chain parameters in the configuration
apply until a genesis handshake supplies its own.

Examples:
  vestingd serve --config vestingd.yaml
  vestingd serve --listen 127.0.0.1:26658`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if err := SetupLogging(cmd.ErrOrStderr(), cfg.Log); err != nil {
				return WrapExitError(ExitCommandError, "set up logging", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg); err != nil {
				return WrapExitError(ExitCommandError, "serve", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML configuration")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "gRPC listen address (overrides the configuration)")

	return cmd
}

func loadServeConfig(cmd *cobra.Command, opts *ServeOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = opts.Listen
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// serve runs the verifier until ctx is done.
func serve(ctx context.Context, cfg config.Config) error {
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	if cfg.MetricsListen != "" {
		metrics.InitializePrometheusMetrics()
		msrv := &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics", "addr", cfg.MetricsListen)
			if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", "err", err)
			}
		}()
		defer msrv.Close()
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Listen)
	}

	gs := vestinggrpc.NewGRPCServer(app.New(app.Options{
		Params:  params,
		Workers: cfg.Workers,
		ChainID: cfg.ChainID,
	}))
	errc := make(chan error, 1)
	go func() { errc <- gs.Serve(lis) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		gs.Stop()
		if err := <-errc; !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	return mux
}
