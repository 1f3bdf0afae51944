package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rahib777-7/ore-ui/pkg/facet"
	"github.com/Rahib777-7/ore-ui/pkg/metrics"
	"github.com/Rahib777-7/ore-ui/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		readTimeout time.Duration
		namespace   string
		declare     []string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ingestion endpoint and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			reg := facet.NewRegistry(facet.WithLogger(logger))
			// Pre-declared identifiers accept backend writes immediately;
			// anything else is tolerated and dropped until a host defines it.
			for _, name := range declare {
				reg.Declare(name)
				logger.Debug("declared facet", "facet", name)
			}

			config := server.DefaultConfig()
			config.Addr = addr
			config.Logger = logger
			config.Channel.ReadTimeout = readTimeout
			config.Channel.Metrics = metrics.New(metrics.WithNamespace(namespace))

			srv := server.New(reg, config)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8371", "listen address")
	cmd.Flags().DurationVar(&readTimeout, "read-timeout", 60*time.Second, "backend read deadline")
	cmd.Flags().StringVar(&namespace, "metrics-namespace", "oreui", "Prometheus metrics namespace")
	cmd.Flags().StringSliceVar(&declare, "declare", nil, "facet identifiers to declare at startup (repeatable)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}
