package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rimgik/clipper/internal/config"
	"github.com/rimgik/clipper/internal/debuglog"
	"github.com/rimgik/clipper/internal/hub"
	"github.com/rimgik/clipper/internal/metrics"
	"github.com/rimgik/clipper/internal/pprofutil"
	"github.com/rimgik/clipper/internal/transport"
)

const metricsFlushInterval = 30 * time.Second

func newHubCmd(cfg *viper.Viper) *cobra.Command {
	var (
		addr        string
		kind        string
		metricsPath string
	)

	hubCmd := &cobra.Command{
		Use:   "hub",
		Short: "Run the relay every peer connects to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHub(cmd, addr, kind, metricsPath)
		},
	}

	hubCmd.Flags().StringVar(&addr, "addr", cfg.GetString(config.KeyListenAddr), "address to listen on")
	hubCmd.Flags().StringVar(&kind, "transport", cfg.GetString(config.KeyTransport), "transport to listen on (tcp or quic)")
	hubCmd.Flags().StringVar(&metricsPath, "metrics-path", cfg.GetString(config.KeyMetricsPath), "file to periodically write a metrics snapshot to")
	return hubCmd
}

func runHub(cmd *cobra.Command, addr, kind, metricsPath string) error {
	if err := pprofutil.StartFromEnv(cmd.ErrOrStderr()); err != nil {
		return err
	}

	l, err := transport.Listen(kind, addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	m := metrics.New()
	h := hub.New(m)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		h.Close()
	}()

	if metricsPath != "" {
		go flushMetrics(ctx, m, metricsPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "hub listening on %s (%s)\n", l.Addr(), kind)
	return h.Serve(l)
}

// flushMetrics writes a snapshot on a fixed interval and once more on
// shutdown, so the file is current even after a clean exit.
func flushMetrics(ctx context.Context, m *metrics.Metrics, path string) {
	ticker := time.NewTicker(metricsFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := m.WriteSnapshot(path); err != nil {
				debuglog.Logf("final metrics snapshot failed: %v", err)
			}
			return
		case <-ticker.C:
			if err := m.WriteSnapshot(path); err != nil {
				debuglog.Logf("metrics snapshot failed: %v", err)
			}
		}
	}
}
