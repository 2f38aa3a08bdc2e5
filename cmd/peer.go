package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rimgik/clipper/internal/clipboard"
	"github.com/rimgik/clipper/internal/config"
	"github.com/rimgik/clipper/internal/peer"
)

func newPeerCmd(cfg *viper.Viper) *cobra.Command {
	var (
		addr        string
		kind        string
		origin      string
		encrypt     bool
		interval    time.Duration
		downloadDir string
	)

	peerCmd := &cobra.Command{
		Use:   "peer",
		Short: "Connect this machine's clipboard to a hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPeer(cmd, peer.Config{
				Addr:         addr,
				Transport:    kind,
				Origin:       origin,
				Encrypt:      encrypt,
				PollInterval: interval,
			}, downloadDir)
		},
	}

	peerCmd.Flags().StringVar(&addr, "addr", cfg.GetString(config.KeyHubAddr), "hub address to connect to")
	peerCmd.Flags().StringVar(&kind, "transport", cfg.GetString(config.KeyTransport), "transport to connect with (tcp or quic)")
	peerCmd.Flags().StringVar(&origin, "origin", cfg.GetString(config.KeyOrigin), "origin label sent to the hub")
	peerCmd.Flags().BoolVar(&encrypt, "encrypt", cfg.GetBool(config.KeyEncrypt), "encrypt the channel to the hub")
	peerCmd.Flags().DurationVar(&interval, "interval", cfg.GetDuration(config.KeyPollInterval), "clipboard poll interval")
	peerCmd.Flags().StringVar(&downloadDir, "download-dir", cfg.GetString(config.KeyDownloadDir), "directory received files are written to")
	return peerCmd
}

func runPeer(cmd *cobra.Command, cfg peer.Config, downloadDir string) error {
	system := clipboard.NewSystem(downloadDir)
	cfg.Source = system
	cfg.Sink = system

	s, err := peer.Connect(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "connected to hub at %s (%s)\n", cfg.Addr, cfg.Transport)
	err = s.Run()
	if ctx.Err() != nil {
		// Shutdown was requested; the torn-down connection is not a failure.
		return nil
	}
	return err
}
