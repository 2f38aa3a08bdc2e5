// Package config loads the optional config file and environment overrides.
// Flags still win: commands use these values as flag defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/rimgik/clipper/internal/peer"
	"github.com/rimgik/clipper/internal/transport"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".clipper"

	KeyListenAddr   = "listen_addr"
	KeyHubAddr      = "hub_addr"
	KeyTransport    = "transport"
	KeyEncrypt      = "encrypt"
	KeyOrigin       = "origin"
	KeyPollInterval = "poll_interval"
	KeyDownloadDir  = "download_dir"
	KeyMetricsPath  = "metrics_path"
)

// Load resolves defaults, then ~/.clipper/config.toml if present, then
// CLIPPER_* environment variables.
func Load(cfg *viper.Viper) (*viper.Viper, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetDefault(KeyListenAddr, ":9190")
	cfg.SetDefault(KeyHubAddr, "127.0.0.1:9190")
	cfg.SetDefault(KeyTransport, transport.KindTCP)
	cfg.SetDefault(KeyEncrypt, false)
	cfg.SetDefault(KeyOrigin, runtime.GOOS)
	cfg.SetDefault(KeyPollInterval, peer.DefaultPollInterval)
	cfg.SetDefault(KeyDownloadDir, filepath.Join(homeDir, "Downloads"))
	cfg.SetDefault(KeyMetricsPath, "")

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.SetEnvPrefix("clipper")
	cfg.AutomaticEnv()
	return cfg, nil
}
