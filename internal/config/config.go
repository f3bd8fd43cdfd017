// Package config declares the on-disk TOML schema for the slotbox
// binaries: the slotboxd daemon config and the boxctl client config,
// plus starter templates for both.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DaemonConfig is the slotboxd config file schema. Interval fields are
// TOML strings in time.ParseDuration syntax.
type DaemonConfig struct {
	DeviceID          string   `toml:"device_id"`
	ImagePath         string   `toml:"image_path"`
	ImageSize         uint16   `toml:"image_size"`
	ListenAddr        string   `toml:"listen_addr"`
	AdminListenAddr   string   `toml:"admin_listen_addr"`
	AdminAuthToken    string   `toml:"admin_auth_token"`
	CorsOrigins       []string `toml:"cors_origins"`
	HeartbeatInterval string   `toml:"heartbeat_interval"`
	UpdateInterval    string   `toml:"update_interval"`
	ValueLogInterval  string   `toml:"value_log_interval"`
}

// ClientConfig is the boxctl config file schema.
type ClientConfig struct {
	Addr    string `toml:"addr"`
	Timeout string `toml:"timeout"`
}

func LoadDaemonConfig(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := loadToml(path, &cfg); err != nil {
		return DaemonConfig{}, err
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = "box.local"
	}
	if cfg.ImagePath == "" {
		cfg.ImagePath = "slotbox.img"
	}
	if cfg.ImageSize == 0 {
		cfg.ImageSize = 2048
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:21314"
	}
	if err := ValidateDaemonConfig(cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}

func LoadClientConfig(path string) (ClientConfig, error) {
	var cfg ClientConfig
	if err := loadToml(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:21314"
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateDaemonConfig(cfg DaemonConfig) error {
	if strings.TrimSpace(cfg.DeviceID) == "" {
		return fmt.Errorf("daemon config missing device_id")
	}
	if strings.TrimSpace(cfg.ImagePath) == "" {
		return fmt.Errorf("daemon config missing image_path")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("daemon config missing listen_addr")
	}
	for _, d := range []struct{ name, raw string }{
		{"heartbeat_interval", cfg.HeartbeatInterval},
		{"update_interval", cfg.UpdateInterval},
		{"value_log_interval", cfg.ValueLogInterval},
	} {
		if err := validateDuration(d.name, d.raw); err != nil {
			return err
		}
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("client config missing addr")
	}
	return validateDuration("timeout", cfg.Timeout)
}

func validateDuration(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := time.ParseDuration(raw); err != nil {
		return fmt.Errorf("%s invalid: %w", name, err)
	}
	return nil
}
