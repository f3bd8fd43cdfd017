package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/slotbox/internal/box"
)

// slotboxd config.toml key mapping to runtime settings.
type fileConfig struct {
	DeviceID          string   `toml:"device_id"`
	ImagePath         string   `toml:"image_path"`
	ImageSize         int      `toml:"image_size"`
	ListenAddr        string   `toml:"listen_addr"`
	AdminListenAddr   string   `toml:"admin_listen_addr"`
	AdminAuthToken    string   `toml:"admin_auth_token"`
	CorsOrigins       []string `toml:"cors_origins"`
	HeartbeatInterval string   `toml:"heartbeat_interval"`
	UpdateInterval    string   `toml:"update_interval"`
	ValueLogInterval  string   `toml:"value_log_interval"`
}

// slotboxd loader for TOML config with default overlay.
func loadServiceConfig(path string) (box.ServiceConfig, error) {
	cfg := box.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return box.ServiceConfig{}, fmt.Errorf("load slotboxd config: %w", err)
	}

	if meta.IsDefined("device_id") {
		cfg.DeviceID = strings.TrimSpace(raw.DeviceID)
	}
	if meta.IsDefined("image_path") {
		cfg.ImagePath = strings.TrimSpace(raw.ImagePath)
	}
	if meta.IsDefined("image_size") {
		if raw.ImageSize <= 0 || raw.ImageSize > 0xFFFF {
			return box.ServiceConfig{}, fmt.Errorf("load slotboxd config: image_size %d out of range", raw.ImageSize)
		}
		cfg.ImageSize = uint16(raw.ImageSize)
	}
	if meta.IsDefined("listen_addr") {
		cfg.CommandListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}
	if meta.IsDefined("admin_auth_token") {
		cfg.AdminAuthToken = strings.TrimSpace(raw.AdminAuthToken)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("heartbeat_interval") {
		if cfg.HeartbeatInterval, err = parseInterval("heartbeat_interval", raw.HeartbeatInterval); err != nil {
			return box.ServiceConfig{}, err
		}
	}
	if meta.IsDefined("update_interval") {
		if cfg.UpdateInterval, err = parseInterval("update_interval", raw.UpdateInterval); err != nil {
			return box.ServiceConfig{}, err
		}
	}
	if meta.IsDefined("value_log_interval") {
		if cfg.ValueLogInterval, err = parseInterval("value_log_interval", raw.ValueLogInterval); err != nil {
			return box.ServiceConfig{}, err
		}
	}
	return cfg, nil
}

func parseInterval(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("load slotboxd config: %s: %w", name, err)
	}
	return d, nil
}
