package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/slotbox/internal/box"
)

// ServiceConfig maps a loaded daemon config onto runtime settings,
// keeping the runtime defaults for anything the file left out.
func (c DaemonConfig) ServiceConfig() (box.ServiceConfig, error) {
	cfg := box.DefaultServiceConfig()
	cfg.DeviceID = c.DeviceID
	cfg.ImagePath = c.ImagePath
	cfg.ImageSize = c.ImageSize
	cfg.CommandListenAddr = c.ListenAddr
	cfg.AdminListenAddr = c.AdminListenAddr
	cfg.AdminAuthToken = c.AdminAuthToken
	cfg.CORSOrigins = c.CorsOrigins

	var err error
	if cfg.HeartbeatInterval, err = overlayDuration(cfg.HeartbeatInterval, c.HeartbeatInterval); err != nil {
		return box.ServiceConfig{}, fmt.Errorf("heartbeat_interval invalid: %w", err)
	}
	if cfg.UpdateInterval, err = overlayDuration(cfg.UpdateInterval, c.UpdateInterval); err != nil {
		return box.ServiceConfig{}, fmt.Errorf("update_interval invalid: %w", err)
	}
	if cfg.ValueLogInterval, err = overlayDuration(cfg.ValueLogInterval, c.ValueLogInterval); err != nil {
		return box.ServiceConfig{}, fmt.Errorf("value_log_interval invalid: %w", err)
	}
	return cfg, nil
}

func overlayDuration(def time.Duration, raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
