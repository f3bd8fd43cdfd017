package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadServiceConfigDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	content := `
device_id = "box.alpha"
image_path = "/var/lib/slotbox/alpha.img"
image_size = 4096
listen_addr = "127.0.0.1:21320"
admin_listen_addr = "127.0.0.1:21390"
admin_auth_token = "hunter2"
cors_origins = ["http://localhost:5173"]
heartbeat_interval = "2s"
value_log_interval = "30s"
	`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadServiceConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DeviceID != "box.alpha" {
		t.Fatalf("unexpected device id: %q", cfg.DeviceID)
	}
	if cfg.ImagePath != "/var/lib/slotbox/alpha.img" {
		t.Fatalf("unexpected image path: %q", cfg.ImagePath)
	}
	if cfg.ImageSize != 4096 {
		t.Fatalf("unexpected image size: %d", cfg.ImageSize)
	}
	if cfg.CommandListenAddr != "127.0.0.1:21320" {
		t.Fatalf("unexpected listen addr: %q", cfg.CommandListenAddr)
	}
	if cfg.AdminListenAddr != "127.0.0.1:21390" {
		t.Fatalf("unexpected admin listen addr: %q", cfg.AdminListenAddr)
	}
	if cfg.AdminAuthToken != "hunter2" {
		t.Fatalf("unexpected admin auth token: %q", cfg.AdminAuthToken)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.HeartbeatInterval != 2*time.Second {
		t.Fatalf("unexpected heartbeat interval: %v", cfg.HeartbeatInterval)
	}
	if cfg.UpdateInterval != 50*time.Millisecond {
		t.Fatalf("undefined update_interval should keep default, got %v", cfg.UpdateInterval)
	}
	if cfg.ValueLogInterval != 30*time.Second {
		t.Fatalf("unexpected value log interval: %v", cfg.ValueLogInterval)
	}
}

func TestLoadServiceConfigRejectsBadInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`update_interval = "fast"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadServiceConfig(path); err == nil || !strings.Contains(err.Error(), "update_interval") {
		t.Fatalf("expected update_interval error, got %v", err)
	}
}

func TestLoadServiceConfigRejectsImageSizeOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`image_size = 100000`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadServiceConfig(path); err == nil || !strings.Contains(err.Error(), "image_size") {
		t.Fatalf("expected image_size error, got %v", err)
	}
}
