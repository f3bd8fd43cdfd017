package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "daemon":
		return daemonTemplate, nil
	case "client":
		return clientTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const daemonTemplate = `device_id = "box.local"
image_path = "slotbox.img"
image_size = 2048
listen_addr = "127.0.0.1:21314"
admin_listen_addr = "127.0.0.1:21380"
admin_auth_token = ""
cors_origins = ["http://localhost:3000"]
heartbeat_interval = "5s"
update_interval = "50ms"
value_log_interval = "0s"
`

const clientTemplate = `addr = "127.0.0.1:21314"
timeout = "5s"
`
