package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "link":
		return linkTemplate, nil
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

const linkTemplate = `name = "linkctl"
listen = ":9600"
peer = "localhost:9601"
fragment_size = 64
ack_timeout_ms = 1000
poll_timeout_ms = 200
max_retry = 5
stats_addr = ":9700"
auth_token = ""
cors_origins = ["http://localhost:3000"]

[loss]
enabled = false
drop_rate = 0.01
flip_rate = 0.05
seed = 0
`
