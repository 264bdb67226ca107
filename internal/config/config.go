package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	// WSAddr serves the player websocket endpoint; APIAddr serves the
	// collaborator HTTP API (session create / result read-back).
	WSAddr  string
	APIAddr string

	RedisURL    string
	DatabaseURL string

	EloK          int
	SessionTTLSec int

	// MessageDir optionally overrides the embedded notice templates.
	MessageDir string

	// ConnSendQueue is the per-connection outbound buffer; a socket
	// that falls this far behind is dropped from its room.
	ConnSendQueue int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		WSAddr:        ":8090",
		APIAddr:       ":8091",
		EloK:          32,
		SessionTTLSec: 86400,
		ConnSendQueue: 64,
	}

	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("API_ADDR")); v != "" {
		cfg.APIAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageDir = strings.TrimSpace(os.Getenv("MESSAGE_DIR"))

	if v := strings.TrimSpace(os.Getenv("ELO_K")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EloK = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CONN_SEND_QUEUE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConnSendQueue = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
