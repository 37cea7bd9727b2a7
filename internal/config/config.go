package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr          string
	AllowOrigins  []string
	LogLevel      log.Level
	WSReadBuffer  int
	WSWriteBuffer int
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  []string{"http://localhost:5173"},
		LogLevel:      log.LevelInfo,
		WSReadBuffer:  1024,
		WSWriteBuffer: 1024,
	}
}

// Load reads the CHESS_* environment variables on top of the defaults.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("CHESS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("CHESS_ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
			}
		}
	}
	if v := getenv("CHESS_LOG_LEVEL"); v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	for name, dst := range map[string]*int{
		"CHESS_WS_READ_BUFFER":  &cfg.WSReadBuffer,
		"CHESS_WS_WRITE_BUFFER": &cfg.WSWriteBuffer,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s: want a positive integer, got %q", name, v)
		}
		*dst = n
	}
	return cfg, nil
}

func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("CHESS_LOG_LEVEL: unknown level %q", s)
}

// Origins renders AllowOrigins the way the cors middleware expects them.
func (c Config) Origins() string {
	return strings.Join(c.AllowOrigins, ", ")
}
