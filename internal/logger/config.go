package logger

import (
	"os"
	"strconv"
)

// LogConfig chứa cấu hình logging
type LogConfig struct {
	Level      string // Log level: debug, info, warn, error
	Format     string // Format: text hoặc json
	Output     string // Output: stdout, file, both
	LogPath    string // Thư mục chứa log files (tương đối so với root project)
	MaxSize    int    // Kích thước tối đa của một file log (MB) trước khi rotate
	MaxBackups int    // Số file log cũ giữ lại
	MaxAge     int    // Số ngày giữ log cũ
	Compress   bool   // Nén file log cũ
}

// DefaultConfig trả về cấu hình mặc định, cho phép override qua environment variables
// (LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_PATH, LOG_MAX_SIZE, LOG_MAX_BACKUPS, LOG_MAX_AGE, LOG_COMPRESS).
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{
		Level:      "info",
		Format:     "text",
		Output:     "both",
		LogPath:    "logs",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSize = n
		}
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxBackups = n
		}
	}
	if v := os.Getenv("LOG_MAX_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxAge = n
		}
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Compress = b
		}
	}

	return cfg
}
