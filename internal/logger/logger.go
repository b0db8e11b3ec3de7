// Package logger cấu hình hệ thống logging của ứng dụng dựa trên logrus,
// ghi file có rotation (lumberjack) và/hoặc stdout. Mỗi logger được đặt tên
// (app, access, worker) và được cache lại sau lần tạo đầu tiên.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	config *LogConfig

	// rootDir là thư mục gốc của project, dùng để resolve đường dẫn logs tương đối
	rootDir string
)

// Init khởi tạo hệ thống logging với cấu hình.
// cfg = nil sẽ dùng DefaultConfig (đọc từ environment variables).
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	config = cfg

	if err := initRootDir(); err != nil {
		return fmt.Errorf("failed to initialize root directory: %w", err)
	}

	if err := os.MkdirAll(getLogPath(), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	return nil
}

// initRootDir xác định thư mục gốc của project: ưu tiên LOG_ROOT_DIR,
// sau đó đi lên từ working directory tìm thư mục chứa config/ hoặc logs/.
func initRootDir() error {
	if rootDir != "" {
		return nil
	}

	if envRootDir := os.Getenv("LOG_ROOT_DIR"); envRootDir != "" {
		// Resolve symlinks (quan trọng khi chạy qua systemd)
		if resolved, err := filepath.EvalSymlinks(envRootDir); err == nil {
			rootDir = resolved
		} else {
			rootDir = envRootDir
		}
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get working directory: %v", err)
	}

	currentDir := wd
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(currentDir, "config")); err == nil {
			rootDir = currentDir
			return nil
		}
		if _, err := os.Stat(filepath.Join(currentDir, "logs")); err == nil {
			rootDir = currentDir
			return nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	rootDir = wd
	return nil
}

// getLogPath trả về đường dẫn thư mục logs
func getLogPath() string {
	if filepath.IsAbs(config.LogPath) {
		return config.LogPath
	}
	return filepath.Join(rootDir, config.LogPath)
}

// GetLogger trả về logger theo tên (app, access, worker).
// Logger được tạo lazily và cache lại; gọi trước Init sẽ tự init với config mặc định.
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if config == nil {
		if err := Init(nil); err != nil {
			panic(fmt.Sprintf("Failed to initialize logger: %v", err))
		}
	}

	if lg, ok := loggers[name]; ok {
		return lg
	}

	lg := createLogger(name)
	loggers[name] = lg
	return lg
}

// GetAppLogger trả về logger chính của ứng dụng
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

// GetWorkerLogger trả về logger cho các background worker
func GetWorkerLogger() *logrus.Logger {
	return GetLogger("worker")
}

// createLogger tạo một logger mới theo config hiện tại
func createLogger(name string) *logrus.Logger {
	lg := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	lg.SetLevel(level)

	if strings.EqualFold(config.Format, "json") {
		lg.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		lg.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer
	if config.Output == "file" || config.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(getLogPath(), name+".log"),
			MaxSize:    config.MaxSize,    // MB
			MaxBackups: config.MaxBackups, // Số file cũ giữ lại
			MaxAge:     config.MaxAge,     // Số ngày
			Compress:   config.Compress,
		})
	}
	if config.Output == "stdout" || config.Output == "both" {
		writers = append(writers, os.Stdout)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	lg.SetOutput(io.MultiWriter(writers...))

	return lg
}
