package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"

	"resto_commerce/internal/global"
	"resto_commerce/internal/logger"
	"resto_commerce/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// startWorkers khởi động các background worker: feed tồn kho Redis,
// poller tồn kho dự phòng và quét pending payments quá hạn.
func startWorkers(ctx context.Context) {
	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	// Feed tồn kho thời gian thực qua Redis pub/sub (tùy chọn)
	feed, err := worker.NewStockFeedWorker(cfg)
	if err != nil {
		log.Info("📡 [STOCK_FEED] Redis chưa cấu hình, chỉ chạy poller tồn kho")
	} else {
		go runWorker(ctx, "STOCK_FEED", feed.Start)
	}

	// Poller tồn kho dự phòng
	if cfg.StockPollSeconds > 0 {
		poller := worker.NewStockPollWorker(time.Duration(cfg.StockPollSeconds) * time.Second)
		go runWorker(ctx, "STOCK_POLL", poller.Start)
	}

	// Quét pending payments quá hạn
	expiry := worker.NewPaymentExpiryWorker(
		time.Duration(cfg.PendingPaymentPollSeconds)*time.Second,
		time.Duration(cfg.PendingPaymentTTLMinutes)*time.Minute,
	)
	go runWorker(ctx, "PAYMENT_EXPIRY", expiry.Start)
}

// runWorker chạy một worker với recover, panic không được phép kéo sập server.
func runWorker(ctx context.Context, name string, start func(context.Context)) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"worker": name,
				"panic":  r,
			}).Error("Worker goroutine panic")
		}
	}()
	start(ctx)
}

// main_thread khởi tạo và chạy Fiber server
func main_thread() {
	app := InitFiberApp()

	cfg := global.ServerConfig
	address := ":" + cfg.Address

	log := logger.GetAppLogger()
	log.Info("Starting Fiber server...")

	// Helper resolve đường dẫn tương đối từ thư mục chứa config/env
	resolvePath := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		currentDir, err := os.Getwd()
		if err != nil {
			return path
		}
		for {
			envDir := filepath.Join(currentDir, "config", "env")
			if _, err := os.Stat(envDir); err == nil {
				return filepath.Join(currentDir, path)
			}
			parentDir := filepath.Dir(currentDir)
			if parentDir == currentDir {
				return path
			}
			currentDir = parentDir
		}
	}

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		tlsListener := tls.NewListener(ln, tlsConfig)

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
	} else {
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")

		if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
			log.Fatalf("Error in Fiber Listen: %v", err)
		}
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Nối domain event với logic phản ứng
	InitEventWiring()

	// Khởi tạo dữ liệu mặc định (INITMODE)
	InitDefaultData()

	// Khởi động các background worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx)

	// Chạy Fiber server trên main thread
	main_thread()
}
