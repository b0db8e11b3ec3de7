package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng:
// địa chỉ server, kết nối MongoDB/Redis, CORS, rate limit và các collaborator bên ngoài.
type Configuration struct {
	InitMode bool   `env:"INITMODE" envDefault:"false"` // Chế độ khởi tạo (seed dữ liệu mặc định)
	Address  string `env:"ADDRESS" envDefault:"8080"`   // Port server

	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`         // URI kết nối MongoDB
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"storefront"`  // Tên database

	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials

	RateLimit_Max     int  `env:"RATE_LIMIT_MAX" envDefault:"100"`      // Số request tối đa trong window
	RateLimit_Window  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`    // Thời gian window (giây)
	RateLimit_Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"` // Bật/tắt rate limiting

	// Real-time stock feed (Redis pub/sub) và poller fallback
	RedisAddr         string `env:"REDIS_ADDR"`                            // Địa chỉ Redis (rỗng = tắt pub/sub, chỉ dùng poller)
	RedisPassword     string `env:"REDIS_PASSWORD"`                        // Mật khẩu Redis
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`               // Redis database index
	StockPollSeconds  int    `env:"STOCK_POLL_SECONDS" envDefault:"30"`    // Chu kỳ poll tồn kho (giây, 0 = tắt poller)
	StockFeedChannel  string `env:"STOCK_FEED_CHANNEL" envDefault:"stock"` // Prefix kênh pub/sub tồn kho (stock:<tenantId>)

	// Pending payment reconciliation
	PendingPaymentTTLMinutes  int `env:"PENDING_PAYMENT_TTL_MINUTES" envDefault:"60"`  // Tuổi tối đa của marker pending trước khi bị expire
	PendingPaymentPollSeconds int `env:"PENDING_PAYMENT_POLL_SECONDS" envDefault:"120"` // Chu kỳ quét pending payments (giây)

	// Payment preference collaborator (thanh toán online)
	PaymentProviderURL   string `env:"PAYMENT_PROVIDER_URL"`   // Base URL của payment provider (rỗng = tenant không bật thanh toán online)
	PaymentProviderToken string `env:"PAYMENT_PROVIDER_TOKEN"` // Token gọi payment provider

	// SMTP cho email xác nhận đơn hàng (optional)
	SMTPHost      string `env:"SMTP_HOST"`                  // SMTP host (rỗng = tắt email)
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"` // SMTP port
	SMTPUsername  string `env:"SMTP_USERNAME"`              // SMTP username
	SMTPPassword  string `env:"SMTP_PASSWORD"`              // SMTP password
	SMTPFromName  string `env:"SMTP_FROM_NAME"`             // Tên người gửi
	SMTPFromEmail string `env:"SMTP_FROM_EMAIL"`            // Email người gửi

	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường (GO_ENV, mặc định development).
// Đi lên từ working directory để tìm thư mục config/env.
func getEnvPath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Dùng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env theo môi trường rồi parse vào struct.
// Trả về nil khi thiếu file env hoặc thiếu biến bắt buộc.
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
