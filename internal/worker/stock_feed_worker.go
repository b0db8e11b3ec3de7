// Package worker chứa các background worker của storefront: nhận feed tồn kho
// thời gian thực từ Redis, poller tồn kho dự phòng và quét pending payments quá hạn.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/config"
	catalogdto "resto_commerce/internal/api/catalog/dto"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/logger"
)

// StockFeedWorker subscribe các kênh Redis pub/sub "<prefix>:<tenantId>" nhận
// delta tồn kho thời gian thực từ hệ thống POS. Mỗi message hợp lệ được chuyển
// thành StockChangeEvent để reconcile các giỏ hàng đang mở.
// Message hỏng (tenant không phải ObjectID, payload không parse được, delta âm)
// được log rồi bỏ qua — feed bẩn không được phép dừng worker.
type StockFeedWorker struct {
	client        *redis.Client
	channelPrefix string
}

// NewStockFeedWorker tạo mới StockFeedWorker từ cấu hình Redis.
// Trả về lỗi khi REDIS_ADDR trống: caller bỏ qua worker và chỉ chạy poller.
func NewStockFeedWorker(cfg *config.Configuration) (*StockFeedWorker, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	prefix := cfg.StockFeedChannel
	if prefix == "" {
		prefix = "stock"
	}

	return &StockFeedWorker{
		client:        client,
		channelPrefix: prefix,
	}, nil
}

// Start subscribe pattern "<prefix>:*" và xử lý message cho tới khi context bị hủy.
func (w *StockFeedWorker) Start(ctx context.Context) {
	log := logger.GetWorkerLogger()

	pattern := w.channelPrefix + ":*"
	pubsub := w.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	log.WithFields(map[string]interface{}{
		"pattern": pattern,
	}).Info("📡 [STOCK_FEED] Starting Stock Feed Worker...")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info("📡 [STOCK_FEED] Stock Feed Worker stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				log.Warn("📡 [STOCK_FEED] Kênh pub/sub đã đóng")
				return
			}
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage parse một message feed và phát StockChangeEvent nếu hợp lệ.
func (w *StockFeedWorker) handleMessage(ctx context.Context, msg *redis.Message) {
	log := logger.GetWorkerLogger()

	tenantHex := strings.TrimPrefix(msg.Channel, w.channelPrefix+":")
	tenantID, err := primitive.ObjectIDFromHex(tenantHex)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"channel": msg.Channel,
		}).Warn("📡 [STOCK_FEED] Kênh không mang tenant ID hợp lệ, bỏ qua message")
		return
	}

	var input catalogdto.StockDeltaInput
	if err := json.Unmarshal([]byte(msg.Payload), &input); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"channel": msg.Channel,
			"payload": msg.Payload,
		}).Warn("📡 [STOCK_FEED] Payload không parse được, bỏ qua message")
		return
	}

	event, err := input.ToEvent(tenantID)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"channel": msg.Channel,
			"payload": msg.Payload,
		}).Warn("📡 [STOCK_FEED] Payload không hợp lệ, bỏ qua message")
		return
	}

	events.EmitStockChanged(ctx, event)
}
