package worker

import (
	"context"
	"time"

	ordersvc "resto_commerce/internal/api/order/service"
	"resto_commerce/internal/logger"
)

// PaymentExpiryWorker định kỳ quét các pending payment đã mở quá lâu mà
// provider không xác nhận, chuyển chúng sang expired. Khách không hoàn tất
// thanh toán thì marker không được phép nằm ở trạng thái open mãi mãi.
type PaymentExpiryWorker struct {
	payments *ordersvc.PaymentPreferenceService
	interval time.Duration
	ttl      time.Duration
}

// NewPaymentExpiryWorker tạo mới PaymentExpiryWorker.
// Tham số:
//   - interval: Chu kỳ quét (mặc định: 2 phút)
//   - ttl: Tuổi tối đa của marker open trước khi bị expire (mặc định: 60 phút)
func NewPaymentExpiryWorker(interval, ttl time.Duration) *PaymentExpiryWorker {
	if interval < 30*time.Second {
		interval = 2 * time.Minute
	}
	if ttl < time.Minute {
		ttl = time.Hour
	}
	return &PaymentExpiryWorker{
		payments: ordersvc.NewPaymentPreferenceService(nil),
		interval: interval,
		ttl:      ttl,
	}
}

// Start chạy worker trong vòng lặp ticker cho tới khi context bị hủy.
func (w *PaymentExpiryWorker) Start(ctx context.Context) {
	log := logger.GetWorkerLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
		"ttl":      w.ttl.String(),
	}).Info("💳 [PAYMENT_EXPIRY] Starting Payment Expiry Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("💳 [PAYMENT_EXPIRY] Payment Expiry Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("💳 [PAYMENT_EXPIRY] Panic khi quét pending payments, sẽ tiếp tục ở chu kỳ sau")
					}
				}()

				expired, err := w.payments.ExpireStale(ctx, w.ttl)
				if err != nil {
					log.WithError(err).Error("💳 [PAYMENT_EXPIRY] Lỗi quét pending payments")
					return
				}
				if expired > 0 {
					log.WithFields(map[string]interface{}{
						"expired": expired,
					}).Info("💳 [PAYMENT_EXPIRY] Đã expire pending payments quá hạn")
				}
			}()
		}
	}
}
