package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// WithRequest trả về log entry đã gắn sẵn các field của request hiện tại
// (requestId từ requestid middleware, method, path, ip) để trace theo request.
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields{
		"requestId": requestid.FromContext(c),
		"method":    c.Method(),
		"path":      c.Path(),
		"ip":        c.IP(),
	})
}
