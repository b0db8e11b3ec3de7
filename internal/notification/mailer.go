// Package notification gửi email báo đơn hàng mới cho chủ cửa hàng qua SMTP.
// Gửi email là best-effort: thất bại chỉ được log, không bao giờ ảnh hưởng
// tới việc tạo đơn.
package notification

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"resto_commerce/config"
	ordermodels "resto_commerce/internal/api/order/models"
	tenantmodels "resto_commerce/internal/api/tenant/models"
)

// Mailer gửi email qua một SMTP server cấu hình sẵn.
type Mailer struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewMailerFromConfig tạo Mailer từ cấu hình SMTP.
// Trả về lỗi khi SMTP_HOST trống: caller bỏ qua notification.
func NewMailerFromConfig(cfg *config.Configuration) (*Mailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is empty")
	}
	return &Mailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromName:  cfg.SMTPFromName,
		fromEmail: cfg.SMTPFromEmail,
	}, nil
}

// SendOrderCreated gửi email báo đơn hàng mới tới email liên hệ của cửa hàng.
func (m *Mailer) SendOrderCreated(tenant tenantmodels.Tenant, order ordermodels.Order) error {
	if tenant.ContactEmail == "" {
		return fmt.Errorf("tenant %s has no contact email", tenant.Slug)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail))
	msg.SetHeader("To", tenant.ContactEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Đơn hàng mới #%d - %s", order.DailyNumber, order.CustomerName))
	msg.SetBody("text/html", renderOrderHTML(order))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}

// renderOrderHTML dựng nội dung email từ đơn hàng.
func renderOrderHTML(order ordermodels.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Đơn hàng #%d</h2>", order.DailyNumber)
	fmt.Fprintf(&b, "<p><strong>Khách:</strong> %s — %s</p>", order.CustomerName, order.CustomerPhone)
	fmt.Fprintf(&b, "<p><strong>Nhận hàng:</strong> %s", order.DeliveryType)
	if order.Address != "" {
		fmt.Fprintf(&b, " — %s", order.Address)
	}
	b.WriteString("</p>")
	if order.Notes != "" {
		fmt.Fprintf(&b, "<p><strong>Ghi chú:</strong> %s</p>", order.Notes)
	}

	b.WriteString(`<table border="0" cellpadding="6" style="border-collapse:collapse;width:100%">`)
	b.WriteString("<tr style='text-align:left;border-bottom:1px solid #ddd'><th>Món</th><th>SL</th><th>Thành tiền</th></tr>")
	for _, item := range order.Items {
		name := item.Name
		if item.Size != "" {
			name += " (" + item.Size + ")"
		}
		var extras []string
		for _, extra := range item.Extras {
			label := extra.Name
			if extra.SubOption != "" {
				label += ": " + extra.SubOption
			}
			extras = append(extras, label)
		}
		if len(extras) > 0 {
			name += "<br><small>" + strings.Join(extras, ", ") + "</small>"
		}
		if item.Comment != "" {
			name += "<br><small><em>" + item.Comment + "</em></small>"
		}
		fmt.Fprintf(&b, "<tr style='border-bottom:1px solid #eee'><td>%s</td><td>%d</td><td>%.2f</td></tr>", name, item.Quantity, item.TotalPrice)
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p>Tạm tính: %.2f</p>", order.Subtotal)
	if order.DeliverySurcharge > 0 {
		fmt.Fprintf(&b, "<p>Phụ phí giao hàng: %.2f</p>", order.DeliverySurcharge)
	}
	fmt.Fprintf(&b, "<p><strong>Tổng cộng: %.2f</strong></p>", order.Total)
	fmt.Fprintf(&b, "<p>Thanh toán: %s</p>", order.PaymentMethod)

	return b.String()
}
