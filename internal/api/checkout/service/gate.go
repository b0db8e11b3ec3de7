// Package service chứa nghiệp vụ checkout: gate giới hạn đơn hàng,
// phụ phí giao hàng và orchestrator điều phối quy trình đặt hàng.
package service

import (
	"sync"
)

// GateState là trạng thái của gate giới hạn đơn hàng.
type GateState string

const (
	GateAccepting GateState = "accepting" // Cửa hàng còn nhận đơn
	GateBlocked   GateState = "blocked"   // Đã chạm giới hạn ngày
)

// OrderLimitGate là máy hai trạng thái phản chiếu giới hạn đơn hàng của cửa hàng.
// Gate không tự quyết định gì: trạng thái chỉ đổi theo status được cấp từ ngoài
// (endpoint limit-status hoặc OrderLimitEvent). Gate phân biệt "vừa chạm giới hạn"
// (chuyển accepting → blocked, cần interrupt UI đúng một lần) với "đã bị chặn
// từ trước khi quan sát lần đầu" (hiển thị trạng thái tĩnh, không interrupt).
type OrderLimitGate struct {
	mu       sync.Mutex
	state    GateState
	observed bool
}

// NewOrderLimitGate tạo gate mới, chưa quan sát status nào.
func NewOrderLimitGate() *OrderLimitGate {
	return &OrderLimitGate{state: GateAccepting}
}

// State trả về trạng thái hiện tại của gate.
func (g *OrderLimitGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Blocked kiểm tra gate có đang chặn đặt hàng không.
func (g *OrderLimitGate) Blocked() bool {
	return g.State() == GateBlocked
}

// Observe cập nhật gate theo status mới nhất từ bên ngoài.
// justReached = true đúng một lần duy nhất: khi gate chuyển từ accepting
// (đã quan sát trước đó) sang blocked. Quan sát lần đầu mà đã blocked,
// hay quan sát lại khi vẫn blocked, đều trả về false.
func (g *OrderLimitGate) Observe(canAcceptOrders bool) (justReached bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	wasAccepting := g.observed && g.state == GateAccepting

	if canAcceptOrders {
		g.state = GateAccepting
	} else {
		g.state = GateBlocked
	}
	g.observed = true

	return !canAcceptOrders && wasAccepting
}
