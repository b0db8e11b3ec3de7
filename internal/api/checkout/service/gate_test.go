package service

import (
	"testing"
)

// Gate chuyển accepting → blocked phải báo justReached đúng một lần.
func TestGateJustReachedOnce(t *testing.T) {
	gate := NewOrderLimitGate()

	if just := gate.Observe(true); just {
		t.Error("quan sát accepting không được báo justReached")
	}
	if gate.State() != GateAccepting {
		t.Errorf("state = %s, muốn accepting", gate.State())
	}

	if just := gate.Observe(false); !just {
		t.Error("chuyển accepting → blocked phải báo justReached")
	}
	if !gate.Blocked() {
		t.Error("gate phải đang blocked")
	}

	// Quan sát lại khi vẫn blocked: không interrupt lần hai
	if just := gate.Observe(false); just {
		t.Error("blocked → blocked không được báo justReached lần nữa")
	}
}

// Quan sát lần đầu mà đã blocked thì hiển thị tĩnh, không interrupt.
func TestGateFirstObservationBlocked(t *testing.T) {
	gate := NewOrderLimitGate()

	if just := gate.Observe(false); just {
		t.Error("lần quan sát đầu tiên không được báo justReached dù đã blocked")
	}
	if !gate.Blocked() {
		t.Error("gate phải phản chiếu trạng thái blocked")
	}
}

// Gate quay về accepting (sang ngày mới) rồi chạm giới hạn lần nữa
// thì justReached lại bắn một lần.
func TestGateReblockAfterReset(t *testing.T) {
	gate := NewOrderLimitGate()

	gate.Observe(false)
	if just := gate.Observe(true); just {
		t.Error("blocked → accepting không phải justReached")
	}
	if gate.State() != GateAccepting {
		t.Errorf("state = %s, muốn accepting", gate.State())
	}

	if just := gate.Observe(false); !just {
		t.Error("chạm giới hạn lần nữa sau khi reset phải báo justReached")
	}
}
