// Package registry cung cấp registry pattern với generic type để quản lý
// các singleton instances (collection MongoDB, service, ...) một cách thread-safe.
package registry

import (
	"fmt"
	"sync"

	"resto_commerce/internal/common"
)

// Registry là một thread-safe generic registry.
// Type parameter T cho phép registry quản lý bất kỳ loại object nào.
//
// Example:
//
//	colRegistry := NewRegistry[*mongo.Collection]()
//	colRegistry.Register("store_products", col)
//	if col, exists := colRegistry.Get("store_products"); exists { ... }
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry tạo và trả về một registry mới
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký một item vào registry. Item trùng name sẽ bị ghi đè.
//
// Returns:
//   - isNew: true nếu là item mới, false nếu ghi đè item cũ
//   - err: lỗi nếu name rỗng
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo name. Trả về zero value và false nếu không tồn tại.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists := r.items[name]
	return item, exists
}

// MustGet lấy item theo name, panic nếu không tồn tại.
// Chỉ dùng khi khởi tạo service: thiếu collection trong registry là lỗi
// cấu hình, ứng dụng không được phép chạy tiếp.
func (r *Registry[T]) MustGet(name string) T {
	item, exists := r.Get(name)
	if !exists {
		panic(fmt.Sprintf("registry: item %q not registered", name))
	}
	return item
}

// Remove xóa item khỏi registry. Trả về true nếu item tồn tại và đã bị xóa.
func (r *Registry[T]) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[name]; !exists {
		return false
	}
	delete(r.items, name)
	return true
}

// Names trả về danh sách name của tất cả items đã đăng ký.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	return names
}

// Count trả về số lượng items trong registry.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
