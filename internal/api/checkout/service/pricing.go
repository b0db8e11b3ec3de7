package service

import (
	tenantmodels "resto_commerce/internal/api/tenant/models"
)

// DeliverySurcharge tính phụ phí giao hàng theo chính sách của cửa hàng.
// Hàm thuần: được gọi đúng một lần mỗi lần tính lại tổng, và giá trị này
// dùng y nguyên cho cả tổng hiển thị lẫn payload đơn hàng — không bao giờ
// tính lại hai nơi với hai kết quả khác nhau.
//
// Phụ phí chỉ áp cho giao tận nơi; pickup và dine-in luôn 0.
func DeliverySurcharge(policy tenantmodels.DeliveryPricing, deliveryType tenantmodels.DeliveryType, subtotal float64) float64 {
	if deliveryType != tenantmodels.DeliveryShipping {
		return 0
	}

	switch policy.Mode {
	case tenantmodels.DeliveryPricingFixed:
		return policy.Fee
	case tenantmodels.DeliveryPricingFreeThreshold:
		if subtotal >= policy.FreeThreshold {
			return 0
		}
		return policy.Fee
	default:
		// free hoặc mode không khai báo
		return 0
	}
}
