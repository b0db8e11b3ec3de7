package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	cartmodels "resto_commerce/internal/api/cart/models"
	cartsvc "resto_commerce/internal/api/cart/service"
	ordersvc "resto_commerce/internal/api/order/service"
)

// cartServiceGateway thu hẹp CartService về CartGateway của orchestrator.
type cartServiceGateway struct {
	carts *cartsvc.CartService
}

func (g *cartServiceGateway) Current(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) (cartmodels.Cart, error) {
	return g.carts.GetOrCreate(ctx, tenantID, sessionKey)
}

func (g *cartServiceGateway) Clear(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) error {
	_, _, err := g.carts.Clear(ctx, tenantID, sessionKey)
	return err
}

// NewDeps dựng bộ collaborator thật trên MongoDB cho orchestrator.
// OrderLimitService, OrderService và PaymentPreferenceService đã khớp
// interface hẹp sẵn; chỉ CartService cần gateway trung gian.
func NewDeps() Deps {
	return Deps{
		Carts:    &cartServiceGateway{carts: cartsvc.NewCartService()},
		Stocks:   NewStockCheckService(),
		Limits:   ordersvc.NewOrderLimitService(),
		Orders:   ordersvc.NewOrderService(),
		Payments: ordersvc.NewPaymentPreferenceService(nil),
	}
}
