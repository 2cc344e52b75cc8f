package order

import (
	"context"

	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/order/dto"
)

type UseCase interface {
	SubmitRequest(ctx context.Context, input *dto.SubmitRequestInput) (*dto.SubmitRequestResult, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
	// CompleteForFulfillment walks the order to done. It joins the caller's
	// transaction when there is one.
	CompleteForFulfillment(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderAsCart(ctx context.Context, orderID string) (model.Cart, error)

	GetOrder(ctx context.Context, orderID string) (*model.OrderWithDetails, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.OrderWithDetails, error)
	ListOrdersByLocation(ctx context.Context, locationID string) ([]model.OrderWithDetails, error)
}
