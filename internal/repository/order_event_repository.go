package repository

import (
	"context"

	"app/internal/domain/model"
)

// ステータス履歴は追記のみ
type OrderEventRepository interface {
	Create(ctx context.Context, event model.OrderStatusEvent) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusEvent, error)
}
