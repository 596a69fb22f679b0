package repository

import (
	"context"

	"app/internal/domain/model"
)

type ReturnRepository interface {
	Create(ctx context.Context, ret model.Return, items []model.ReturnItem) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Return, error)
	ListItems(ctx context.Context, returnID int64) ([]model.ReturnItem, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Return, error)
	ListAdmin(ctx context.Context, status string, page, limit int) ([]model.Return, int64, error)
	UpdateStatus(ctx context.Context, id int64, status model.ReturnStatus) error
}
