package repository

import (
	"app/internal/domain/model"
	"context"
)

// 在庫を触る窓口はここだけ。確定時の減算・キャンセル/返品の戻し・管理者調整のすべてが
// この条件付き更新を通る（読み出し→書き戻しの競合を作らない）。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算。足りなければfalse。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル・返品承認）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
