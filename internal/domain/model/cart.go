package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。価格は「追加時点の価格」を必ず保存。
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// セッション単位の一時カート（ドキュメントストア保存、24hで自動失効）。
// sessionIdにつき1つ。認証とは独立。
type Cart struct {
	SessionID string          `json:"session_id"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// 空カートを作る
func NewCart(sessionID string, now time.Time) Cart {
	return Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// productIDの明細のインデックスを返す（無ければ-1）
func (c *Cart) FindItem(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// 各明細のsubtotalとカートのtotalを計算し直す。
// どの変更のあとも total = Σ subtotal を保つ。
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(c.Items[i].Quantity))
		total = total.Add(c.Items[i].Subtotal)
	}
	c.Total = total
}
