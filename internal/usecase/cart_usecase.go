package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// カートはセッション単位（認証とは独立）で、ドキュメントストアに1ドキュメント。
// 読みはキャッシュを先に見て、書きはストア更新後にキャッシュを消す。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	cartCache   cache.CartCache
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	cartCache cache.CartCache,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cartCache:   cartCache,
	}
}

type CartItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	SessionID string             `json:"session_id"`
	Items     []CartItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// カート取得（無ければ空カートを作って返す）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}

	//キャッシュヒットならストアへ行かない。ミスも障害もストアへフォールバック
	if cached, err := u.cartCache.Get(ctx, sessionID); err == nil {
		return toCartResponse(cached), nil
	}

	cart, err := u.cartRepo.GetOrCreate(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	_ = u.cartCache.Set(ctx, cart)
	return toCartResponse(cart), nil
}

// カートに追加（同一商品は数量加算）。quantityは1以上。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.GetOrCreate(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	//同一商品は加算。価格は「追加時点の価格」で上書きする
	idx := cart.FindItem(in.ProductID)
	newQty := in.Quantity
	if idx >= 0 {
		newQty += cart.Items[idx].Quantity
	}

	//カート時点の在庫チェック（予約はしない。確定時に再チェック）
	if newQty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusConflict, "insufficient stock")
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = newQty
		cart.Items[idx].Name = p.Name
		cart.Items[idx].UnitPrice = p.Price
	} else {
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: in.ProductID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  newQty,
		})
	}

	return u.saveCart(ctx, cart)
}

// 数量変更。quantity==0 は明細削除。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, sessionID string, productID int64, in UpdateCartItemInput) (CartResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, found, err := u.cartRepo.Find(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	idx := cart.FindItem(productID)

	//quantity==0 は削除。明細が無いなら何もしない（冪等）
	if in.Quantity == 0 {
		if idx < 0 {
			return toCartResponse(cart), nil
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return u.saveCart(ctx, cart)
	}

	if idx < 0 {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusConflict, "insufficient stock")
	}

	cart.Items[idx].Quantity = in.Quantity
	return u.saveCart(ctx, cart)
}

// 明細削除
func (u *CartUsecase) RemoveCartItem(ctx context.Context, sessionID string, productID int64) (CartResponse, error) {
	return u.UpdateCartItem(ctx, sessionID, productID, UpdateCartItemInput{Quantity: 0})
}

// カートを空にする。無ければ空カートを作る（冪等）。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}

	if err := u.cartRepo.Clear(ctx, sessionID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	_ = u.cartCache.Delete(ctx, sessionID)

	cart, err := u.cartRepo.GetOrCreate(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCartResponse(cart), nil
}

// 再計算→保存→キャッシュ破棄。どの変更もここを通る。
func (u *CartUsecase) saveCart(ctx context.Context, cart model.Cart) (CartResponse, error) {
	cart.Recalculate()
	cart.UpdatedAt = time.Now()

	if err := u.cartRepo.Upsert(ctx, cart); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	_ = u.cartCache.Delete(ctx, cart.SessionID)

	return toCartResponse(cart), nil
}

func toCartResponse(cart model.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, CartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}
	return CartResponse{
		SessionID: cart.SessionID,
		Items:     items,
		Total:     cart.Total,
	}
}
