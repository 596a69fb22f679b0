package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルート登録に必要なHandler一式
type Handlers struct {
	Auth           *handler.AuthHandler
	Product        *handler.ProductHandler
	Cart           *handler.CartHandler
	Vehicle        *handler.VehicleHandler
	Coupon         *handler.CouponHandler
	Order          *handler.OrderHandler
	Address        *handler.AddressHandler
	Return         *handler.ReturnHandler
	AdminProduct   *handler.AdminProductHandler
	AdminOrder     *handler.AdminOrderHandler
	AdminPromotion *handler.AdminPromotionHandler
	AdminSupplier  *handler.AdminSupplierHandler
	AdminReturn    *handler.AdminReturnHandler
	AdminDashboard *handler.AdminDashboardHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	//公開
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Vehicle.RegisterRoutes(e)
	h.Coupon.RegisterRoutes(e)

	//要ログイン
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Address.RegisterRoutes(e, cfg, userRepo)
	h.Return.RegisterRoutes(e, cfg, userRepo)

	//ADMINのみ
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminPromotion.RegisterRoutes(e, cfg, userRepo)
	h.AdminSupplier.RegisterRoutes(e, cfg, userRepo)
	h.AdminReturn.RegisterRoutes(e, cfg, userRepo)
	h.AdminDashboard.RegisterRoutes(e, cfg, userRepo)
}
