package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /admin/coupons と /admin/promotions のHTTP（ADMINのみ）
type AdminPromotionHandler struct {
	couponUC *usecase.CouponUsecase
	promoUC  *usecase.PromotionUsecase
}

// DI
func NewAdminPromotionHandler(couponUC *usecase.CouponUsecase, promoUC *usecase.PromotionUsecase) *AdminPromotionHandler {
	return &AdminPromotionHandler{couponUC: couponUC, promoUC: promoUC}
}

type CreateCouponRequest struct {
	Code         string          `json:"code"`
	Description  string          `json:"description"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	MinPurchase  decimal.Decimal `json:"min_purchase"`
	MaxUses      *int64          `json:"max_uses"`
	StartsAt     time.Time       `json:"starts_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

type CreatePromotionRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       time.Time       `json:"ends_at"`
	ProductIDs   []int64         `json:"product_ids"`
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type AssignProductsRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

func (h *AdminPromotionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/coupons", h.createCoupon)
	admin.GET("/coupons", h.listCoupons)
	admin.PATCH("/coupons/:id/active", h.setCouponActive)

	admin.POST("/promotions", h.createPromotion)
	admin.GET("/promotions", h.listPromotions)
	admin.PUT("/promotions/:id/products", h.assignProducts)
	admin.PATCH("/promotions/:id/active", h.setPromotionActive)
}

func (h *AdminPromotionHandler) createCoupon(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	coupon, err := h.couponUC.AdminCreateCoupon(c.Request().Context(), adminID, usecase.AdminCreateCouponInput{
		Code:         req.Code,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		MinPurchase:  req.MinPurchase,
		MaxUses:      req.MaxUses,
		StartsAt:     req.StartsAt,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, coupon)
}

func (h *AdminPromotionHandler) listCoupons(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.couponUC.AdminListCoupons(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminPromotionHandler) setCouponActive(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	couponID, ok := paramInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.couponUC.AdminSetCouponActive(c.Request().Context(), adminID, couponID, req.IsActive); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminPromotionHandler) createPromotion(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreatePromotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	promo, err := h.promoUC.AdminCreatePromotion(c.Request().Context(), adminID, usecase.AdminCreatePromotionInput{
		Name:         req.Name,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		ProductIDs:   req.ProductIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, promo)
}

func (h *AdminPromotionHandler) listPromotions(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.promoUC.AdminListPromotions(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminPromotionHandler) assignProducts(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	promotionID, ok := paramInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AssignProductsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.promoUC.AdminAssignProducts(c.Request().Context(), adminID, promotionID, req.ProductIDs); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminPromotionHandler) setPromotionActive(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	promotionID, ok := paramInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.promoUC.AdminSetPromotionActive(c.Request().Context(), adminID, promotionID, req.IsActive); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
