package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type CouponUsecase struct {
	couponRepo repo.CouponRepository
}

func NewCouponUsecase(couponRepo repo.CouponRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo}
}

type ValidateCouponInput struct {
	Code     string
	Subtotal decimal.Decimal
}

type ValidateCouponOutput struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Reason   string          `json:"reason,omitempty"`
}

// クーポンの事前チェック（カート画面用）。
// ここでvalidでも確定時に上限で弾かれることはある。
func (u *CouponUsecase) ValidateCoupon(ctx context.Context, in ValidateCouponInput) (ValidateCouponOutput, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return ValidateCouponOutput{}, NewHTTPError(http.StatusBadRequest, "code required")
	}
	if in.Subtotal.IsNegative() {
		return ValidateCouponOutput{}, NewHTTPError(http.StatusBadRequest, "invalid subtotal")
	}

	c, err := u.couponRepo.FindByCode(ctx, code)
	if err == repo.ErrNotFound {
		return ValidateCouponOutput{Valid: false, Discount: decimal.Zero, Reason: "coupon not found"}, nil
	}
	if err != nil {
		return ValidateCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d, reason := evaluateCoupon(c, in.Subtotal, time.Now())
	if reason != "" {
		return ValidateCouponOutput{Valid: false, Discount: decimal.Zero, Reason: reason}, nil
	}
	return ValidateCouponOutput{Valid: true, Discount: d}, nil
}

type AdminCreateCouponInput struct {
	Code         string
	Description  string
	DiscountType string
	Value        decimal.Decimal
	MinPurchase  decimal.Decimal
	MaxUses      *int64
	StartsAt     time.Time
	ExpiresAt    time.Time
}

func (u *CouponUsecase) AdminCreateCoupon(ctx context.Context, adminUserID int64, in AdminCreateCouponInput) (model.Coupon, error) {
	if adminUserID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || len(code) > 50 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid code")
	}
	dt := model.DiscountType(in.DiscountType)
	if !dt.Known() {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}
	if !in.Value.IsPositive() {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "value must be > 0")
	}
	if dt == model.DiscountTypePercent && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "percent value must be <= 100")
	}
	if in.MinPurchase.IsNegative() {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "min_purchase must be >= 0")
	}
	if in.MaxUses != nil && *in.MaxUses < 1 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "max_uses must be >= 1")
	}
	if !in.ExpiresAt.After(in.StartsAt) {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "expires_at must be after starts_at")
	}

	now := time.Now()
	c, err := u.couponRepo.Create(ctx, model.Coupon{
		Code:         code,
		Description:  in.Description,
		DiscountType: dt,
		Value:        in.Value,
		MinPurchase:  in.MinPurchase,
		MaxUses:      in.MaxUses,
		StartsAt:     in.StartsAt,
		ExpiresAt:    in.ExpiresAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		//コード重複はuniqueIndexで弾かれる
		return model.Coupon{}, NewHTTPError(http.StatusConflict, "code already exists")
	}
	return c, nil
}

type CouponListOutput struct {
	Items []model.Coupon `json:"items"`
	Total int64          `json:"total"`
}

func (u *CouponUsecase) AdminListCoupons(ctx context.Context, page, limit int) (CouponListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := u.couponRepo.List(ctx, page, limit)
	if err != nil {
		return CouponListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return CouponListOutput{Items: items, Total: total}, nil
}

func (u *CouponUsecase) AdminSetCouponActive(ctx context.Context, adminUserID int64, couponID int64, active bool) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.couponRepo.SetActive(ctx, couponID, active)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
