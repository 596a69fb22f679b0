package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// ValidateCoupon（カート画面の事前チェック）
// =====================

func TestCouponUsecase_ValidateCoupon_NotFoundIsInvalidNotError(t *testing.T) {
	cRepo := new(couponRepoMock)
	uc := NewCouponUsecase(cRepo)

	cRepo.On("FindByCode", mock.Anything, "NOPE").Return(model.Coupon{}, repo.ErrNotFound)

	out, err := uc.ValidateCoupon(context.Background(), ValidateCouponInput{Code: "nope", Subtotal: dec("1700.00")})
	assert.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, "coupon not found", out.Reason)
}

func TestCouponUsecase_ValidateCoupon_Valid(t *testing.T) {
	cRepo := new(couponRepoMock)
	uc := NewCouponUsecase(cRepo)

	now := time.Now()
	cRepo.On("FindByCode", mock.Anything, "SUMMER10").Return(model.Coupon{
		ID:           1,
		Code:         "SUMMER10",
		DiscountType: model.DiscountTypePercent,
		Value:        dec("10"),
		StartsAt:     now.AddDate(0, 0, -1),
		ExpiresAt:    now.AddDate(0, 0, 1),
		IsActive:     true,
	}, nil)

	out, err := uc.ValidateCoupon(context.Background(), ValidateCouponInput{Code: " summer10 ", Subtotal: dec("1700.00")})
	assert.NoError(t, err)
	assert.True(t, out.Valid)
	assert.True(t, out.Discount.Equal(dec("170.00")), "got %s", out.Discount)
	assert.Empty(t, out.Reason)
}

func TestCouponUsecase_ValidateCoupon_ExpiredGivesReason(t *testing.T) {
	cRepo := new(couponRepoMock)
	uc := NewCouponUsecase(cRepo)

	now := time.Now()
	cRepo.On("FindByCode", mock.Anything, "OLD").Return(model.Coupon{
		DiscountType: model.DiscountTypePercent,
		Value:        dec("10"),
		StartsAt:     now.AddDate(0, -2, 0),
		ExpiresAt:    now.AddDate(0, -1, 0),
		IsActive:     true,
	}, nil)

	out, err := uc.ValidateCoupon(context.Background(), ValidateCouponInput{Code: "OLD", Subtotal: dec("1700.00")})
	assert.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, "coupon has expired", out.Reason)
}

func TestCouponUsecase_ValidateCoupon_EmptyCode(t *testing.T) {
	uc := NewCouponUsecase(new(couponRepoMock))

	_, err := uc.ValidateCoupon(context.Background(), ValidateCouponInput{Code: "  ", Subtotal: dec("100.00")})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// AdminCreateCoupon
// =====================

func TestCouponUsecase_AdminCreateCoupon_PercentOver100(t *testing.T) {
	uc := NewCouponUsecase(new(couponRepoMock))

	_, err := uc.AdminCreateCoupon(context.Background(), 1, AdminCreateCouponInput{
		Code:         "BIG",
		DiscountType: "PERCENT",
		Value:        dec("150"),
		StartsAt:     time.Now(),
		ExpiresAt:    time.Now().AddDate(0, 1, 0),
	})
	assertErrContains(t, err, "percent value must be <= 100")
}

func TestCouponUsecase_AdminCreateCoupon_CodeUppercased(t *testing.T) {
	cRepo := new(couponRepoMock)
	uc := NewCouponUsecase(cRepo)

	cRepo.On("Create", mock.Anything, mock.MatchedBy(func(c model.Coupon) bool {
		return c.Code == "SUMMER10" && c.IsActive
	})).Return(model.Coupon{ID: 1, Code: "SUMMER10"}, nil)

	out, err := uc.AdminCreateCoupon(context.Background(), 1, AdminCreateCouponInput{
		Code:         " summer10 ",
		DiscountType: "PERCENT",
		Value:        dec("10"),
		StartsAt:     time.Now(),
		ExpiresAt:    time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(t, err)
	assert.Equal(t, "SUMMER10", out.Code)

	cRepo.AssertExpectations(t)
}

// コード重複は409
func TestCouponUsecase_AdminCreateCoupon_DuplicateCode_Conflict(t *testing.T) {
	cRepo := new(couponRepoMock)
	uc := NewCouponUsecase(cRepo)

	cRepo.On("Create", mock.Anything, mock.Anything).Return(model.Coupon{}, errors.New("duplicate key value violates unique constraint"))

	_, err := uc.AdminCreateCoupon(context.Background(), 1, AdminCreateCouponInput{
		Code:         "SUMMER10",
		DiscountType: "PERCENT",
		Value:        dec("10"),
		StartsAt:     time.Now(),
		ExpiresAt:    time.Now().AddDate(0, 1, 0),
	})
	assertHTTPStatus(t, err, http.StatusConflict)
}

func TestCouponUsecase_AdminCreateCoupon_WindowMustBeOrdered(t *testing.T) {
	uc := NewCouponUsecase(new(couponRepoMock))

	now := time.Now()
	_, err := uc.AdminCreateCoupon(context.Background(), 1, AdminCreateCouponInput{
		Code:         "X",
		DiscountType: "AMOUNT",
		Value:        dec("10.00"),
		StartsAt:     now,
		ExpiresAt:    now,
	})
	assertErrContains(t, err, "expires_at must be after starts_at")
}
