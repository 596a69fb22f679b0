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

type PromotionUsecase struct {
	promotionRepo repo.PromotionRepository
}

func NewPromotionUsecase(promotionRepo repo.PromotionRepository) *PromotionUsecase {
	return &PromotionUsecase{promotionRepo: promotionRepo}
}

type AdminCreatePromotionInput struct {
	Name         string
	Description  string
	DiscountType string
	Value        decimal.Decimal
	StartsAt     time.Time
	EndsAt       time.Time
	ProductIDs   []int64
}

func (u *PromotionUsecase) AdminCreatePromotion(ctx context.Context, adminUserID int64, in AdminCreatePromotionInput) (model.Promotion, error) {
	if adminUserID <= 0 {
		return model.Promotion{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	dt := model.DiscountType(in.DiscountType)
	if !dt.Known() {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}
	if !in.Value.IsPositive() {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "value must be > 0")
	}
	if dt == model.DiscountTypePercent && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "percent value must be <= 100")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return model.Promotion{}, NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
	}

	now := time.Now()
	p, err := u.promotionRepo.Create(ctx, model.Promotion{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		DiscountType: dt,
		Value:        in.Value,
		StartsAt:     in.StartsAt,
		EndsAt:       in.EndsAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.Promotion{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if len(in.ProductIDs) > 0 {
		if err := u.promotionRepo.AssignProducts(ctx, p.ID, in.ProductIDs); err != nil {
			return model.Promotion{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}
	return p, nil
}

type PromotionListOutput struct {
	Items []model.Promotion `json:"items"`
	Total int64             `json:"total"`
}

func (u *PromotionUsecase) AdminListPromotions(ctx context.Context, page, limit int) (PromotionListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := u.promotionRepo.List(ctx, page, limit)
	if err != nil {
		return PromotionListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return PromotionListOutput{Items: items, Total: total}, nil
}

// 対象商品の割り当てを置き換える
func (u *PromotionUsecase) AdminAssignProducts(ctx context.Context, adminUserID int64, promotionID int64, productIDs []int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if promotionID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	for _, id := range productIDs {
		if id <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid product id")
		}
	}

	if _, err := u.promotionRepo.FindByID(ctx, promotionID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.promotionRepo.AssignProducts(ctx, promotionID, productIDs); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *PromotionUsecase) AdminSetPromotionActive(ctx context.Context, adminUserID int64, promotionID int64, active bool) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if promotionID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.promotionRepo.SetActive(ctx, promotionID, active)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
