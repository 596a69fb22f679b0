package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 支払い方法カタログ（読み取りのみ）
type PaymentMethodUsecase struct {
	paymentMethods repo.PaymentMethodRepository
}

func NewPaymentMethodUsecase(paymentMethods repo.PaymentMethodRepository) *PaymentMethodUsecase {
	return &PaymentMethodUsecase{paymentMethods: paymentMethods}
}

func (u *PaymentMethodUsecase) ListActive(ctx context.Context) ([]model.PaymentMethod, error) {
	methods, err := u.paymentMethods.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return methods, nil
}
