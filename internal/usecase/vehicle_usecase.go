package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 車両カタログと適合検索
type VehicleUsecase struct {
	vehicleRepo repo.VehicleRepository
	productRepo repo.ProductRepository
}

func NewVehicleUsecase(vehicleRepo repo.VehicleRepository, productRepo repo.ProductRepository) *VehicleUsecase {
	return &VehicleUsecase{vehicleRepo: vehicleRepo, productRepo: productRepo}
}

func (u *VehicleUsecase) ListBrands(ctx context.Context) ([]model.VehicleBrand, error) {
	brands, err := u.vehicleRepo.ListBrands(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return brands, nil
}

func (u *VehicleUsecase) ListModels(ctx context.Context, brandID int64) ([]model.VehicleModel, error) {
	if brandID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}
	models, err := u.vehicleRepo.ListModelsByBrand(ctx, brandID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return models, nil
}

// 車種×年式で適合するタイヤを探す
func (u *VehicleUsecase) ListCompatibleProducts(ctx context.Context, modelID int64, year int) ([]model.Product, error) {
	if modelID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid model id")
	}
	if year < 1950 || year > time.Now().Year()+1 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid year")
	}

	products, err := u.vehicleRepo.ListCompatibleProducts(ctx, modelID, year)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

type FitmentInput struct {
	VehicleModelID int64
	YearFrom       int
	YearTo         int
}

// 商品への適合割り当て（置き換え）
func (u *VehicleUsecase) AdminAssignFitments(ctx context.Context, adminUserID int64, productID int64, fitments []FitmentInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	rows := make([]model.ProductFitment, 0, len(fitments))
	for _, f := range fitments {
		if f.VehicleModelID <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid vehicle model id")
		}
		if f.YearFrom <= 0 || f.YearTo < f.YearFrom {
			return NewHTTPError(http.StatusBadRequest, "invalid year range")
		}
		rows = append(rows, model.ProductFitment{
			ProductID:      productID,
			VehicleModelID: f.VehicleModelID,
			YearFrom:       f.YearFrom,
			YearTo:         f.YearTo,
		})
	}

	err := u.vehicleRepo.AssignFitments(ctx, productID, rows)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
