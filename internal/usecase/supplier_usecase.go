package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type SupplierUsecase struct {
	supplierRepo repo.SupplierRepository
}

func NewSupplierUsecase(supplierRepo repo.SupplierRepository) *SupplierUsecase {
	return &SupplierUsecase{supplierRepo: supplierRepo}
}

type SaveSupplierInput struct {
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

func (u *SupplierUsecase) AdminCreateSupplier(ctx context.Context, adminUserID int64, in SaveSupplierInput) (model.Supplier, error) {
	if adminUserID <= 0 {
		return model.Supplier{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Supplier{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	taxID := strings.TrimSpace(in.TaxID)
	if taxID == "" || len(taxID) > 20 {
		return model.Supplier{}, NewHTTPError(http.StatusBadRequest, "invalid tax id")
	}

	s, err := u.supplierRepo.Create(ctx, model.Supplier{
		Name:     strings.TrimSpace(in.Name),
		TaxID:    taxID,
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.TrimSpace(in.Email),
		Address:  strings.TrimSpace(in.Address),
		IsActive: true,
	})
	if err != nil {
		//tax_idはuniqueIndex
		return model.Supplier{}, NewHTTPError(http.StatusConflict, "tax id already exists")
	}
	return s, nil
}

type SupplierListOutput struct {
	Items []model.Supplier `json:"items"`
	Total int64            `json:"total"`
}

func (u *SupplierUsecase) AdminListSuppliers(ctx context.Context, page, limit int) (SupplierListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := u.supplierRepo.List(ctx, page, limit)
	if err != nil {
		return SupplierListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return SupplierListOutput{Items: items, Total: total}, nil
}

func (u *SupplierUsecase) AdminGetSupplier(ctx context.Context, supplierID int64) (model.Supplier, error) {
	if supplierID <= 0 {
		return model.Supplier{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	s, err := u.supplierRepo.FindByID(ctx, supplierID)
	if err == repo.ErrNotFound {
		return model.Supplier{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Supplier{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// 更新。tax_idは変更させない。
func (u *SupplierUsecase) AdminUpdateSupplier(ctx context.Context, adminUserID int64, supplierID int64, in SaveSupplierInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if supplierID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	err := u.supplierRepo.Update(ctx, model.Supplier{
		ID:      supplierID,
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *SupplierUsecase) AdminSetSupplierActive(ctx context.Context, adminUserID int64, supplierID int64, active bool) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if supplierID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.supplierRepo.SetActive(ctx, supplierID, active)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
