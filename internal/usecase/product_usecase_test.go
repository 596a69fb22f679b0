package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// 公開: 一覧・詳細
// =====================

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "pilot", Sort: "price_asc"}
	pRepo.On("ListPublic", mock.Anything, q).Return([]model.Product{{ID: 1, Name: "Pilot Sport 4"}}, int64(1), nil)

	out, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, Q: "pilot", Sort: "price_asc"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, len(out.Items))

	pRepo.AssertExpectations(t)
}

// ページと件数は黙って既定値に丸める
func TestProductUsecase_ListPublicProducts_DefaultsPageAndLimit(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	pRepo.On("ListPublic", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Page == 1 && q.Limit == 20
	})).Return([]model.Product{}, int64(0), nil)

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 0, Limit: 999})
	assert.NoError(t, err)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_ListPublicProducts_InvalidPriceRange(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(inventoryRepoMock), new(auditRepoMock))

	min := dec("100.00")
	max := dec("50.00")
	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, MinPrice: &min, MaxPrice: &max})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestProductUsecase_ListPublicProducts_InvalidSort(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(inventoryRepoMock), new(auditRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, Sort: "bogus"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 非公開商品は一般には存在しない扱い
func TestProductUsecase_GetProductDetail_InactiveIsNotFound(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)

	_, err := uc.GetProductDetail(context.Background(), 1)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_GetProductDetail_Success(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(activeProduct(1, "850.00", 10), nil)

	p, err := uc.GetProductDetail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

// =====================
// 管理: 商品CRUD
// =====================

func TestProductUsecase_AdminCreateProduct_Validation(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(inventoryRepoMock), new(auditRepoMock))

	in := AdminSaveProductInput{Name: " ", Brand: "Michelin", Width: 205, AspectRatio: 55, RimDiameter: 16, Price: dec("850.00")}
	_, err := uc.AdminCreateProduct(context.Background(), 1, in)
	assertErrContains(t, err, "name required")

	in = AdminSaveProductInput{Name: "Pilot Sport 4", Brand: "Michelin", Width: 0, AspectRatio: 55, RimDiameter: 16, Price: dec("850.00")}
	_, err = uc.AdminCreateProduct(context.Background(), 1, in)
	assertErrContains(t, err, "invalid tire size")
}

func TestProductUsecase_AdminCreateProduct_Success(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Pilot Sport 4" &&
			p.Width == 205 && p.AspectRatio == 55 && p.RimDiameter == 16 &&
			p.Price.Equal(dec("850.00")) && p.Stock == 10
	})).Return(model.Product{ID: 123}, nil)

	id, err := uc.AdminCreateProduct(context.Background(), 1, AdminSaveProductInput{
		Name:        " Pilot Sport 4 ",
		Brand:       "Michelin",
		Width:       205,
		AspectRatio: 55,
		RimDiameter: 16,
		LoadSpeed:   "91V",
		Price:       dec("850.00"),
		Stock:       10,
		IsActive:    true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(123), id)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateProduct_NotFound(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	pRepo.On("Update", mock.Anything, mock.AnythingOfType("model.Product")).Return(repo.ErrNotFound)

	err := uc.AdminUpdateProduct(context.Background(), 1, 999, AdminSaveProductInput{
		Name: "X", Brand: "Y", Width: 205, AspectRatio: 55, RimDiameter: 16, Price: dec("1.00"),
	})
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_AdminDeleteProduct_Success(t *testing.T) {
	pRepo := new(productRepoMock)
	uc := NewProductUsecase(pRepo, new(inventoryRepoMock), new(auditRepoMock))

	pRepo.On("SoftDelete", mock.Anything, int64(1)).Return(nil)

	assert.NoError(t, uc.AdminDeleteProduct(context.Background(), 1, 1))
	pRepo.AssertExpectations(t)
}

// =====================
// 管理: 在庫調整
// =====================

func TestProductUsecase_AdminUpdateInventory_NegativeStock(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(inventoryRepoMock), new(auditRepoMock))

	err := uc.AdminUpdateInventory(context.Background(), 1, 1, -1, "reason")
	assertErrContains(t, err, "stock must be >= 0")
}

// 在庫設定＋調整履歴（差分）＋監査ログの3点セット
func TestProductUsecase_AdminUpdateInventory_Success(t *testing.T) {
	pRepo := new(productRepoMock)
	iRepo := new(inventoryRepoMock)
	aRepo := new(auditRepoMock)
	uc := NewProductUsecase(pRepo, iRepo, aRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, "850.00", 5), nil)
	iRepo.On("SetStock", mock.Anything, int64(10), int64(12)).Return(nil)
	iRepo.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(adj model.InventoryAdjustment) bool {
		return adj.ProductID == 10 && adj.AdminUserID == 1 && adj.Delta == 7 && adj.Reason == "restock"
	})).Return(nil)
	aRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateStock &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 10 &&
			l.BeforeJSON == `{"stock":5}` &&
			l.AfterJSON == `{"stock":12}`
	})).Return(nil)

	err := uc.AdminUpdateInventory(context.Background(), 1, 10, 12, " restock ")
	assert.NoError(t, err)

	pRepo.AssertExpectations(t)
	iRepo.AssertExpectations(t)
	aRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateInventory_DBError(t *testing.T) {
	pRepo := new(productRepoMock)
	iRepo := new(inventoryRepoMock)
	uc := NewProductUsecase(pRepo, iRepo, new(auditRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, "850.00", 5), nil)
	iRepo.On("SetStock", mock.Anything, int64(10), int64(12)).Return(errors.New("db down"))

	err := uc.AdminUpdateInventory(context.Background(), 1, 10, 12, "restock")
	assertHTTPStatus(t, err, http.StatusInternalServerError)
}
