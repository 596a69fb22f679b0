package usecase

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminOrderUsecaseForTest(txRepos *stubTxRepos, audit *auditRepoMock) *AdminOrderUsecase {
	return NewAdminOrderUsecase(&stubTxManager{repos: txRepos}, audit)
}

func TestAdminOrderUsecase_ChangeStatus_UnknownStatus(t *testing.T) {
	uc := newAdminOrderUsecaseForTest(newStubTxRepos(), new(auditRepoMock))

	err := uc.ChangeStatus(context.Background(), 1, 42, ChangeStatusInput{NewStatus: "SHIPPED"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 同じステータスへの変更は何もしない（イベントも監査も増えない）
func TestAdminOrderUsecase_ChangeStatus_SameStatus_NoOp(t *testing.T) {
	txRepos := newStubTxRepos()
	audit := new(auditRepoMock)
	uc := newAdminOrderUsecaseForTest(txRepos, audit)

	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusConfirmed}, nil)

	err := uc.ChangeStatus(context.Background(), 1, 42, ChangeStatusInput{NewStatus: "CONFIRMED"})
	assert.NoError(t, err)

	txRepos.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	txRepos.orderEvents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 終端（DELIVERED/CANCELLED）からは動かせない
func TestAdminOrderUsecase_ChangeStatus_FromTerminal_Conflict(t *testing.T) {
	txRepos := newStubTxRepos()
	uc := newAdminOrderUsecaseForTest(txRepos, new(auditRepoMock))

	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusDelivered}, nil)

	err := uc.ChangeStatus(context.Background(), 1, 42, ChangeStatusInput{NewStatus: "CONFIRMED"})
	assertHTTPStatus(t, err, http.StatusConflict)

	txRepos.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_ChangeStatus_Success_WithEventAndAudit(t *testing.T) {
	txRepos := newStubTxRepos()
	audit := new(auditRepoMock)
	uc := newAdminOrderUsecaseForTest(txRepos, audit)

	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusPending}, nil)
	txRepos.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusConfirmed).Return(nil)
	txRepos.orderEvents.On("Create", mock.Anything, mock.MatchedBy(func(ev model.OrderStatusEvent) bool {
		return ev.OrderID == 42 && ev.Status == model.OrderStatusConfirmed && ev.ChangedBy == 1 && ev.Comment == "ok"
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 42 &&
			l.BeforeJSON == `{"status":"PENDING"}` &&
			l.AfterJSON == `{"status":"CONFIRMED"}`
	})).Return(nil)

	err := uc.ChangeStatus(context.Background(), 1, 42, ChangeStatusInput{NewStatus: "CONFIRMED", Comment: " ok "})
	assert.NoError(t, err)

	txRepos.orders.AssertExpectations(t)
	txRepos.orderEvents.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// キャンセルは明細ぶんの在庫を戻す
func TestAdminOrderUsecase_ChangeStatus_Cancel_RestocksItems(t *testing.T) {
	txRepos := newStubTxRepos()
	audit := new(auditRepoMock)
	uc := newAdminOrderUsecaseForTest(txRepos, audit)

	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, Status: model.OrderStatusConfirmed}, nil)
	txRepos.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCancelled).Return(nil)
	txRepos.orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}, nil)
	txRepos.inventory.On("IncreaseStock", mock.Anything, int64(1), int64(2)).Return(nil)
	txRepos.inventory.On("IncreaseStock", mock.Anything, int64(2), int64(1)).Return(nil)
	txRepos.orderEvents.On("Create", mock.Anything, mock.Anything).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.ChangeStatus(context.Background(), 1, 42, ChangeStatusInput{NewStatus: "CANCELLED"})
	assert.NoError(t, err)

	txRepos.inventory.AssertExpectations(t)
}

// =====================
// SetTrackingCode
// =====================

func TestAdminOrderUsecase_SetTrackingCode_Success(t *testing.T) {
	txRepos := newStubTxRepos()
	audit := new(auditRepoMock)
	uc := newAdminOrderUsecaseForTest(txRepos, audit)

	txRepos.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, TrackingCode: ""}, nil)
	txRepos.orders.On("SetTrackingCode", mock.Anything, int64(42), "TRK-001").Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionSetTrackingCode && l.AfterJSON == `{"tracking_code":"TRK-001"}`
	})).Return(nil)

	err := uc.SetTrackingCode(context.Background(), 1, 42, " TRK-001 ")
	assert.NoError(t, err)

	txRepos.orders.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_SetTrackingCode_EmptyCode(t *testing.T) {
	uc := newAdminOrderUsecaseForTest(newStubTxRepos(), new(auditRepoMock))

	err := uc.SetTrackingCode(context.Background(), 1, 42, "  ")
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// List
// =====================

func TestAdminOrderUsecase_List_InvalidStatusFilter(t *testing.T) {
	uc := newAdminOrderUsecaseForTest(newStubTxRepos(), new(auditRepoMock))

	_, err := uc.List(context.Background(), AdminOrderListInput{Page: 1, Limit: 20, Status: "BOGUS"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAdminOrderUsecase_List_Success(t *testing.T) {
	txRepos := newStubTxRepos()
	uc := newAdminOrderUsecaseForTest(txRepos, new(auditRepoMock))

	orders := []model.Order{{ID: 1, Status: model.OrderStatusPending}, {ID: 2, Status: model.OrderStatusConfirmed}}
	txRepos.orders.On("ListAdmin", mock.Anything, mock.Anything).Return(orders, int64(2), nil)

	out, err := uc.List(context.Background(), AdminOrderListInput{Page: 1, Limit: 20})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, 2, len(out.Items))
}
