package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ReturnUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewReturnUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *ReturnUsecase {
	return &ReturnUsecase{tx: tx, auditRepo: auditRepo}
}

type ReturnItemInput struct {
	ProductID int64
	Quantity  int64
}

type ReturnOutput struct {
	ID        int64              `json:"id"`
	OrderID   int64              `json:"order_id"`
	Reason    string             `json:"reason"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []model.ReturnItem `json:"items,omitempty"`
}

// 返品申請。配達済み（DELIVERED）の自分の注文に対してのみ。
// 数量は注文した数量を超えられない。
func (u *ReturnUsecase) RequestReturn(ctx context.Context, userID int64, orderID int64, reason string, items []ReturnItemInput) (ReturnOutput, error) {
	if userID <= 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > 500 {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "invalid reason")
	}
	if len(items) == 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}

	var out ReturnOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status != model.OrderStatusDelivered {
			return NewHTTPError(http.StatusConflict, "order is not delivered")
		}

		//注文した数量が上限
		ordered, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		orderedQty := make(map[int64]int64, len(ordered))
		for _, it := range ordered {
			orderedQty[it.ProductID] = it.Quantity
		}

		now := time.Now()
		rows := make([]model.ReturnItem, 0, len(items))
		for _, in := range items {
			if in.ProductID <= 0 || in.Quantity <= 0 {
				return NewHTTPError(http.StatusBadRequest, "invalid item")
			}
			max, ok := orderedQty[in.ProductID]
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "product not in order")
			}
			if in.Quantity > max {
				return NewHTTPError(http.StatusBadRequest, "quantity exceeds ordered quantity")
			}
			rows = append(rows, model.ReturnItem{
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				CreatedAt: now,
			})
		}

		ret := model.Return{
			OrderID:   orderID,
			UserID:    userID,
			Reason:    reason,
			Status:    model.ReturnStatusRequested,
			CreatedAt: now,
			UpdatedAt: now,
		}
		id, err := r.Returns().Create(ctx, ret, rows)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ReturnOutput{
			ID:        id,
			OrderID:   orderID,
			Reason:    reason,
			Status:    string(model.ReturnStatusRequested),
			CreatedAt: now,
			Items:     rows,
		}
		return nil
	})
	if err != nil {
		return ReturnOutput{}, err
	}
	return out, nil
}

func (u *ReturnUsecase) ListMyReturns(ctx context.Context, userID int64) ([]ReturnOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []ReturnOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rets, err := r.Returns().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = make([]ReturnOutput, 0, len(rets))
		for _, ret := range rets {
			outs = append(outs, toReturnOutput(ret, nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outs, nil
}

type AdminReturnListOutput struct {
	Items []ReturnOutput `json:"items"`
	Total int64          `json:"total"`
}

func (u *ReturnUsecase) AdminListReturns(ctx context.Context, status string, page, limit int) (AdminReturnListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if status != "" && !model.ReturnStatus(status).Known() {
		return AdminReturnListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out AdminReturnListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rets, total, err := r.Returns().ListAdmin(ctx, status, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		items := make([]ReturnOutput, 0, len(rets))
		for _, ret := range rets {
			items = append(items, toReturnOutput(ret, nil))
		}
		out = AdminReturnListOutput{Items: items, Total: total}
		return nil
	})
	if err != nil {
		return AdminReturnListOutput{}, err
	}
	return out, nil
}

// 返品ステータス変更。許される遷移は
// REQUESTED→APPROVED / REQUESTED→REJECTED / APPROVED→REFUNDED だけ。
// 承認(APPROVED)と同時に対象数量ぶん在庫を戻す（同一トランザクション）。
func (u *ReturnUsecase) AdminChangeReturnStatus(ctx context.Context, adminUserID int64, returnID int64, newStatus string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if returnID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	status := model.ReturnStatus(newStatus)
	if !status.Known() {
		return NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ret, err := r.Returns().FindByID(ctx, returnID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !returnTransitionAllowed(ret.Status, status) {
			return NewHTTPError(http.StatusConflict, "invalid transition")
		}

		if err := r.Returns().UpdateStatus(ctx, returnID, status); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//承認で在庫を戻す
		if status == model.ReturnStatusApproved {
			items, err := r.Returns().ListItems(ctx, returnID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateReturnStatus,
			ResourceType: model.AuditResourceReturn,
			ResourceID:   returnID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, ret.Status),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, status),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

func returnTransitionAllowed(from, to model.ReturnStatus) bool {
	switch from {
	case model.ReturnStatusRequested:
		return to == model.ReturnStatusApproved || to == model.ReturnStatusRejected
	case model.ReturnStatusApproved:
		return to == model.ReturnStatusRefunded
	}
	return false
}

func toReturnOutput(ret model.Return, items []model.ReturnItem) ReturnOutput {
	return ReturnOutput{
		ID:        ret.ID,
		OrderID:   ret.OrderID,
		Reason:    ret.Reason,
		Status:    string(ret.Status),
		CreatedAt: ret.CreatedAt,
		Items:     items,
	}
}
