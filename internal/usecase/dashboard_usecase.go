package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 管理ダッシュボードの集計（読み取りのみ）
type DashboardUsecase struct {
	orderRepo   repo.OrderRepository
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
}

func NewDashboardUsecase(orderRepo repo.OrderRepository, productRepo repo.ProductRepository, auditRepo repo.AuditLogRepository) *DashboardUsecase {
	return &DashboardUsecase{orderRepo: orderRepo, productRepo: productRepo, auditRepo: auditRepo}
}

type DashboardStats struct {
	TodaySalesTotal decimal.Decimal   `json:"today_sales_total"`
	TodayOrderCount int64             `json:"today_order_count"`
	TopProducts     []repo.TopProduct `json:"top_products"`
	LowStock        []model.Product   `json:"low_stock"`
}

// 今日の売上・売れ筋・在庫僅少をまとめて返す（キャンセル分は除外済み）
func (u *DashboardUsecase) GetStats(ctx context.Context, lowStockThreshold int64) (DashboardStats, error) {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	total, count, err := u.orderRepo.SalesTotalSince(ctx, startOfDay)
	if err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	top, err := u.orderRepo.TopSellingProducts(ctx, 5)
	if err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	low, err := u.productRepo.ListLowStock(ctx, lowStockThreshold, 20)
	if err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return DashboardStats{
		TodaySalesTotal: total,
		TodayOrderCount: count,
		TopProducts:     top,
		LowStock:        low,
	}, nil
}

// 日別売上（デフォルトは直近30日）
func (u *DashboardUsecase) GetDailySales(ctx context.Context, from, to time.Time) ([]repo.DailySales, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !from.Before(to) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	sales, err := u.orderRepo.DailySalesBetween(ctx, from, to)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return sales, nil
}

// 管理者操作の監査ログ（新しい順）
func (u *DashboardUsecase) ListAuditLogs(ctx context.Context, page, limit int) ([]model.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
