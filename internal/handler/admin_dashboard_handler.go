package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/stats のHTTP（ADMINのみ、読み取り専用）
type AdminDashboardHandler struct {
	uc                *usecase.DashboardUsecase
	lowStockThreshold int64
}

// DI
func NewAdminDashboardHandler(uc *usecase.DashboardUsecase, lowStockThreshold int64) *AdminDashboardHandler {
	return &AdminDashboardHandler{uc: uc, lowStockThreshold: lowStockThreshold}
}

func (h *AdminDashboardHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/stats", h.stats)
	g.GET("/stats/daily", h.dailySales)
	g.GET("/audit-logs", h.auditLogs)
}

func (h *AdminDashboardHandler) stats(c echo.Context) error {
	out, err := h.uc.GetStats(c.Request().Context(), h.lowStockThreshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminDashboardHandler) dailySales(c echo.Context) error {
	var from, to time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		to = t
	}

	sales, err := h.uc.GetDailySales(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *AdminDashboardHandler) auditLogs(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
