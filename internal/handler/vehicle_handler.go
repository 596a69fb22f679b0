package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 車両カタログと適合検索（公開）
type VehicleHandler struct {
	uc *usecase.VehicleUsecase
}

// DI
func NewVehicleHandler(uc *usecase.VehicleUsecase) *VehicleHandler {
	return &VehicleHandler{uc: uc}
}

func (h *VehicleHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/vehicles/brands", h.listBrands)
	e.GET("/vehicles/brands/:id/models", h.listModels)
	e.GET("/vehicles/models/:id/products", h.compatibleProducts)
}

func (h *VehicleHandler) listBrands(c echo.Context) error {
	brands, err := h.uc.ListBrands(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, brands)
}

func (h *VehicleHandler) listModels(c echo.Context) error {
	brandID, ok := paramInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	models, err := h.uc.ListModels(c.Request().Context(), brandID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, models)
}

func (h *VehicleHandler) compatibleProducts(c echo.Context) error {
	modelID, ok := paramInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid year"})
	}

	products, err := h.uc.ListCompatibleProducts(c.Request().Context(), modelID, year)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}
