package handler

import (
	"net/http"

	"studio-storefront/internal/catalog"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(catalog *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
	}
}

func (h *CatalogHandler) ListServices(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.ListAll())
}

func (h *CatalogHandler) GetService(c echo.Context) error {
	svc, ok := h.catalog.GetByID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}

	return c.JSON(http.StatusOK, svc)
}
