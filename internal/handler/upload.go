package handler

import (
	"net/http"

	"studio-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type UploadHandler struct {
	uploadService service.UploadService
}

func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

type uploadResponse struct {
	Success bool                   `json:"success"`
	OrderID string                 `json:"orderId"`
	Files   []service.UploadResult `json:"files"`
}

func (h *UploadHandler) UploadFiles(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	orderID, results, err := h.uploadService.Upload(ctx, service.UploadRequest{
		CustomerName: c.FormValue("customerName"),
		OrderID:      c.FormValue("orderId"),
		Files:        form.File["files"],
	})
	if err != nil && len(results) == 0 {
		return toHTTPError(err)
	}

	// a batch where every file was rejected still reports per-file errors
	return c.JSON(http.StatusOK, uploadResponse{
		Success: err == nil,
		OrderID: orderID,
		Files:   results,
	})
}
