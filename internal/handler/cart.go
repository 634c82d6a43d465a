package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"studio-storefront/internal/cart"
	"studio-storefront/internal/dto"
	"studio-storefront/internal/middleware"
	"studio-storefront/internal/model"
	"studio-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService   service.CartService
	uploadService service.UploadService
}

func NewCartHandler(cartService service.CartService, uploadService service.UploadService) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		uploadService: uploadService,
	}
}

type sectionUploadResponse struct {
	Cart    cart.State             `json:"cart"`
	Results []service.UploadResult `json:"results"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	return c.JSON(http.StatusOK, h.cartService.Get(ctx, middleware.SessionKey(c)))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	return c.JSON(http.StatusOK, h.cartService.Clear(ctx, middleware.SessionKey(c)))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	quantity := model.MinQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	state, err := h.cartService.AddItem(ctx, middleware.SessionKey(c), req.ServiceID, quantity)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	state, err := h.cartService.UpdateQuantity(ctx, middleware.SessionKey(c), c.Param("itemID"), req.Quantity)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	state, err := h.cartService.RemoveItem(ctx, middleware.SessionKey(c), c.Param("itemID"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) SetPreferences(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	state, err := h.cartService.SetPreferences(ctx, middleware.SessionKey(c), c.Param("itemID"), req.Preferences)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) SetFiles(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetFilesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	state, err := h.cartService.SetFiles(ctx, middleware.SessionKey(c), c.Param("itemID"), req.UploadedFiles())
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, state)
}

// UploadSectionFiles stores the posted files and appends the ones that were
// accepted to a single section of the item.
func (h *CartHandler) UploadSectionFiles(c echo.Context) error {
	ctx := c.Request().Context()
	sessionKey := middleware.SessionKey(c)
	itemID := c.Param("itemID")

	section, err := strconv.Atoi(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section")
	}

	item, ok := findItem(h.cartService.Get(ctx, sessionKey), itemID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, cart.ErrItemNotFound.Error())
	}
	if section < 0 || section >= item.Quantity {
		return echo.NewHTTPError(http.StatusBadRequest, cart.ErrInvalidSection.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	headers := form.File["files"]
	if free := model.FilesPerSection - len(item.SectionFiles(section)); len(headers) > free {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s, %d more allowed", cart.ErrFileLimit, free))
	}

	_, results, err := h.uploadService.Upload(ctx, service.UploadRequest{Files: headers})
	if err != nil && len(results) == 0 {
		return toHTTPError(err)
	}

	var files []model.UploadedFile
	for _, r := range results {
		if r.OK() {
			files = append(files, r.File(section))
		}
	}

	state := h.cartService.Get(ctx, sessionKey)
	if len(files) > 0 {
		state, err = h.cartService.AddSectionFiles(ctx, sessionKey, itemID, section, files)
		if err != nil {
			return toHTTPError(err)
		}
	}

	return c.JSON(http.StatusOK, sectionUploadResponse{Cart: state, Results: results})
}

func (h *CartHandler) RemoveSectionFile(c echo.Context) error {
	ctx := c.Request().Context()

	section, err := strconv.Atoi(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section")
	}
	fileIndex, err := strconv.Atoi(c.Param("fileIndex"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file index")
	}

	state, err := h.cartService.RemoveSectionFile(ctx, middleware.SessionKey(c), c.Param("itemID"), section, fileIndex)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, state)
}

func findItem(state cart.State, itemID string) (model.CartLineItem, bool) {
	for _, item := range state.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return model.CartLineItem{}, false
}
