package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/catalog"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
	"github.com/iliyamo/prepaid-kiosk/internal/repository"
)

// ItemHandler manages the catalog. OnChange runs after every successful
// write; the server uses it to drop the cached public listing.
type ItemHandler struct {
	Items    itemStore
	OnChange func(ctx context.Context)
}

func NewItemHandler(items itemStore, onChange func(ctx context.Context)) *ItemHandler {
	return &ItemHandler{Items: items, OnChange: onChange}
}

// List returns every item, active or not, by name.
func (h *ItemHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Items.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list items failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// itemReq carries the price as typed by staff, e.g. "1,50".
type itemReq struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func (r itemReq) parse() (string, money.Cents, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", 0, errors.New("name required")
	}
	price, err := money.Parse(r.Price)
	if err != nil {
		return "", 0, errors.New("enter a valid price")
	}
	if price > catalog.MaxPriceCents {
		return "", 0, errors.New("price too large")
	}
	return name, price, nil
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name, price, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it, err := h.Items.Create(ctx, name, int64(price))
	if err != nil {
		return itemWriteError(c, err)
	}
	h.changed(ctx)
	return c.JSON(http.StatusCreated, it)
}

func (h *ItemHandler) Update(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name, price, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it, err := h.Items.Update(ctx, c.Param("id"), name, int64(price))
	if err != nil {
		return itemWriteError(c, err)
	}
	h.changed(ctx)
	return c.JSON(http.StatusOK, it)
}

func (h *ItemHandler) SetActive(c echo.Context) error {
	var req activeReq
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Items.SetActive(ctx, c.Param("id"), *req.Active); err != nil {
		return itemWriteError(c, err)
	}
	h.changed(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandler) changed(ctx context.Context) {
	if h.OnChange != nil {
		h.OnChange(ctx)
	}
}

func itemWriteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "item name already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save item failed"})
}

