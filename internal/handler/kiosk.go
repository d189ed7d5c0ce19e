package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/catalog"
	"github.com/iliyamo/prepaid-kiosk/internal/kiosk"
)

// KioskHandler drives booking sessions. Every action answers with the
// session's current snapshot.
type KioskHandler struct {
	Sessions *kiosk.Sessions
	Items    itemStore
	Deps     kiosk.Deps
}

func NewKioskHandler(s *kiosk.Sessions, items itemStore, deps kiosk.Deps) *KioskHandler {
	return &KioskHandler{Sessions: s, Items: items, Deps: deps}
}

// Create opens a booking session on the active catalog. ?display_id=
// prefills the identifier, as a scanned member QR code does.
func (h *KioskHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Items.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load items failed"})
	}
	form := kiosk.NewBookingForm(h.Deps, items, c.QueryParam("display_id"))
	id := h.Sessions.AddBooking(form)
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "session": form.Snapshot()})
}

// withForm resolves :id and runs fn, answering 404 for unknown sessions.
func (h *KioskHandler) withForm(c echo.Context, fn func(*kiosk.BookingForm) error) error {
	form, err := h.Sessions.Booking(c.Param("id"))
	if err != nil {
		return sessionNotFound(c)
	}
	return fn(form)
}

func (h *KioskHandler) Get(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

func (h *KioskHandler) SetIdentifier(c echo.Context) error {
	var req textReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		f.SetIdentifier(req.Text)
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

func (h *KioskHandler) RetryLookup(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		f.RetryLookup()
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

type selectionReq struct {
	ItemID string `json:"item_id"`
}

func (h *KioskHandler) Select(c echo.Context) error {
	var req selectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		if err := f.Select(req.ItemID); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": catalog.ErrItemUnavailable.Error(), "session": f.Snapshot()})
		}
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

// SetQuantity takes the quantity as typed; bad input becomes 1.
func (h *KioskHandler) SetQuantity(c echo.Context) error {
	var req textReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		f.SetQuantityText(req.Text)
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

func (h *KioskHandler) Increment(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		f.Increment()
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

func (h *KioskHandler) Decrement(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		f.Decrement()
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

// Book submits the debit.
func (h *KioskHandler) Book(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.BookingForm) error {
		snap, err := f.Submit(c.Request().Context())
		if err != nil {
			return formError(c, err, snap)
		}
		return c.JSON(http.StatusOK, snap)
	})
}

func (h *KioskHandler) Delete(c echo.Context) error {
	if err := h.Sessions.RemoveBooking(c.Param("id")); err != nil {
		return sessionNotFound(c)
	}
	return c.NoContent(http.StatusNoContent)
}
