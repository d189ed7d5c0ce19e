package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/kiosk"
	"github.com/iliyamo/prepaid-kiosk/internal/middleware"
)

// PaymentHandler drives the staff desk's payment sessions. A session
// belongs to the staff member who opened it; credits are attributed to
// them.
type PaymentHandler struct {
	Sessions *kiosk.Sessions
	Deps     kiosk.Deps
}

func NewPaymentHandler(s *kiosk.Sessions, deps kiosk.Deps) *PaymentHandler {
	return &PaymentHandler{Sessions: s, Deps: deps}
}

func (h *PaymentHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	form := kiosk.NewPaymentForm(h.Deps, uid)
	id := h.Sessions.AddPayment(form)
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "session": form.Snapshot()})
}

func (h *PaymentHandler) withForm(c echo.Context, fn func(*kiosk.PaymentForm) error) error {
	form, err := h.Sessions.Payment(c.Param("id"))
	if err != nil {
		return sessionNotFound(c)
	}
	if uid, _ := middleware.UserID(c); uid != form.ActorID() {
		return sessionNotFound(c)
	}
	return fn(form)
}

func (h *PaymentHandler) Get(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

func (h *PaymentHandler) Delete(c echo.Context) error {
	return h.withForm(c, func(*kiosk.PaymentForm) error {
		if err := h.Sessions.RemovePayment(c.Param("id")); err != nil {
			return sessionNotFound(c)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func (h *PaymentHandler) SetIdentifier(c echo.Context) error {
	var req textReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		f.SetIdentifier(req.Text)
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

func (h *PaymentHandler) RetryLookup(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		f.RetryLookup()
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

// SetAmount stores the amount text; it is parsed when submitting.
func (h *PaymentHandler) SetAmount(c echo.Context) error {
	var req textReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		f.SetAmountText(req.Text)
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

// Quick replaces the amount with one of the quick amounts (:units whole
// currency units).
func (h *PaymentHandler) Quick(c echo.Context) error {
	units, err := strconv.ParseInt(c.Param("units"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		if err := f.ApplyQuickAmount(units); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "session": f.Snapshot()})
		}
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

type methodReq struct {
	Method string `json:"method"`
}

func (h *PaymentHandler) SetMethod(c echo.Context) error {
	var req methodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		if err := f.SetMethod(req.Method); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "session": f.Snapshot()})
		}
		return c.JSON(http.StatusOK, f.Snapshot())
	})
}

// Submit records the credit.
func (h *PaymentHandler) Submit(c echo.Context) error {
	return h.withForm(c, func(f *kiosk.PaymentForm) error {
		snap, err := f.Submit(c.Request().Context())
		if err != nil {
			return formError(c, err, snap)
		}
		return c.JSON(http.StatusOK, snap)
	})
}
