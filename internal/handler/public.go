package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/metrics"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// PublicHandler serves the unauthenticated catalog and balance reads.
type PublicHandler struct {
	Items  itemStore
	Ledger ledger.Client
}

func NewPublicHandler(items itemStore, client ledger.Client) *PublicHandler {
	return &PublicHandler{Items: items, Ledger: client}
}

// ListItems returns the bookable items by name.
func (h *PublicHandler) ListItems(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Items.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list items failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type balanceResp struct {
	DisplayID    string      `json:"display_id"`
	Found        bool        `json:"found"`
	BalanceCents money.Cents `json:"balance_cents,omitempty"`
	Balance      string      `json:"balance,omitempty"`
}

// Balance is a one-shot lookup for displays that do not keep a session,
// such as a member scanning a QR code on a phone. An unknown code is a 200
// with found=false, not an error.
func (h *PublicHandler) Balance(c echo.Context) error {
	id := strings.TrimSpace(c.Param("display_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_id required"})
	}
	res, err := h.Ledger.BalanceByDisplayID(c.Request().Context(), id)
	if err != nil {
		metrics.BalanceLookups.WithLabelValues("error").Inc()
		c.Logger().Errorf("balance lookup for %s: %v", id, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "balance lookup failed"})
	}
	out := balanceResp{DisplayID: id, Found: res.Found}
	if res.Found {
		metrics.BalanceLookups.WithLabelValues("found").Inc()
		out.BalanceCents = res.Balance
		out.Balance = money.Format(res.Balance)
	} else {
		metrics.BalanceLookups.WithLabelValues("not_found").Inc()
	}
	return c.JSON(http.StatusOK, out)
}
