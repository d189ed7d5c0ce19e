package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/repository"
)

// MemberHandler manages member accounts. Balances are only changed by
// the ledger procedures, never here.
type MemberHandler struct {
	Accounts accountStore
}

func NewMemberHandler(a accountStore) *MemberHandler { return &MemberHandler{Accounts: a} }

// Search lists up to 50 accounts whose display code contains ?q=.
func (h *MemberHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	accounts, err := h.Accounts.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": accounts})
}

type memberReq struct {
	DisplayID string `json:"display_id"`
	Name      string `json:"name"`
	Active    *bool  `json:"active"`
}

// Upsert creates or updates the account for display_id. Name defaults to
// the code and active to true.
func (h *MemberHandler) Upsert(c echo.Context) error {
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.DisplayID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_id required"})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Accounts.Upsert(ctx, req.DisplayID, req.Name, active)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save member failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *MemberHandler) SetActive(c echo.Context) error {
	var req activeReq
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Accounts.SetActive(ctx, c.Param("id"), *req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update member failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
