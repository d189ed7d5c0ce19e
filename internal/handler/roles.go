package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/model"
	"github.com/iliyamo/prepaid-kiosk/internal/repository"
)

// RoleHandler lets staff promote or demote users.
type RoleHandler struct {
	Users  userStore
	Tokens tokenStore
}

func NewRoleHandler(u userStore, t tokenStore) *RoleHandler {
	return &RoleHandler{Users: u, Tokens: t}
}

type roleReq struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SetRole calls admin_set_role and revokes the user's refresh tokens so
// the new role is picked up at the next login.
func (h *RoleHandler) SetRole(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleUser {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or USER"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SetRole(ctx, req.Email, role); err != nil {
		var rerr *repository.RoleError
		if errors.As(err, &rerr) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": rerr.Message})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "set role failed"})
	}
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		c.Logger().Warnf("revoke tokens of user %d: %v", u.ID, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}
