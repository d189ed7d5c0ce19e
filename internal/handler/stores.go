// Package handler implements the HTTP endpoints of the kiosk service.
package handler

import (
	"context"
	"time"

	"github.com/iliyamo/prepaid-kiosk/internal/model"
)

// dbTimeout bounds a handler's record store calls.
const dbTimeout = 5 * time.Second

// The store interfaces are satisfied by the repository types.

type userStore interface {
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetRole(ctx context.Context, email, role string) error
}

type tokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type accountStore interface {
	Upsert(ctx context.Context, displayID, name string, active bool) (model.Account, error)
	Search(ctx context.Context, q string) ([]model.Account, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type itemStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.Item, error)
	Create(ctx context.Context, name string, priceCents int64) (model.Item, error)
	Update(ctx context.Context, id, name string, priceCents int64) (model.Item, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type textReq struct {
	Text string `json:"text"`
}

type activeReq struct {
	Active *bool `json:"active"`
}
