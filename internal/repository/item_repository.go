package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/prepaid-kiosk/internal/model"
)

type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

const itemColumns = "id,name,price_cents,is_active,created_at,updated_at"

// List returns all items by name; activeOnly keeps the bookable ones.
func (r *ItemRepo) List(ctx context.Context, activeOnly bool) ([]model.Item, error) {
	q := "SELECT " + itemColumns + " FROM items"
	if activeOnly {
		q += " WHERE is_active=1"
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *ItemRepo) Get(ctx context.Context, id string) (model.Item, error) {
	return scanItem(r.DB.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id=?", id))
}

// Create inserts an active item. Item names are unique.
func (r *ItemRepo) Create(ctx context.Context, name string, priceCents int64) (model.Item, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO items (id, name, price_cents, is_active) VALUES (?,?,?,1)",
		id, strings.TrimSpace(name), priceCents)
	if err != nil {
		if isDuplicate(err) {
			return model.Item{}, ErrConflict
		}
		return model.Item{}, err
	}
	return r.Get(ctx, id)
}

// Update changes name and price. Bookings already recorded keep the price
// they were charged.
func (r *ItemRepo) Update(ctx context.Context, id, name string, priceCents int64) (model.Item, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE items SET name=?, price_cents=? WHERE id=?", strings.TrimSpace(name), priceCents, id)
	if err != nil {
		if isDuplicate(err) {
			return model.Item{}, ErrConflict
		}
		return model.Item{}, err
	}
	if err := affectedOrNotFound(rowsMatched(res)); err != nil {
		return model.Item{}, err
	}
	return r.Get(ctx, id)
}

func (r *ItemRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE items SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(rowsMatched(res))
}

func scanItem(s scanner) (model.Item, error) {
	var it model.Item
	err := s.Scan(&it.ID, &it.Name, &it.PriceCents, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrNotFound
	}
	return it, err
}
