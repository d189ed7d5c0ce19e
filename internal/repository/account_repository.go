package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/prepaid-kiosk/internal/model"
)

// SearchLimit caps member search results.
const SearchLimit = 50

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,display_id,name,is_active,created_at,updated_at"

// Upsert creates the account for displayID or updates its name and active
// flag. An empty name defaults to the display code. The balance is never
// written here.
func (r *AccountRepo) Upsert(ctx context.Context, displayID, name string, active bool) (model.Account, error) {
	displayID = strings.TrimSpace(displayID)
	name = strings.TrimSpace(name)
	if name == "" {
		name = displayID
	}
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO accounts (id, display_id, name, is_active) VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE name=VALUES(name), is_active=VALUES(is_active)`,
		uuid.NewString(), displayID, name, active)
	if err != nil {
		return model.Account{}, err
	}
	return r.GetByDisplayID(ctx, displayID)
}

func (r *AccountRepo) GetByDisplayID(ctx context.Context, displayID string) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE display_id=? LIMIT 1", strings.TrimSpace(displayID))
	return scanAccount(row)
}

// Search matches a display code substring. An empty query lists the first
// accounts by code.
func (r *AccountRepo) Search(ctx context.Context, q string) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE display_id LIKE ? ORDER BY display_id LIMIT ?",
		"%"+escapeLike(strings.TrimSpace(q))+"%", SearchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE accounts SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(rowsMatched(res))
}

type scanner interface{ Scan(dest ...any) error }

func scanAccount(s scanner) (model.Account, error) {
	var a model.Account
	err := s.Scan(&a.ID, &a.DisplayID, &a.Name, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
