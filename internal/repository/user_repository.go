package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/prepaid-kiosk/internal/model"
	"github.com/iliyamo/prepaid-kiosk/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password and inserts the user. Emails are stored trimmed
// and lower case.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id,email,password_hash,role,is_active,created_at,updated_at"

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// SetRole changes a user's role through the admin_set_role procedure,
// which refuses unknown emails and roles.
func (r *UserRepo) SetRole(ctx context.Context, email, role string) error {
	_, err := r.DB.ExecContext(ctx, "CALL admin_set_role(?, ?)", normalizeEmail(email), role)
	var me *mysqlError
	if errors.As(err, &me) && me.Number == mysqlSignalException {
		return &RoleError{Message: me.Message}
	}
	return err
}

// RoleError is a refusal raised by admin_set_role.
type RoleError struct{ Message string }

func (e *RoleError) Error() string { return e.Message }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
