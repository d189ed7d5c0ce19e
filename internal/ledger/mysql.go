package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// DefaultBookProcedure is the debit procedure used when none is configured.
const DefaultBookProcedure = "book_transaction"

// mysqlSignalException is the error number MySQL reports for SIGNAL
// SQLSTATE '45000' raised inside a procedure.
const mysqlSignalException = 1644

var procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// MySQLClient calls the ledger's stored procedures. The procedures own
// locking and atomicity; this type only marshals arguments and rows.
type MySQLClient struct {
	db            *sql.DB
	bookProcedure string
	timeout       time.Duration
}

// NewMySQLClient validates the booking procedure name, which is spliced
// into the CALL statement, and returns a client bound to db. A zero timeout
// leaves deadlines to the caller's context.
func NewMySQLClient(db *sql.DB, bookProcedure string, timeout time.Duration) (*MySQLClient, error) {
	if bookProcedure == "" {
		bookProcedure = DefaultBookProcedure
	}
	if !procedureName.MatchString(bookProcedure) {
		return nil, fmt.Errorf("invalid booking procedure name %q", bookProcedure)
	}
	return &MySQLClient{db: db, bookProcedure: bookProcedure, timeout: timeout}, nil
}

// BalanceByDisplayID calls get_balance_by_display_id. No row means no
// account matched.
func (c *MySQLClient) BalanceByDisplayID(ctx context.Context, displayID string) (BalanceResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	balance, ok, err := c.callSingle(ctx, "get_balance_by_display_id", "CALL get_balance_by_display_id(?)", displayID)
	if err != nil {
		return BalanceResult{}, err
	}
	if !ok {
		return NotFound(), nil
	}
	return Found(balance), nil
}

// AddPaymentByDisplayID calls admin_add_payment_by_display_id.
func (c *MySQLClient) AddPaymentByDisplayID(ctx context.Context, p Payment) (money.Cents, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	balance, ok, err := c.callSingle(ctx, "admin_add_payment_by_display_id",
		"CALL admin_add_payment_by_display_id(?, ?, ?, ?)",
		p.DisplayID, int64(p.Amount), p.Method, p.ActorID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("admin_add_payment_by_display_id returned no balance")
	}
	return balance, nil
}

// Book calls the configured booking procedure.
func (c *MySQLClient) Book(ctx context.Context, b Booking) (money.Cents, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	balance, ok, err := c.callSingle(ctx, c.bookProcedure,
		"CALL "+c.bookProcedure+"(?, ?, ?)",
		b.DisplayID, b.ItemID, b.Quantity)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s returned no balance", c.bookProcedure)
	}
	return balance, nil
}

// callSingle runs a procedure whose first result set holds at most one row
// with one integer column.
func (c *MySQLClient) callSingle(ctx context.Context, name, stmt string, args ...any) (money.Cents, bool, error) {
	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return 0, false, mapProcedureError(name, err)
	}
	defer rows.Close()

	var (
		balance int64
		found   bool
	)
	if rows.Next() {
		if err := rows.Scan(&balance); err != nil {
			return 0, false, fmt.Errorf("%s: scan: %w", name, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return 0, false, mapProcedureError(name, err)
	}
	return money.Cents(balance), found, nil
}

func (c *MySQLClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// mapProcedureError turns a SIGNAL raised by the procedure into a
// RemoteError and wraps everything else.
func mapProcedureError(name string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlSignalException {
		return &RemoteError{Procedure: name, Message: me.Message}
	}
	return fmt.Errorf("%s: %w", name, err)
}
