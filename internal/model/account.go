package model

import "time"

// Account mirrors a row of the `accounts` table. The balance is not part
// of the row type: it is owned by the ledger procedures and read through
// get_balance_by_display_id.
type Account struct {
	ID        string    `json:"id"`
	DisplayID string    `json:"display_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
