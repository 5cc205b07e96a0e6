package models

import (
	"time"
)

// Account holds a user's persistent coin economy state. A row existing
// for a user means the account is initialized.
type Account struct {
	UserID         string    `db:"user_id"`
	Balance        int64     `db:"balance"`
	NextGrantAt    time.Time `db:"next_grant_at"`
	GrantAvailable bool      `db:"grant_available"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
