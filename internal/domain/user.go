package domain

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

type User struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Password  string    `db:"password_hash"`
	Role      UserRole  `db:"role"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CustomerProfile is the purchasing identity orders belong to. Admin
// accounts have no profile and cannot place orders.
type CustomerProfile struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`
}

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}
