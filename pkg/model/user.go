package model

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"blackjack-server/pkg/db"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const userColumns = `
users.id,
users.email,
users.display_name,
users.role,
users.balance,
users.created,
users.updated`

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// Role is the access level of a user
type Role string

// Role constants, in increasing order of privilege
const (
	RoleDefault Role = "default"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

var roleLevels = map[Role]int{
	RoleDefault: 0,
	RoleAdmin:   1,
	RoleOwner:   2,
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast returns true if r grants at least the privileges of other
func (r Role) AtLeast(other Role) bool {
	level, ok := roleLevels[r]
	if !ok {
		return false
	}

	return level >= roleLevels[other]
}

// User is a record in the `users` table
type User struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	Role        Role            `json:"role"`
	Balance     decimal.Decimal `json:"balance"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

func getUserByRow(row db.Scanner) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.Role, &user.Balance, &user.Created, &user.Updated); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID returns user based on the ID
func GetUserByID(ctx context.Context, id int64) (*User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1`

	user, err := getUserByRow(db.Instance().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

// GetUserByEmail will return a user by the email address
func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1)`

	user, err := getUserByRow(db.Instance().QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

// CreateUser creates a new user with an opening balance
func CreateUser(ctx context.Context, email, displayName string, role Role, balance decimal.Decimal) (*User, error) {
	if !role.IsValid() {
		return nil, UserError("invalid role: " + string(role))
	}

	if balance.IsNegative() {
		return nil, UserError("balance cannot be negative")
	}

	const query = `
INSERT INTO users (email, display_name, role, balance)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

	row := db.Instance().QueryRowContext(ctx, query, email, displayName, role, balance)
	user, err := getUserByRow(row)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	return user, nil
}

// SetRole changes the role of the user
func (u *User) SetRole(ctx context.Context, role Role) error {
	if !role.IsValid() {
		return UserError("invalid role: " + string(role))
	}

	if u.Role == role {
		return nil
	}

	const query = `
UPDATE users
SET role = $1, updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2
RETURNING updated`

	var updated sql.NullTime
	if err := db.Instance().QueryRowContext(ctx, query, role, u.ID).Scan(&updated); err != nil {
		return err
	}

	u.Role = role
	u.Updated = updated.Time
	return nil
}

func getUsers(rows *sql.Rows, err error) ([]*User, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := getUserByRow(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

// GetUsersWithSearch will return a list of users matching the specified search string
// A numeric search matches the user ID
func GetUsersWithSearch(ctx context.Context, search string, offset int64, limit int) ([]*User, error) {
	if search == "" {
		return GetUsers(ctx, offset, limit)
	}

	if searchInt, _ := strconv.ParseInt(search, 10, 64); searchInt > 0 {
		const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1`

		return getUsers(db.Instance().QueryContext(ctx, query, searchInt))
	}

	const query = `
SELECT ` + userColumns + `
FROM users
WHERE display_name ILIKE $1 || '%' OR email ILIKE $1 || '%'
ORDER BY id ASC
OFFSET $2
LIMIT $3`

	return getUsers(db.Instance().QueryContext(ctx, query, search, offset, limit))
}

// GetUsers returns a list of users
func GetUsers(ctx context.Context, offset int64, limit int) ([]*User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
ORDER BY id ASC
OFFSET $1
LIMIT $2`

	return getUsers(db.Instance().QueryContext(ctx, query, offset, limit))
}
