package model

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var userRowColumns = []string{"id", "email", "display_name", "role", "balance", "created", "updated"}

func userRows(users ...*User) *sqlmock.Rows {
	rows := sqlmock.NewRows(userRowColumns)
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.DisplayName, string(u.Role), u.Balance.StringFixed(2), u.Created, u.Updated)
	}

	return rows
}

func testUser(id int64) *User {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &User{
		ID:          id,
		Email:       "player@example.test",
		DisplayName: "Lucky Ace",
		Role:        RoleDefault,
		Balance:     decimal.NewFromInt(1000),
		Created:     now,
		Updated:     now,
	}
}

func TestRole_AtLeast(t *testing.T) {
	a := assert.New(t)
	a.True(RoleOwner.AtLeast(RoleAdmin))
	a.True(RoleAdmin.AtLeast(RoleAdmin))
	a.True(RoleAdmin.AtLeast(RoleDefault))
	a.False(RoleDefault.AtLeast(RoleAdmin))
	a.False(RoleAdmin.AtLeast(RoleOwner))
	a.False(Role("superuser").AtLeast(RoleDefault))

	a.True(RoleDefault.IsValid())
	a.False(Role("").IsValid())
}

func TestGetUserByID(t *testing.T) {
	mock := mockDB(t)
	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(3)).
		WillReturnRows(userRows(testUser(3)))

	user, err := GetUserByID(cbg, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "Lucky Ace", user.DisplayName)
	assert.Equal(t, RoleDefault, user.Role)
	assert.Equal(t, "1000.00", user.Balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_notFound(t *testing.T) {
	mock := mockDB(t)
	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	user, err := GetUserByID(cbg, 3)
	assert.Nil(t, user)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestGetUserByEmail(t *testing.T) {
	mock := mockDB(t)
	mock.ExpectQuery("SELECT .+ FROM users WHERE lower").
		WithArgs("Player@Example.test").
		WillReturnRows(userRows(testUser(4)))

	user, err := GetUserByEmail(cbg, "Player@Example.test")
	assert.NoError(t, err)
	assert.Equal(t, int64(4), user.ID)
}

func TestCreateUser(t *testing.T) {
	mock := mockDB(t)
	u := testUser(5)
	u.Role = RoleAdmin
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.Email, u.DisplayName, RoleAdmin, decimal.NewFromInt(1000)).
		WillReturnRows(userRows(u))

	user, err := CreateUser(cbg, u.Email, u.DisplayName, RoleAdmin, decimal.NewFromInt(1000))
	assert.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_duplicate(t *testing.T) {
	mock := mockDB(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := CreateUser(cbg, "player@example.test", "Lucky Ace", RoleDefault, decimal.Zero)
	assert.Equal(t, ErrDuplicateKey, err)
}

func TestCreateUser_invalid(t *testing.T) {
	_, err := CreateUser(cbg, "player@example.test", "Lucky Ace", Role("boss"), decimal.Zero)
	assert.EqualError(t, err, "invalid role: boss")

	_, err = CreateUser(cbg, "player@example.test", "Lucky Ace", RoleDefault, decimal.NewFromInt(-1))
	assert.EqualError(t, err, "balance cannot be negative")
}

func TestUser_SetRole(t *testing.T) {
	mock := mockDB(t)
	updated := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE users SET role").
		WithArgs(RoleOwner, int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"updated"}).AddRow(updated))

	u := testUser(6)
	assert.NoError(t, u.SetRole(cbg, RoleOwner))
	assert.Equal(t, RoleOwner, u.Role)
	assert.Equal(t, updated, u.Updated)

	// no change, no query
	assert.NoError(t, u.SetRole(cbg, RoleOwner))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUsersWithSearch(t *testing.T) {
	mock := mockDB(t)

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY id ASC OFFSET").
		WithArgs(int64(0), 10).
		WillReturnRows(userRows(testUser(1), testUser(2)))
	users, err := GetUsersWithSearch(cbg, "", 0, 10)
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(2)).
		WillReturnRows(userRows(testUser(2)))
	users, err = GetUsersWithSearch(cbg, "2", 0, 10)
	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, int64(2), users[0].ID)
	}

	mock.ExpectQuery("SELECT .+ FROM users WHERE display_name ILIKE").
		WithArgs("luc", int64(10), 5).
		WillReturnRows(userRows())
	users, err = GetUsersWithSearch(cbg, "luc", 10, 5)
	assert.NoError(t, err)
	assert.NotNil(t, users)
	assert.Len(t, users, 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}
