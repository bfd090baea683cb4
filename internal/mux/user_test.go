package mux

import (
	"net/http"
	"testing"
	"time"

	"blackjack-server/pkg/model"
	"blackjack-server/pkg/room"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMux_getUserMe(t *testing.T) {
	f := newFixture(t)
	f.expectUser(3, model.RoleDefault)

	var user struct {
		ID          int64  `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
		Balance     string `json:"balance"`
	}
	assertGet(t, f.ts, "/user/me", &user, 200, token(t, 3))

	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "user3@example.test", user.Email)
	assert.Equal(t, "Player 3", user.DisplayName)
	assert.Equal(t, "default", user.Role)
	assert.Equal(t, "1000", user.Balance)
}

func TestMux_getUser(t *testing.T) {
	f := newFixture(t)

	f.expectUser(1, model.RoleAdmin)
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE display_name ILIKE").
		WithArgs("play", int64(0), 25).
		WillReturnRows(userRow(2, model.RoleDefault, "10.00"))

	var users []struct {
		ID int64 `json:"id"`
	}
	assertGet(t, f.ts, "/user?search=play", &users, 200, token(t, 1))
	if assert.Len(t, users, 1) {
		assert.Equal(t, int64(2), users[0].ID)
	}

	f.expectUser(1, model.RoleAdmin)
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(2)).
		WillReturnRows(userRow(2, model.RoleDefault, "10.00"))
	assertGet(t, f.ts, "/user/2", nil, 200, token(t, 1))

	var result resultResponse
	f.expectUser(1, model.RoleAdmin)
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	assertGet(t, f.ts, "/user/9", &result, 404, token(t, 1))
	assert.Equal(t, "user not found", result.Message)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMux_postUserIDBalance(t *testing.T) {
	f := newFixture(t)

	client := room.NewClient(nil, 2)
	f.hub.ClientConnected(client)

	f.expectUser(1, model.RoleAdmin)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockQuery).WithArgs(int64(2)).WillReturnRows(balanceRows("100.00"))
	f.mock.ExpectQuery("UPDATE users SET balance = balance").
		WithArgs(decimal.NewFromInt(50), int64(2)).
		WillReturnRows(balanceRows("150.00"))
	f.mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(int64(2), sqlmock.AnyArg(), decimal.NewFromInt(50), sqlmock.AnyArg(), "adjustment: promo").
		WillReturnResult(sqlmock.NewResult(1, 1))
	f.mock.ExpectCommit()

	var resp struct {
		UserID  int64  `json:"userId"`
		Balance string `json:"balance"`
	}
	assertPost(t, f.ts, "/user/2/balance", map[string]interface{}{"amount": 50, "reason": "promo"}, &resp, 200, token(t, 1))
	assert.Equal(t, int64(2), resp.UserID)
	assert.Equal(t, "150", resp.Balance)

	select {
	case msg := <-client.SendChan():
		res := msg.(*room.Response)
		assert.Equal(t, room.KeyBalance, res.Key)
		assert.Equal(t, "150.00", res.Value)
	case <-time.After(time.Second):
		t.Error("expected the balance to be published")
	}

	// a debit may not take the balance below zero
	var result resultResponse
	f.expectUser(1, model.RoleAdmin)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockQuery).WithArgs(int64(2)).WillReturnRows(balanceRows("150.00"))
	f.mock.ExpectRollback()
	assertPost(t, f.ts, "/user/2/balance", map[string]interface{}{"amount": -200}, &result, http.StatusPaymentRequired, token(t, 1))

	f.expectUser(1, model.RoleAdmin)
	assertPost(t, f.ts, "/user/2/balance", map[string]interface{}{"amount": 0}, &result, 400, token(t, 1))
	assert.Equal(t, "amount is required", result.Message)

	// players cannot top themselves up
	f.expectUser(2, model.RoleDefault)
	assertPost(t, f.ts, "/user/2/balance", map[string]interface{}{"amount": 50}, &result, 403, token(t, 2))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMux_postUserIDRole(t *testing.T) {
	f := newFixture(t)

	var result resultResponse

	f.expectUser(1, model.RoleOwner)
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(2)).
		WillReturnRows(userRow(2, model.RoleDefault, "10.00"))
	f.mock.ExpectQuery("UPDATE users SET role =").
		WithArgs("admin", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"updated"}).AddRow(time.Now()))
	assertPost(t, f.ts, "/user/2/role", map[string]interface{}{"role": "admin"}, &result, 200, token(t, 1))
	assert.Equal(t, "success", result.Kind)
	assert.Equal(t, "Role updated", result.Message)

	f.expectUser(1, model.RoleOwner)
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(1)).
		WillReturnRows(userRow(1, model.RoleOwner, "10.00"))
	assertPost(t, f.ts, "/user/1/role", map[string]interface{}{"role": "default"}, &result, 400, token(t, 1))
	assert.Equal(t, "you cannot change your own role", result.Message)

	f.expectUser(1, model.RoleOwner)
	assertPost(t, f.ts, "/user/2/role", map[string]interface{}{"role": "boss"}, &result, 400, token(t, 1))
	assert.Equal(t, "role must be one of: default, admin, owner", result.Message)

	f.expectUser(1, model.RoleAdmin)
	assertPost(t, f.ts, "/user/2/role", map[string]interface{}{"role": "admin"}, &result, 403, token(t, 1))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}
