package mux

import (
	"net/http"
	"net/url"
	"testing"

	"blackjack-server/internal/config"
	"blackjack-server/internal/util"
	"blackjack-server/pkg/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_authRouter(t *testing.T) {
	f := newFixture(t)

	f.mux.authRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, "OK")
	})

	var result resultResponse
	assertGet(t, f.ts, "/test", &result, 401)
	assert.Equal(t, "error", result.Kind)
	assert.Equal(t, "you must be signed in", result.Message)
	assert.Equal(t, "/signin", result.RedirectTo)

	assertGet(t, f.ts, "/test", &result, 401, "not-a-jwt")

	// test using auth header
	f.expectUser(3, model.RoleDefault)
	var str string
	resp := assertGet(t, f.ts, "/test", &str, 200, token(t, 3))
	assert.Equal(t, "OK", str)
	assert.Equal(t, "3", resp.Header.Get("Blackjack-UserID"))

	// test using query parameter
	f.expectUser(3, model.RoleDefault)
	resp = assertGet(t, f.ts, "/test?access_token="+url.QueryEscape(token(t, 3)), &str, 200)
	assert.Equal(t, "OK", str)
	assert.Equal(t, "3", resp.Header.Get("Blackjack-UserID"))

	// a valid token for a user that no longer exists
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	assertGet(t, f.ts, "/test", &result, 401, token(t, 4))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func Test_adminRouter(t *testing.T) {
	f := newFixture(t)

	f.mux.adminRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, "OK")
	})

	var result resultResponse
	f.expectUser(3, model.RoleDefault)
	assertGet(t, f.ts, "/test", &result, 403, token(t, 3))
	assert.Equal(t, "you do not have the appropriate permission", result.Message)

	var str string
	f.expectUser(3, model.RoleAdmin)
	assertGet(t, f.ts, "/test", &str, 200, token(t, 3))
	assert.Equal(t, "OK", str)

	f.expectUser(3, model.RoleOwner)
	assertGet(t, f.ts, "/test", &str, 200, token(t, 3))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func Test_ownerRouter(t *testing.T) {
	f := newFixture(t)

	f.mux.ownerRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, "OK")
	})

	f.expectUser(3, model.RoleAdmin)
	assertGet(t, f.ts, "/test", nil, 403, token(t, 3))

	f.expectUser(3, model.RoleOwner)
	assertGet(t, f.ts, "/test", nil, 200, token(t, 3))
}

func Test_notFound(t *testing.T) {
	f := newFixture(t)

	var result resultResponse
	assertGet(t, f.ts, "/does-not-exist", &result, 404)
	assert.Equal(t, "Not Found", result.Message)
}

func Test_rateLimit(t *testing.T) {
	defer func() {
		_ = config.Load()
	}()
	defer util.SetEnv("BJ_RATELIMIT_REQUESTS_PER_MINUTE", "2")()
	require.NoError(t, config.Load())

	f := newFixture(t)
	assert.Equal(t, 2, f.mux.config.requestsPerMinute)

	assertGet(t, f.ts, "/user/me", nil, 401)
	assertGet(t, f.ts, "/user/me", nil, 401)
	assertGet(t, f.ts, "/user/me", nil, http.StatusTooManyRequests)

	// unauthenticated routes are not limited
	assertGet(t, f.ts, "/health", nil, 200)
}
