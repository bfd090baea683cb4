package mux

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"blackjack-server/internal/jwt"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/model"
	"blackjack-server/pkg/pitboss"
	"blackjack-server/pkg/room"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey     *rsa.PrivateKey
	testKeyOnce sync.Once
)

func setupJWT(t *testing.T) {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		testKey = key
	})

	jwt.SetKeys(testKey)
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	signed, err := jwt.Sign(userID)
	require.NoError(t, err)
	return signed
}

type fixture struct {
	mux  *Mux
	ts   *httptest.Server
	mock sqlmock.Sqlmock
	hub  *room.Hub
}

// newFixture returns a test server backed by sqlmock
// New rounds are dealt from a deck that gives the player 10h,9d and the dealer 7c,5s
func newFixture(t *testing.T) *fixture {
	t.Helper()
	setupJWT(t)

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db.SetInstance(conn)

	hub := room.NewHub()
	hub.StartShift()

	logger, _ := test.NewNullLogger()
	p := pitboss.New(conn, hub, pitboss.Limits{MinBet: decimal.NewFromInt(1), MaxBet: decimal.NewFromInt(500)})
	p.Logger = logger
	p.NewDeck = func() *deck.Deck {
		return deck.Stacked(deck.CardsFromString("10h,9d,7c,5s")...)
	}

	m := NewMux("v1.2.3", p, hub)
	ts := httptest.NewServer(m)

	t.Cleanup(func() {
		ts.Close()
		hub.EndShift()
		db.SetInstance(nil)
		_ = conn.Close()
	})

	return &fixture{mux: m, ts: ts, mock: mock, hub: hub}
}

var userRowColumns = []string{"id", "email", "display_name", "role", "balance", "created", "updated"}

func userRow(id int64, role model.Role, balance string) *sqlmock.Rows {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return sqlmock.NewRows(userRowColumns).
		AddRow(id, fmt.Sprintf("user%d@example.test", id), fmt.Sprintf("Player %d", id), string(role), balance, now, now)
}

// expectUser expects the lookup the auth middleware makes
func (f *fixture) expectUser(id int64, role model.Role) {
	f.mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(id).
		WillReturnRows(userRow(id, role, "1000.00"))
}

type viewResponse struct {
	ID          string   `json:"id"`
	Balance     string   `json:"balance"`
	Phase       string   `json:"phase"`
	IsCompleted bool     `json:"isCompleted"`
	Actions     []string `json:"actions"`
	Message     string   `json:"message"`
	DealerHand  []struct {
		Rank int    `json:"rank"`
		Suit string `json:"suit"`
	} `json:"dealerHand"`
}

type resultResponse struct {
	Kind       string        `json:"kind"`
	Message    string        `json:"message"`
	Notify     bool          `json:"notify"`
	RedirectTo string        `json:"redirectTo"`
	Round      *viewResponse `json:"round"`
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return resp
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case nil:
		body = http.NoBody
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}
