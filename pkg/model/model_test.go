package model

import (
	"context"
	"testing"

	"blackjack-server/pkg/db"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

// mockDB swaps the database instance for a sqlmock for the duration of the test
func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db.SetInstance(conn)
	t.Cleanup(func() {
		db.SetInstance(nil)
		_ = conn.Close()
	})

	return mock
}
