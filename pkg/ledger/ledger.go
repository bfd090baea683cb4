// Package ledger owns every change to a user's balance
//
// All functions are meant to run inside the transaction that also persists the
// round, so a balance change and the round it belongs to commit together.
package ledger

import (
	"context"
	"database/sql"
	"errors"

	"blackjack-server/pkg/db"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const pqCheckViolationErrorCode pq.ErrorCode = "23514"

// ErrInsufficientFunds is returned when a debit would take the balance below zero
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUserNotFound is returned when the user does not exist
var ErrUserNotFound = errors.New("user not found")

// Reason describes why a balance changed
type Reason string

// Reason constants
const (
	ReasonBet        Reason = "bet"
	ReasonDoubleDown Reason = "double-down"
	ReasonSplit      Reason = "split"
	ReasonInsurance  Reason = "insurance"
	ReasonPayout     Reason = "payout"
	ReasonAdjustment Reason = "adjustment"
)

// Lock locks the user's row for the remainder of the transaction and returns the balance
// Every action on a user's round takes this lock first, which serializes them
func Lock(ctx context.Context, tx db.Querier, userID int64) (decimal.Decimal, error) {
	const query = `
SELECT balance
FROM users
WHERE id = $1
FOR UPDATE`

	var balance decimal.Decimal
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ErrUserNotFound
		}

		return decimal.Zero, err
	}

	return balance, nil
}

// ApplyDelta adds delta to the user's balance and records a ledger entry
// roundID may be empty for changes that don't belong to a round. A zero delta
// changes nothing and returns the current balance.
func ApplyDelta(ctx context.Context, tx db.Querier, userID int64, roundID string, delta decimal.Decimal, reason Reason) (decimal.Decimal, error) {
	if delta.IsZero() {
		return currentBalance(ctx, tx, userID)
	}

	const query = `
UPDATE users
SET balance = balance + $1,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2
RETURNING balance`

	var balance decimal.Decimal
	if err := tx.QueryRowContext(ctx, query, delta, userID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ErrUserNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqCheckViolationErrorCode {
			return decimal.Zero, ErrInsufficientFunds
		}

		return decimal.Zero, err
	}

	const insert = `
INSERT INTO ledger_entries (user_id, round_id, amount, balance, reason)
VALUES ($1, $2, $3, $4, $5)`

	round := sql.NullString{String: roundID, Valid: roundID != ""}
	if _, err := tx.ExecContext(ctx, insert, userID, round, delta, balance, string(reason)); err != nil {
		return decimal.Zero, err
	}

	logrus.WithFields(logrus.Fields{
		"userID":  userID,
		"roundID": roundID,
		"amount":  delta.StringFixed(2),
		"balance": balance.StringFixed(2),
		"reason":  reason,
	}).Debug("balance adjusted")

	return balance, nil
}

func currentBalance(ctx context.Context, tx db.Querier, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := tx.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = $1", userID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ErrUserNotFound
		}

		return decimal.Zero, err
	}

	return balance, nil
}
