package model

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/deck"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const roundColumns = `
rounds.id,
rounds.user_id,
rounds.player_hands,
rounds.dealer_hand,
rounds.deck,
rounds.actions,
rounds.current_hand_index,
rounds.current_bet,
rounds.hand_stakes,
rounds.insurance_stake,
rounds.outcomes,
rounds.balance,
rounds.message,
rounds.is_completed,
rounds.created,
rounds.updated`

// ErrRoundConflict is returned when a second active round is inserted for a user
var ErrRoundConflict = UserError("a round is already in progress")

func getRoundByRow(row db.Scanner) (*blackjack.GameState, error) {
	var g blackjack.GameState
	var playerHands, dealerHand, cards, handStakes, outcomes []byte
	var actions []string

	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&playerHands,
		&dealerHand,
		&cards,
		pq.Array(&actions),
		&g.CurrentHandIndex,
		&g.CurrentBet,
		&handStakes,
		&g.InsuranceStake,
		&outcomes,
		&g.Balance,
		&g.Message,
		&g.IsCompleted,
		&g.Created,
		&g.Updated,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(playerHands, &g.PlayerHands); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dealerHand, &g.DealerHand); err != nil {
		return nil, err
	}

	g.Deck = &deck.Deck{}
	if err := json.Unmarshal(cards, &g.Deck.Cards); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(handStakes, &g.HandStakes); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(outcomes, &g.Outcomes); err != nil {
		return nil, err
	}

	actionSet, err := blackjack.ActionSetFromStrings(actions)
	if err != nil {
		return nil, err
	}
	g.Actions = actionSet

	return &g, nil
}

type roundJSON struct {
	playerHands []byte
	dealerHand  []byte
	cards       []byte
	handStakes  []byte
	outcomes    []byte
}

func marshalRound(g *blackjack.GameState) (*roundJSON, error) {
	var r roundJSON
	var err error

	if r.playerHands, err = json.Marshal(g.PlayerHands); err != nil {
		return nil, err
	}

	if r.dealerHand, err = json.Marshal(g.DealerHand); err != nil {
		return nil, err
	}

	cards := make([]deck.Card, 0)
	if g.Deck != nil {
		cards = g.Deck.Cards
	}
	if r.cards, err = json.Marshal(cards); err != nil {
		return nil, err
	}

	stakes := g.HandStakes
	if stakes == nil {
		stakes = []decimal.Decimal{}
	}
	if r.handStakes, err = json.Marshal(stakes); err != nil {
		return nil, err
	}

	outcomes := g.Outcomes
	if outcomes == nil {
		outcomes = []blackjack.Outcome{}
	}
	if r.outcomes, err = json.Marshal(outcomes); err != nil {
		return nil, err
	}

	return &r, nil
}

// LoadActiveRound returns the user's round in progress and locks it for the transaction
// Returns nil if the user has no round in progress
func LoadActiveRound(ctx context.Context, q db.Querier, userID int64) (*blackjack.GameState, error) {
	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE user_id = $1 AND NOT is_completed
FOR UPDATE`

	return optionalRound(getRoundByRow(q.QueryRowContext(ctx, query, userID)))
}

// LoadLatestRound returns the user's round in progress, or their most recently completed round
// Returns nil if the user has never played
func LoadLatestRound(ctx context.Context, q db.Querier, userID int64) (*blackjack.GameState, error) {
	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE user_id = $1
ORDER BY is_completed ASC, created DESC
LIMIT 1`

	return optionalRound(getRoundByRow(q.QueryRowContext(ctx, query, userID)))
}

// LoadRound returns a round by its ID
// Rounds belonging to other users are reported as not existing
func LoadRound(ctx context.Context, q db.Querier, userID int64, id string) (*blackjack.GameState, error) {
	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE id = $1 AND user_id = $2`

	return optionalRound(getRoundByRow(q.QueryRowContext(ctx, query, id, userID)))
}

// InsertRound persists a new round
func InsertRound(ctx context.Context, q db.Querier, g *blackjack.GameState) error {
	r, err := marshalRound(g)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO rounds (id, user_id, player_hands, dealer_hand, deck, actions, current_hand_index, current_bet,
                    hand_stakes, insurance_stake, outcomes, balance, message, is_completed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING created, updated`

	var created, updated time.Time
	row := q.QueryRowContext(ctx, query, g.ID, g.UserID, r.playerHands, r.dealerHand, r.cards, pq.Array(g.Actions.Strings()),
		g.CurrentHandIndex, g.CurrentBet, r.handStakes, g.InsuranceStake, r.outcomes, g.Balance, g.Message, g.IsCompleted)
	if err := row.Scan(&created, &updated); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return ErrRoundConflict
		}

		return err
	}

	g.Created = created
	g.Updated = updated
	return nil
}

// UpdateRound persists the changes made to a round
func UpdateRound(ctx context.Context, q db.Querier, g *blackjack.GameState) error {
	r, err := marshalRound(g)
	if err != nil {
		return err
	}

	const query = `
UPDATE rounds
SET player_hands = $1,
    dealer_hand = $2,
    deck = $3,
    actions = $4,
    current_hand_index = $5,
    current_bet = $6,
    hand_stakes = $7,
    insurance_stake = $8,
    outcomes = $9,
    balance = $10,
    message = $11,
    is_completed = $12,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $13
RETURNING updated`

	var updated time.Time
	row := q.QueryRowContext(ctx, query, r.playerHands, r.dealerHand, r.cards, pq.Array(g.Actions.Strings()), g.CurrentHandIndex,
		g.CurrentBet, r.handStakes, g.InsuranceStake, r.outcomes, g.Balance, g.Message, g.IsCompleted, g.ID)
	if err := row.Scan(&updated); err != nil {
		return err
	}

	g.Updated = updated
	return nil
}

// GetRoundHistory returns the user's completed rounds, newest first
func GetRoundHistory(ctx context.Context, q db.Querier, userID int64, offset int64, limit int) ([]*blackjack.GameState, error) {
	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE user_id = $1 AND is_completed
ORDER BY created DESC
OFFSET $2
LIMIT $3`

	rows, err := q.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*blackjack.GameState, 0)
	for rows.Next() {
		g, err := getRoundByRow(rows)
		if err != nil {
			return nil, err
		}

		rounds = append(rounds, g)
	}

	return rounds, rows.Err()
}

func optionalRound(g *blackjack.GameState, err error) (*blackjack.GameState, error) {
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return g, err
}
