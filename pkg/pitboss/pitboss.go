// Package pitboss runs each player action as a single database transaction
//
// The user's row is locked first, so actions from the same user are applied one at a time
// against the latest committed round.
package pitboss

import (
	"context"
	"database/sql"
	"fmt"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/ledger"
	"blackjack-server/pkg/model"
	"blackjack-server/pkg/room"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Notifier receives committed round updates
type Notifier interface {
	Publish(userID int64, msg interface{})
}

// Limits are the table limits. A zero MaxBet means there is no maximum
type Limits struct {
	MinBet decimal.Decimal
	MaxBet decimal.Decimal
}

// PitBoss coordinates the ledger and the round store around the game engine
type PitBoss struct {
	db       *sql.DB
	notifier Notifier
	limits   Limits

	// Logger defaults to the standard logrus logger
	Logger logrus.FieldLogger

	// NewDeck returns a full, shuffled deck for every new round
	NewDeck func() *deck.Deck
}

// New returns a new PitBoss
// notifier may be nil if nobody needs to hear about updates
func New(conn *sql.DB, notifier Notifier, limits Limits) *PitBoss {
	return &PitBoss{
		db:       conn,
		notifier: notifier,
		limits:   limits,
		Logger:   logrus.StandardLogger(),
		NewDeck: func() *deck.Deck {
			return deck.New().Shuffle(rng.Crypto{})
		},
	}
}

// Limits returns the table limits
func (p *PitBoss) Limits() Limits {
	return p.limits
}

func (p *PitBoss) validateBet(bet decimal.Decimal) error {
	if !bet.IsPositive() {
		return blackjack.ErrNonPositiveBet
	}

	if !bet.Equal(bet.Truncate(2)) {
		return blackjack.ErrFractionalCent
	}

	if bet.LessThan(p.limits.MinBet) {
		return blackjack.ValidationError(fmt.Sprintf("bet must be at least %s", p.limits.MinBet.StringFixed(2)))
	}

	if p.limits.MaxBet.IsPositive() && bet.GreaterThan(p.limits.MaxBet) {
		return blackjack.ValidationError(fmt.Sprintf("bet cannot exceed %s", p.limits.MaxBet.StringFixed(2)))
	}

	return nil
}

// Deal starts a new round for the user
func (p *PitBoss) Deal(ctx context.Context, userID int64, bet decimal.Decimal) (*blackjack.View, error) {
	if err := p.validateBet(bet); err != nil {
		return nil, err
	}

	var state *blackjack.GameState
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		balance, err := ledger.Lock(ctx, tx, userID)
		if err != nil {
			return err
		}

		active, err := model.LoadActiveRound(ctx, tx, userID)
		if err != nil {
			return err
		}

		if active != nil {
			return blackjack.ErrRoundInProgress
		}

		if balance.LessThan(bet) {
			return ledger.ErrInsufficientFunds
		}

		t, err := blackjack.Deal(userID, bet, p.NewDeck())
		if err != nil {
			return err
		}

		if err := p.settle(ctx, tx, t, balance, ledger.ReasonBet); err != nil {
			return err
		}

		state = t.State
		return model.InsertRound(ctx, tx, state)
	})

	if err != nil {
		return nil, err
	}

	p.log(state).WithField("bet", bet.StringFixed(2)).Info("dealt round")
	return p.publish(state), nil
}

// Act applies the command to the user's round in progress
func (p *PitBoss) Act(ctx context.Context, userID int64, cmd blackjack.Command) (*blackjack.View, error) {
	reason, err := stakeReason(cmd)
	if err != nil {
		return nil, err
	}

	var state *blackjack.GameState
	err = db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		balance, err := ledger.Lock(ctx, tx, userID)
		if err != nil {
			return err
		}

		active, err := model.LoadActiveRound(ctx, tx, userID)
		if err != nil {
			return err
		}

		if active == nil {
			return blackjack.ErrNoActiveRound
		}

		t, err := blackjack.Resolve(active, cmd)
		if err != nil {
			return err
		}

		if err := p.settle(ctx, tx, t, balance, reason); err != nil {
			return err
		}

		state = t.State
		return model.UpdateRound(ctx, tx, state)
	})

	if err != nil {
		return nil, err
	}

	p.log(state).WithField("command", cmd).Info("applied command")
	return p.publish(state), nil
}

// settle debits the stake and then credits the payout of the transition
// The resulting balance is cached on the new state
func (p *PitBoss) settle(ctx context.Context, tx *sql.Tx, t *blackjack.Transition, balance decimal.Decimal, reason ledger.Reason) error {
	state := t.State

	if t.Stake.IsPositive() {
		if balance.LessThan(t.Stake) {
			return ledger.ErrInsufficientFunds
		}

		var err error
		if balance, err = ledger.ApplyDelta(ctx, tx, state.UserID, state.ID, t.Stake.Neg(), reason); err != nil {
			return err
		}
	}

	if t.Payout.IsPositive() {
		var err error
		if balance, err = ledger.ApplyDelta(ctx, tx, state.UserID, state.ID, t.Payout, ledger.ReasonPayout); err != nil {
			return err
		}
	}

	state.Balance = balance
	return nil
}

// CurrentRound returns the user's round in progress, or the last round they played
// Returns nil if the user has never played
func (p *PitBoss) CurrentRound(ctx context.Context, userID int64) (*blackjack.View, error) {
	state, err := model.LoadLatestRound(ctx, p.db, userID)
	if err != nil || state == nil {
		return nil, err
	}

	return state.View(), nil
}

// Round returns one of the user's rounds by its ID
func (p *PitBoss) Round(ctx context.Context, userID int64, id string) (*blackjack.View, error) {
	state, err := model.LoadRound(ctx, p.db, userID, id)
	if err != nil {
		return nil, err
	}

	if state == nil {
		return nil, ErrRoundNotFound
	}

	return state.View(), nil
}

// History returns the user's completed rounds, newest first
func (p *PitBoss) History(ctx context.Context, userID int64, offset int64, limit int) ([]*blackjack.View, error) {
	rounds, err := model.GetRoundHistory(ctx, p.db, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*blackjack.View, len(rounds))
	for i, round := range rounds {
		views[i] = round.View()
	}

	return views, nil
}

// AdjustBalance credits (or debits, if amount is negative) the user's balance outside of a round
func (p *PitBoss) AdjustBalance(ctx context.Context, userID int64, amount decimal.Decimal, note string) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, blackjack.ValidationError("amount cannot be zero")
	}

	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, blackjack.ValidationError("amount cannot contain fractions of a cent")
	}

	reason := ledger.ReasonAdjustment
	if note != "" {
		reason = ledger.Reason(fmt.Sprintf("%s: %s", ledger.ReasonAdjustment, note))
	}

	var balance decimal.Decimal
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		current, err := ledger.Lock(ctx, tx, userID)
		if err != nil {
			return err
		}

		if current.Add(amount).IsNegative() {
			return ledger.ErrInsufficientFunds
		}

		balance, err = ledger.ApplyDelta(ctx, tx, userID, "", amount, reason)
		return err
	})

	if err != nil {
		return decimal.Zero, err
	}

	p.Logger.WithFields(logrus.Fields{
		"userID":  userID,
		"amount":  amount.StringFixed(2),
		"balance": balance.StringFixed(2),
	}).Info("adjusted balance")

	if p.notifier != nil {
		p.notifier.Publish(userID, &room.Response{Key: room.KeyBalance, Value: balance.StringFixed(2)})
	}

	return balance, nil
}

func (p *PitBoss) publish(state *blackjack.GameState) *blackjack.View {
	view := state.View()
	if p.notifier != nil {
		p.notifier.Publish(state.UserID, &room.Response{Key: room.KeyRound, Data: view})
	}

	return view
}

func (p *PitBoss) log(state *blackjack.GameState) logrus.FieldLogger {
	return p.Logger.WithFields(logrus.Fields{
		"userID":    state.UserID,
		"roundID":   state.ID,
		"phase":     state.Phase(),
		"balance":   state.Balance.StringFixed(2),
		"completed": state.IsCompleted,
	})
}

func stakeReason(cmd blackjack.Command) (ledger.Reason, error) {
	switch cmd {
	case blackjack.CommandHit, blackjack.CommandStand, blackjack.CommandDeclineInsurance:
		// these never place a stake
		return ledger.ReasonBet, nil
	case blackjack.CommandDoubleDown:
		return ledger.ReasonDoubleDown, nil
	case blackjack.CommandSplit:
		return ledger.ReasonSplit, nil
	case blackjack.CommandInsurance:
		return ledger.ReasonInsurance, nil
	}

	return "", blackjack.ValidationError(fmt.Sprintf("unknown command: %s", cmd))
}
