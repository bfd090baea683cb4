package blackjack

import (
	"fmt"

	"blackjack-server/pkg/deck"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command is a request made by the player during a round
type Command string

// Command constants
const (
	CommandHit              Command = "hit"
	CommandStand            Command = "stand"
	CommandDoubleDown       Command = "double-down"
	CommandSplit            Command = "split"
	CommandInsurance        Command = "insurance"
	CommandDeclineInsurance Command = "decline-insurance"
)

var (
	two         = decimal.NewFromInt(2)
	naturalPays = decimal.NewFromFloat(2.5)
)

// Transition is the result of applying a command to a round
// The Stake is debited from the player's balance before the Payout is credited
type Transition struct {
	State  *GameState
	Stake  decimal.Decimal
	Payout decimal.Decimal
}

// Delta returns the net balance change of the transition
func (t *Transition) Delta() decimal.Decimal {
	return t.Payout.Sub(t.Stake)
}

// Deal starts a new round for the user from a full, shuffled deck
// The deck is not modified
func Deal(userID int64, bet decimal.Decimal, d *deck.Deck) (*Transition, error) {
	if !bet.IsPositive() {
		return nil, ErrNonPositiveBet
	}

	if !bet.Equal(bet.Truncate(2)) {
		return nil, ErrFractionalCent
	}

	if d.CardsLeft() != deck.Size {
		panic(fmt.Sprintf("expected a full deck, got %d cards", d.CardsLeft()))
	}

	d = d.Clone()
	player := Hand{d.Draw(), d.Draw()}
	dealer := Hand{d.Draw(), d.Draw()}

	state := &GameState{
		ID:          uuid.New().String(),
		UserID:      userID,
		PlayerHands: []Hand{player},
		DealerHand:  dealer,
		Deck:        d,
		CurrentBet:  bet,
		HandStakes:  []decimal.Decimal{bet},
		Outcomes:    []Outcome{},
	}

	t := &Transition{
		State: state,
		Stake: bet,
	}

	switch {
	case player.IsBlackjack():
		state.Actions = NewActionSet()
		state.IsCompleted = true
		if dealer.Value().Total == Blackjack {
			state.Outcomes = []Outcome{OutcomePush}
			state.Message = "Push - both have blackjack"
			t.Payout = bet
		} else {
			state.Outcomes = []Outcome{OutcomeBlackjack}
			state.Message = "Blackjack! Player wins 1.5x bet"
			t.Payout = payoutFor(OutcomeBlackjack, bet)
		}
	case state.DealerUpCard().Rank == deck.Ace:
		state.Actions = NewActionSet(ActionInsurance)
		state.Message = "Insurance available"
	default:
		state.Actions = openingActions(player, true)
		state.Message = "Game in progress"
	}

	return t, nil
}

// Resolve applies the command to the round
func Resolve(g *GameState, cmd Command) (*Transition, error) {
	switch cmd {
	case CommandHit:
		return Hit(g)
	case CommandStand:
		return Stand(g)
	case CommandDoubleDown:
		return DoubleDown(g)
	case CommandSplit:
		return Split(g)
	case CommandInsurance:
		return Insurance(g)
	case CommandDeclineInsurance:
		return DeclineInsurance(g)
	}

	return nil, ValidationError(fmt.Sprintf("unknown command: %s", cmd))
}

// checkAllowed returns an error if the action cannot be taken
func checkAllowed(g *GameState, action Action) error {
	if g.IsCompleted {
		return ErrRoundOver
	}

	if action != ActionInsurance && g.Actions.Only(ActionInsurance) {
		return ErrInsuranceUndecided
	}

	if action == ActionInsurance && !g.Actions.Only(ActionInsurance) {
		return notAllowed(action)
	}

	if !g.Actions.Allows(action) {
		return notAllowed(action)
	}

	return nil
}

// Hit draws a card into the active hand
func Hit(g *GameState) (*Transition, error) {
	if err := checkAllowed(g, ActionHit); err != nil {
		return nil, err
	}

	next := g.Clone()
	i := next.CurrentHandIndex
	next.PlayerHands[i] = append(next.PlayerHands[i], next.Deck.Draw())
	next.Actions = next.Actions.Without(ActionDoubleDown, ActionSplit)

	if next.PlayerHands[i].IsBust() {
		next.Message = "Bust"
		return finishHand(next), nil
	}

	next.Message = "Card added"
	return &Transition{State: next}, nil
}

// Stand ends play on the active hand
func Stand(g *GameState) (*Transition, error) {
	if err := checkAllowed(g, ActionStand); err != nil {
		return nil, err
	}

	next := g.Clone()
	next.Message = "Stand"
	return finishHand(next), nil
}

// DoubleDown doubles the stake on the active hand, draws exactly one card, and stands
func DoubleDown(g *GameState) (*Transition, error) {
	if err := checkAllowed(g, ActionDoubleDown); err != nil {
		return nil, err
	}

	if len(g.ActiveHand()) != 2 {
		return nil, InvalidActionError("you can only double down on two cards")
	}

	next := g.Clone()
	i := next.CurrentHandIndex
	next.HandStakes[i] = next.HandStakes[i].Add(next.CurrentBet)
	next.PlayerHands[i] = append(next.PlayerHands[i], next.Deck.Draw())
	next.Message = "Doubled down"

	t := finishHand(next)
	t.Stake = g.CurrentBet
	return t, nil
}

// Split splits a pair into two hands, each dealt a second card
// A round may only be split once
func Split(g *GameState) (*Transition, error) {
	if err := checkAllowed(g, ActionSplit); err != nil {
		return nil, err
	}

	if len(g.PlayerHands) != 1 || !g.ActiveHand().IsPair() {
		return nil, InvalidActionError("you can only split a pair")
	}

	next := g.Clone()
	pair := next.PlayerHands[0]
	first := Hand{pair[0], next.Deck.Draw()}
	second := Hand{pair[1], next.Deck.Draw()}

	next.PlayerHands = []Hand{first, second}
	next.HandStakes = []decimal.Decimal{next.CurrentBet, next.CurrentBet}
	next.CurrentHandIndex = 0
	next.Actions = openingActions(first, false)
	next.Message = "Hand split"

	return &Transition{
		State: next,
		Stake: g.CurrentBet,
	}, nil
}

// Insurance takes the insurance side bet of half the bet
// It is only offered immediately after the deal when the dealer shows an ace
func Insurance(g *GameState) (*Transition, error) {
	if err := checkAllowed(g, ActionInsurance); err != nil {
		return nil, err
	}

	next := g.Clone()
	stake := next.CurrentBet.Div(two).Truncate(2)
	next.InsuranceStake = stake

	t := &Transition{
		State: next,
		Stake: stake,
	}

	if next.DealerHand.Value().Total == Blackjack {
		settleDealerBlackjack(next)
		next.Message = fmt.Sprintf("Dealer has blackjack. Insurance pays out %s", stake.StringFixed(2))
		t.Payout = stake.Mul(two)
		return t, nil
	}

	next.Actions = openingActions(next.ActiveHand(), true)
	next.Message = fmt.Sprintf("Insurance lost: %s", stake.StringFixed(2))
	return t, nil
}

// DeclineInsurance refuses the insurance side bet
func DeclineInsurance(g *GameState) (*Transition, error) {
	if err := checkAllowed(g, ActionInsurance); err != nil {
		return nil, err
	}

	next := g.Clone()
	if next.DealerHand.Value().Total == Blackjack {
		settleDealerBlackjack(next)
		next.Message = "Dealer has blackjack"
		return &Transition{State: next}, nil
	}

	next.Actions = openingActions(next.ActiveHand(), true)
	next.Message = "Insurance declined"
	return &Transition{State: next}, nil
}
