package blackjack

import (
	"time"

	"blackjack-server/pkg/deck"
	"github.com/shopspring/decimal"
)

// Outcome is the result of a single player hand
type Outcome string

// Outcome constants
const (
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
)

// Label returns the outcome for display
func (o Outcome) Label() string {
	switch o {
	case OutcomeWin:
		return "Win"
	case OutcomeLose:
		return "Lose"
	case OutcomePush:
		return "Push"
	case OutcomeBlackjack:
		return "Blackjack"
	}

	return string(o)
}

// Phase is the stage of a round. It is derived, never stored
type Phase string

// Phase constants
const (
	PhaseAwaitingBet      Phase = "awaiting-bet"
	PhasePendingInsurance Phase = "pending-insurance"
	PhaseActivePlay       Phase = "active-play"
	PhaseSettled          Phase = "settled"
)

// GameState is a snapshot of a single round
// Transitions never modify a GameState; they return a new one
type GameState struct {
	ID               string            `json:"id"`
	UserID           int64             `json:"userId"`
	PlayerHands      []Hand            `json:"playerHands"`
	DealerHand       Hand              `json:"dealerHand"`
	Deck             *deck.Deck        `json:"-"`
	Actions          ActionSet         `json:"actions"`
	CurrentHandIndex int               `json:"currentHandIndex"`
	CurrentBet       decimal.Decimal   `json:"currentBet"`
	HandStakes       []decimal.Decimal `json:"handStakes"`
	InsuranceStake   decimal.Decimal   `json:"insuranceStake"`
	Outcomes         []Outcome         `json:"outcomes"`
	Balance          decimal.Decimal   `json:"balance"`
	Message          string            `json:"message"`
	IsCompleted      bool              `json:"isCompleted"`
	Created          time.Time         `json:"created"`
	Updated          time.Time         `json:"updated"`
}

// Phase returns the stage of the round
func (g *GameState) Phase() Phase {
	switch {
	case g == nil:
		return PhaseAwaitingBet
	case g.IsCompleted:
		return PhaseSettled
	case g.Actions.Only(ActionInsurance):
		return PhasePendingInsurance
	}

	return PhaseActivePlay
}

// ActiveHand returns the hand currently being played
func (g *GameState) ActiveHand() Hand {
	return g.PlayerHands[g.CurrentHandIndex]
}

// DealerUpCard returns the dealer's face-up card
func (g *GameState) DealerUpCard() deck.Card {
	return g.DealerHand[0]
}

// TotalStake returns the amount wagered on the player hands (insurance excluded)
func (g *GameState) TotalStake() decimal.Decimal {
	total := decimal.Zero
	for _, stake := range g.HandStakes {
		total = total.Add(stake)
	}

	return total
}

// Clone returns a deep copy of the game state
func (g *GameState) Clone() *GameState {
	cp := *g

	cp.PlayerHands = make([]Hand, len(g.PlayerHands))
	for i, hand := range g.PlayerHands {
		cp.PlayerHands[i] = hand.Clone()
	}

	cp.DealerHand = g.DealerHand.Clone()
	if g.Deck != nil {
		cp.Deck = g.Deck.Clone()
	}

	cp.Actions = NewActionSet(g.Actions...)
	cp.HandStakes = append([]decimal.Decimal(nil), g.HandStakes...)
	cp.Outcomes = append([]Outcome(nil), g.Outcomes...)

	return &cp
}

// View is what the player is allowed to see of a round
type View struct {
	*GameState

	// DealerHand hides the hole card until the round is over
	DealerHand     Hand        `json:"dealerHand"`
	DealerValue    HandValue   `json:"dealerValue"`
	PlayerValues   []HandValue `json:"playerValues"`
	Phase          Phase       `json:"phase"`
	CardsRemaining int         `json:"cardsRemaining"`
}

// View returns the player-facing view of the round
func (g *GameState) View() *View {
	state := g.Clone()

	dealerHand := state.DealerHand
	if !state.IsCompleted && len(dealerHand) > 1 {
		dealerHand = dealerHand[:1]
	}

	values := make([]HandValue, len(state.PlayerHands))
	for i, hand := range state.PlayerHands {
		values[i] = hand.Value()
	}

	var cardsRemaining int
	if state.Deck != nil {
		cardsRemaining = state.Deck.CardsLeft()
	}

	return &View{
		GameState:      state,
		DealerHand:     dealerHand,
		DealerValue:    dealerHand.Value(),
		PlayerValues:   values,
		Phase:          state.Phase(),
		CardsRemaining: cardsRemaining,
	}
}
