package blackjack

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// finishHand moves play to the next hand, or plays out the dealer if the last hand is done
// It is the only way a round reaches dealer resolution
func finishHand(g *GameState) *Transition {
	if g.CurrentHandIndex+1 < len(g.PlayerHands) {
		g.CurrentHandIndex++
		g.Actions = openingActions(g.ActiveHand(), false)
		g.Message += ". Moved to next hand"
		return &Transition{State: g}
	}

	return resolveDealer(g)
}

// resolveDealer plays the dealer's hand and settles every player hand
func resolveDealer(g *GameState) *Transition {
	if !allBust(g.PlayerHands) {
		for DealerShouldDraw(g.DealerHand.Value()) {
			g.DealerHand = append(g.DealerHand, g.Deck.Draw())
		}
	}

	dealer := g.DealerHand.Value()
	payout := decimal.Zero
	results := make([]string, len(g.PlayerHands))
	g.Outcomes = make([]Outcome, len(g.PlayerHands))
	for i, hand := range g.PlayerHands {
		outcome := compare(hand.Value(), dealer)
		g.Outcomes[i] = outcome
		results[i] = outcome.Label()
		payout = payout.Add(payoutFor(outcome, g.HandStakes[i]))
	}

	g.Actions = NewActionSet()
	g.IsCompleted = true
	g.Message = fmt.Sprintf("Dealer has %d. Results: %s", dealer.Total, strings.Join(results, ", "))

	return &Transition{
		State:  g,
		Payout: payout,
	}
}

// settleDealerBlackjack ends the round immediately, every player hand loses
func settleDealerBlackjack(g *GameState) {
	g.Outcomes = make([]Outcome, len(g.PlayerHands))
	for i := range g.Outcomes {
		g.Outcomes[i] = OutcomeLose
	}

	g.Actions = NewActionSet()
	g.IsCompleted = true
}

func allBust(hands []Hand) bool {
	for _, hand := range hands {
		if !hand.IsBust() {
			return false
		}
	}

	return true
}

// compare decides a single player hand against the dealer's final hand
func compare(player, dealer HandValue) Outcome {
	switch {
	case player.Total > Blackjack:
		return OutcomeLose
	case dealer.Total > Blackjack:
		return OutcomeWin
	case player.Total > dealer.Total:
		return OutcomeWin
	case player.Total < dealer.Total:
		return OutcomeLose
	}

	return OutcomePush
}

// payoutFor returns the amount credited back for a settled hand
// The stake was debited when it was placed, so a win returns it with 1:1 winnings
func payoutFor(outcome Outcome, stake decimal.Decimal) decimal.Decimal {
	switch outcome {
	case OutcomeWin:
		return stake.Mul(two)
	case OutcomePush:
		return stake
	case OutcomeBlackjack:
		return stake.Mul(naturalPays).Truncate(2)
	}

	return decimal.Zero
}
