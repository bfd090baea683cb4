package blackjack

import (
	"blackjack-server/pkg/deck"
)

// Blackjack is the best possible hand total
const Blackjack = 21

// Hand is an ordered collection of cards in draw order
type Hand []deck.Card

// HandValue is the derived value of a hand
type HandValue struct {
	// Total is the best total, counting aces as 11 where that does not bust
	Total int `json:"total"`

	// IsSoft is true if an ace is counted as 11
	IsSoft bool `json:"isSoft"`

	// AlternativeTotal is the hard total (all aces as 1). It is only set for soft hands
	AlternativeTotal int `json:"alternativeTotal,omitempty"`
}

// HasAlternative returns true if a hard alternative total exists
func (h HandValue) HasAlternative() bool {
	return h.AlternativeTotal > 0
}

func cardValue(card deck.Card) int {
	if card.IsFace() {
		return 10
	}

	return card.Rank
}

// Value evaluates the hand
func (h Hand) Value() HandValue {
	hard := 0
	aces := 0
	for _, card := range h {
		if card.Rank == deck.Ace {
			aces++
		}

		hard += cardValue(card)
	}

	total := hard
	promoted := false
	for i := 0; i < aces; i++ {
		if total+10 > Blackjack {
			break
		}

		total += 10
		promoted = true
	}

	if !promoted {
		return HandValue{Total: total}
	}

	return HandValue{
		Total:            total,
		IsSoft:           true,
		AlternativeTotal: hard,
	}
}

// IsBlackjack returns true for a natural: exactly two cards totalling 21
func (h Hand) IsBlackjack() bool {
	return len(h) == 2 && h.Value().Total == Blackjack
}

// IsBust returns true if the hand is over 21
func (h Hand) IsBust() bool {
	return h.Value().Total > Blackjack
}

// IsPair returns true if the hand is two cards of the exact same rank
// A ten and a king are both worth 10, but they are not a pair
func (h Hand) IsPair() bool {
	return len(h) == 2 && h[0].Rank == h[1].Rank
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}

func (h Hand) String() string {
	return deck.CardsToString(h)
}

// DealerShouldDraw returns true if the dealer must take another card
// The dealer draws to 16 and on a soft 17, and stands on a hard 17 or better
func DealerShouldDraw(v HandValue) bool {
	return v.Total < 17 || (v.IsSoft && v.Total == 17)
}
