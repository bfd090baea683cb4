package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"

	"blackjack-server/internal/rng"
)

// Size is the number of cards in a full deck
const Size = 52

// Deck represents a playing deck
// The deck is a stack: Draw() takes from the end of Cards
type Deck struct {
	Cards []Card `json:"cards"`
}

// New returns a new deck of cards in canonical order (suit-major, ace through king).
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New() *Deck {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, Card{
				Rank: rank,
				Suit: suit,
			})
		}
	}

	return &Deck{Cards: cards}
}

// Shuffle shuffles the deck in place using Fisher-Yates and returns the same deck
func (d *Deck) Shuffle(g rng.Generator) *Deck {
	for j := len(d.Cards) - 1; j > 0; j-- {
		i := g.Intn(j + 1)

		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}

	return d
}

// Draw will draw the top card
// A round never needs more than a fraction of the deck, so an empty deck is a programming error
func (d *Deck) Draw() Card {
	n := len(d.Cards)
	if n == 0 {
		panic("draw from an empty deck")
	}

	card := d.Cards[n-1]
	d.Cards = d.Cards[:n-1]

	return card
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}

// Clone returns a copy of the deck that does not share storage with the original
func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)

	return &Deck{Cards: cards}
}

// HashCode returns a SHA1 hash code of the deck.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.String()))
	}

	return hex.EncodeToString(hash.Sum(nil))
}

// Stacked returns a full deck whose next draws are the given cards, in order
// The remaining cards follow in canonical order. Stacked panics if top contains duplicates
func Stacked(top ...Card) *Deck {
	onTop := make(map[Card]bool, len(top))
	for _, card := range top {
		onTop[card] = true
	}

	cards := make([]Card, 0, Size)
	for _, card := range New().Cards {
		if !onTop[card] {
			cards = append(cards, card)
		}
	}

	for i := len(top) - 1; i >= 0; i-- {
		cards = append(cards, top[i])
	}

	if len(cards) != Size {
		panic("stacked deck contains duplicate cards")
	}

	return &Deck{Cards: cards}
}
