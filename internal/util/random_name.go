package util

import (
	"fmt"
	"math/rand"
	"time"
)

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

var adjectives = []string{
	"Lucky", "Bold", "Cool", "Steady", "Sharp", "Quiet", "Daring", "Clever", "Patient", "Golden",
	"Silver", "Velvet", "Midnight", "Neon", "Wild", "Careful", "Reckless", "Stoic", "Sly", "Brave",
}

var nicknames = []string{
	"Ace", "Shark", "Dealer", "Gambler", "Card Counter", "High Roller", "Pit Boss", "Croupier", "Whale",
	"Hustler", "Shooter", "Punter", "Maverick", "Rounder", "Grinder",
}

// GetRandomName returns a random display name for a new player
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	nicknamesIndex := random.Intn(len(nicknames))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], nicknames[nicknamesIndex])
}
