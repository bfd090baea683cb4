package blackjack

import "fmt"

// InvalidActionError is returned when an action is not permitted by the current state of the round
// The message is safe to return to the player
type InvalidActionError string

func (i InvalidActionError) Error() string {
	return string(i)
}

// ValidationError is returned for malformed input
// The message is safe to return to the player
type ValidationError string

func (v ValidationError) Error() string {
	return string(v)
}

// ErrNonPositiveBet is returned if the bet is zero or negative
var ErrNonPositiveBet = ValidationError("bet must be greater than zero")

// ErrFractionalCent is returned if the bet is not a whole number of cents
var ErrFractionalCent = ValidationError("bet cannot contain fractions of a cent")

// ErrInsuranceUndecided is returned if the player tries to act before taking or declining insurance
var ErrInsuranceUndecided = InvalidActionError("insurance must be decided before taking other actions")

// ErrRoundOver is returned if an action is attempted on a completed round
var ErrRoundOver = InvalidActionError("the round is over")

// ErrNoActiveRound is returned if an action is attempted when there is no round in progress
var ErrNoActiveRound = InvalidActionError("there is no round in progress")

// ErrRoundInProgress is returned if the player tries to deal while a round is in progress
var ErrRoundInProgress = InvalidActionError("finish the current round before dealing again")

func notAllowed(action Action) error {
	return InvalidActionError(fmt.Sprintf("%s is not allowed", action))
}
