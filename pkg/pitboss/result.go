package pitboss

import (
	"errors"
	"net/http"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/ledger"
	"blackjack-server/pkg/model"
)

// Kind is the severity of a result
type Kind string

// Kind constants
const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// UnauthorizedError is returned when the caller could not be identified
type UnauthorizedError string

func (u UnauthorizedError) Error() string {
	return string(u)
}

// ForbiddenError is returned when the caller lacks the role for the request
type ForbiddenError string

func (f ForbiddenError) Error() string {
	return string(f)
}

// ErrUnauthorized is returned when there is no valid identity
var ErrUnauthorized = UnauthorizedError("you must be signed in")

// ErrForbidden is returned when the user does not have the appropriate permission
var ErrForbidden = ForbiddenError("you do not have the appropriate permission")

// ErrRoundNotFound is returned when a round does not exist for the user
var ErrRoundNotFound = model.UserError("round not found")

// SignInPath is where unauthenticated callers are sent
const SignInPath = "/signin"

// Result is the envelope returned for every action
type Result struct {
	Kind       Kind            `json:"kind"`
	Message    string          `json:"message"`
	Notify     bool            `json:"notify"`
	RedirectTo string          `json:"redirectTo,omitempty"`
	Round      *blackjack.View `json:"round,omitempty"`
}

// ResultFromView describes a round after a successful action
// Settled rounds notify the player
func ResultFromView(view *blackjack.View) *Result {
	if view.IsCompleted {
		return &Result{
			Kind:    KindSuccess,
			Message: view.Message,
			Notify:  true,
			Round:   view,
		}
	}

	return &Result{
		Kind:    KindInfo,
		Message: view.Message,
		Round:   view,
	}
}

// ResultFromError converts an error into a result and the HTTP status that goes with it
// Errors that aren't meant for the player are reported with a generic message
func ResultFromError(err error) (*Result, int) {
	var unauthorized UnauthorizedError
	var forbidden ForbiddenError
	var validation blackjack.ValidationError
	var invalidAction blackjack.InvalidActionError
	var userError model.UserError

	switch {
	case errors.As(err, &unauthorized):
		return &Result{Kind: KindError, Message: unauthorized.Error(), Notify: true, RedirectTo: SignInPath}, http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return &Result{Kind: KindError, Message: forbidden.Error(), Notify: true}, http.StatusForbidden
	case errors.As(err, &validation):
		return &Result{Kind: KindWarning, Message: validation.Error(), Notify: true}, http.StatusBadRequest
	case errors.As(err, &invalidAction):
		return &Result{Kind: KindWarning, Message: invalidAction.Error(), Notify: true}, http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return &Result{Kind: KindWarning, Message: "Insufficient funds", Notify: true}, http.StatusPaymentRequired
	case errors.Is(err, model.ErrRoundConflict):
		return &Result{Kind: KindWarning, Message: blackjack.ErrRoundInProgress.Error(), Notify: true}, http.StatusConflict
	case errors.Is(err, ledger.ErrUserNotFound):
		return &Result{Kind: KindError, Message: model.ErrUserNotFound.Error(), Notify: true}, http.StatusNotFound
	case errors.As(err, &userError):
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, ErrRoundNotFound) {
			status = http.StatusNotFound
		}

		return &Result{Kind: KindError, Message: userError.Error(), Notify: true}, status
	}

	return &Result{Kind: KindError, Message: "An unexpected error occurred", Notify: true}, http.StatusInternalServerError
}
