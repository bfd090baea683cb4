package mux

import (
	"net/http"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/pitboss"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

var commandPaths = map[string]blackjack.Command{
	"/game/hit":               blackjack.CommandHit,
	"/game/stand":             blackjack.CommandStand,
	"/game/double-down":       blackjack.CommandDoubleDown,
	"/game/split":             blackjack.CommandSplit,
	"/game/insurance":         blackjack.CommandInsurance,
	"/game/insurance/decline": blackjack.CommandDeclineInsurance,
}

type dealPayload struct {
	Bet decimal.Decimal `json:"bet" validate:"required,gt=0"`
}

func (m *Mux) getGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := m.pitBoss.CurrentRound(r.Context(), currentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}

		if view == nil {
			writeJSON(w, http.StatusOK, &pitboss.Result{
				Kind:    pitboss.KindInfo,
				Message: "Place a bet to start a round",
			})
			return
		}

		writeJSON(w, http.StatusOK, pitboss.ResultFromView(view))
	}
}

func (m *Mux) getGameID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := m.pitBoss.Round(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func (m *Mux) getGameHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeError(w, err)
			return
		}

		views, err := m.pitBoss.History(r.Context(), currentUser(r).ID, offset, limit)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, views)
	}
}

func (m *Mux) postGameDeal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload dealPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		view, err := m.pitBoss.Deal(r.Context(), currentUser(r).ID, payload.Bet)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pitboss.ResultFromView(view))
	}
}

func (m *Mux) postGameCommand(cmd blackjack.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := m.pitBoss.Act(r.Context(), currentUser(r).ID, cmd)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pitboss.ResultFromView(view))
	}
}
