package mux

import (
	"net/http"
	"strconv"

	"blackjack-server/pkg/model"
	"blackjack-server/pkg/pitboss"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type balancePayload struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason string          `json:"reason" validate:"max=200"`
}

type balanceResponse struct {
	UserID  int64           `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

type rolePayload struct {
	Role model.Role `json:"role" validate:"required,oneof=default admin owner"`
}

func (m *Mux) getUserMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	}
}

func (m *Mux) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := parsePaginationOptions(r)
		if err != nil {
			writeError(w, err)
			return
		}

		users, err := model.GetUsersWithSearch(r.Context(), r.FormValue("search"), offset, limit)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, users)
	}
}

// userFromPath loads the user named by the {id} path variable
// If nil is returned, the error has been written to the response
func userFromPath(w http.ResponseWriter, r *http.Request) *model.User {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return nil
	}

	user, err := model.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil
	}

	return user
}

func (m *Mux) getUserID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user := userFromPath(w, r); user != nil {
			writeJSON(w, http.StatusOK, user)
		}
	}
}

func (m *Mux) postUserIDBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		var payload balancePayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		balance, err := m.pitBoss.AdjustBalance(r.Context(), id, payload.Amount, payload.Reason)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{
			UserID:  id,
			Balance: balance,
		})
	}
}

func (m *Mux) postUserIDRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rolePayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		user := userFromPath(w, r)
		if user == nil {
			return
		}

		if user.ID == currentUser(r).ID {
			writeError(w, model.UserError("you cannot change your own role"))
			return
		}

		if err := user.SetRole(r.Context(), payload.Role); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, &pitboss.Result{
			Kind:    pitboss.KindSuccess,
			Message: "Role updated",
		})
	}
}
