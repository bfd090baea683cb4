package mux

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blackjack-server/internal/config"
	"blackjack-server/internal/jwt"
	"blackjack-server/pkg/model"
	"blackjack-server/pkg/pitboss"
	"blackjack-server/pkg/room"
	"github.com/go-chi/httprate"
	gmux "github.com/gorilla/mux"
)

type ctxKey int

const (
	ctxUserKey ctxKey = iota
)

const uuidPattern = `(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}`

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config  muxConfig
	version string
	pitBoss *pitboss.PitBoss
	hub     *room.Hub

	// store for testing purposes
	authRouter  *gmux.Router
	adminRouter *gmux.Router
	ownerRouter *gmux.Router
}

type muxConfig struct {
	// requestsPerMinute is the number of authenticated requests a single IP address can make per minute
	requestsPerMinute int
}

// NewMux returns a new HTTP mux
// The hub's shift must be started by the caller
func NewMux(version string, pitBoss *pitboss.PitBoss, hub *room.Hub) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
		hub:     hub,
		config: muxConfig{
			requestsPerMinute: config.Instance().RateLimit.RequestsPerMinute,
		},
	}

	this.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, nil)
	})

	this.authRouter = this.Router.NewRoute().Subrouter()
	if this.config.requestsPerMinute > 0 {
		this.authRouter.Use(httprate.LimitByIP(this.config.requestsPerMinute, time.Minute))
	}
	this.authRouter.Use(this.authMiddleware)

	this.adminRouter = this.authRouter.NewRoute().Subrouter()
	this.adminRouter.Use(this.roleMiddleware(model.RoleAdmin))

	this.ownerRouter = this.authRouter.NewRoute().Subrouter()
	this.ownerRouter.Use(this.roleMiddleware(model.RoleOwner))

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires bearer authorization
	{
		r := this.authRouter
		r.Methods(http.MethodGet).Path("/user/me").Handler(this.getUserMe())

		r.Methods(http.MethodGet).Path("/game").Handler(this.getGame())
		r.Methods(http.MethodGet).Path("/game/history").Handler(this.getGameHistory())
		r.Methods(http.MethodGet).Path("/game/ws").Handler(this.getGameWS())
		r.Methods(http.MethodGet).Path("/game/{id:" + uuidPattern + "}").Handler(this.getGameID())

		r.Methods(http.MethodPost).Path("/game/deal").Handler(this.postGameDeal())
		for path, cmd := range commandPaths {
			r.Methods(http.MethodPost).Path(path).Handler(this.postGameCommand(cmd))
		}
	}

	// requires admin access
	// depends on authMiddleware
	{
		r := this.adminRouter
		r.Methods(http.MethodGet).Path("/user").Handler(this.getUser())
		r.Methods(http.MethodGet).Path("/user/{id:[0-9]+}").Handler(this.getUserID())
		r.Methods(http.MethodPost).Path("/user/{id:[0-9]+}/balance").Handler(this.postUserIDBalance())
	}

	// requires owner access
	{
		r := this.ownerRouter
		r.Methods(http.MethodPost).Path("/user/{id:[0-9]+}/role").Handler(this.postUserIDRole())
	}

	return this
}

// bearerToken returns the token from the access_token parameter or the Authorization header
func bearerToken(r *http.Request) string {
	if token := r.FormValue("access_token"); token != "" {
		return token
	}

	authHeader := strings.Split(r.Header.Get("Authorization"), " ")
	if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
		return ""
	}

	return authHeader[1]
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, pitboss.ErrUnauthorized)
			return
		}

		id, err := jwt.ValidUserID(token)
		if err != nil {
			writeError(w, pitboss.ErrUnauthorized)
			return
		}

		user, err := model.GetUserByID(r.Context(), id)
		if err != nil {
			if err != model.ErrUserNotFound {
				writeError(w, err)
				return
			}

			writeError(w, pitboss.ErrUnauthorized)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUserKey, user)
		w.Header().Set("Blackjack-UserID", strconv.FormatInt(user.ID, 10))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// roleMiddleware requires authMiddleware to execute first
func (m *Mux) roleMiddleware(role model.Role) gmux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !currentUser(r).Role.AtLeast(role) {
				writeError(w, pitboss.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) *model.User {
	return r.Context().Value(ctxUserKey).(*model.User)
}
