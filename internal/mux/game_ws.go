package mux

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/pitboss"
	"blackjack-server/pkg/room"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// payloadIn is a command sent by the client over the websocket
type payloadIn struct {
	Command blackjack.Command `json:"command"`
	Bet     decimal.Decimal   `json:"bet"`
}

func (m *Mux) getGameWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		client := room.NewClient(conn, user.ID)
		m.hub.ClientConnected(client)

		// the client starts from the current state of the table
		if view, err := m.pitBoss.CurrentRound(r.Context(), user.ID); err != nil {
			logrus.WithError(err).WithField("client", client.String()).Error("could not load round")
			result, _ := pitboss.ResultFromError(err)
			client.Send(&room.Response{Key: room.KeyError, Value: result.Message})
		} else if view != nil {
			client.Send(&room.Response{Key: room.KeyRound, Data: view})
		}

		waitForCloseFrame := make(chan bool)
		defer func() {
			m.hub.ClientDisconnected(client)
			_ = conn.Close()
			close(waitForCloseFrame)
		}()

		go m.webSocketWriteLoop(client, waitForCloseFrame)
		m.webSocketReadLoop(r, client)
	}
}

func (m *Mux) webSocketWriteLoop(client *room.Client, waitForCloseFrame chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case reason := <-client.Close:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = client.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))

			// wait for the close frame
			select {
			case <-waitForCloseFrame:
			case <-time.After(time.Second):
			}
			return
		case msg := <-client.SendChan():
			if logrus.IsLevelEnabled(logrus.TraceLevel) {
				msgBytes, _ := json.Marshal(msg)
				logrus.WithField("message", string(msgBytes)).WithField("client", client.String()).Trace("sending message to client")
			}

			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("client", client.String()).Error("could not write message")
				return
			}
		case <-waitForCloseFrame:
			return
		}
	}
}

func (m *Mux) webSocketReadLoop(r *http.Request, client *room.Client) {
	for {
		var msg payloadIn
		if err := client.Conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				client.Send(room.NewErrorResponse(blackjack.ValidationError("invalid JSON payload")))
				continue
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("client", client.String()).Error("could not read message")
			}

			return
		}

		m.receivedMessage(r, client, &msg)
	}
}

// receivedMessage runs a command sent over the websocket
// The resulting round reaches the client through the hub, so only errors are sent back directly
func (m *Mux) receivedMessage(r *http.Request, client *room.Client, msg *payloadIn) {
	var err error
	if msg.Command == "deal" {
		_, err = m.pitBoss.Deal(r.Context(), client.UserID(), msg.Bet)
	} else {
		_, err = m.pitBoss.Act(r.Context(), client.UserID(), msg.Command)
	}

	if err != nil {
		result, _ := pitboss.ResultFromError(err)
		if result.Kind == pitboss.KindError {
			logrus.WithError(err).WithField("client", client.String()).Error("command failed")
		}

		client.Send(&room.Response{Key: room.KeyError, Value: result.Message})
	}
}
