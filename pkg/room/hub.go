package room

import (
	"github.com/sirupsen/logrus"
)

// Hub fans round updates out to every websocket a user has open
// Every operation is queued on a single channel, so they are handled in the order they were made
// and the client map is only touched from the run loop
type Hub struct {
	clients       map[int64]map[*Client]bool
	execInRunLoop chan func()
	close         chan bool
}

// NewHub returns a new hub
// StartShift() must be called before the hub delivers messages
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[int64]map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}
}

// StartShift starts the Hub run loop
func (h *Hub) StartShift() {
	go h.runLoop()
}

// EndShift stops the run loop
func (h *Hub) EndShift() {
	h.close <- true
}

func (h *Hub) runLoop() {
	logrus.Debug("creating hub run loop")
	for {
		select {
		case fn := <-h.execInRunLoop:
			fn()
		case <-h.close:
			logrus.Debug("terminating hub run loop")
			return
		}
	}
}

// ClientConnected is called when a client connects to the server
func (h *Hub) ClientConnected(client *Client) {
	h.execInRunLoop <- func() {
		logrus.WithField("client", client.String()).Debug("client connected")
		clients, found := h.clients[client.userID]
		if !found {
			clients = make(map[*Client]bool)
			h.clients[client.userID] = clients
		}

		clients[client] = true
	}
}

// ClientDisconnected is called when a client disconnects from the server
func (h *Hub) ClientDisconnected(client *Client) {
	h.execInRunLoop <- func() {
		logrus.WithField("client", client.String()).Debug("client disconnected")
		clients, found := h.clients[client.userID]
		if !found {
			logrus.WithField("userID", client.userID).WithField("type", "exception").Warn("client not found")
			return
		}

		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

// Publish sends msg to every client the user has connected
// Users without a connected client are skipped
func (h *Hub) Publish(userID int64, msg interface{}) {
	h.execInRunLoop <- func() {
		for client := range h.clients[userID] {
			if !client.Send(msg) {
				logrus.WithField("client", client.String()).Warn("send buffer full, dropping message")
			}
		}
	}
}

// ClientCount returns the number of clients connected for the user
// Every operation queued before the call has been handled by the time it returns
func (h *Hub) ClientCount(userID int64) int {
	count := make(chan int)
	h.execInRunLoop <- func() {
		count <- len(h.clients[userID])
	}

	return <-count
}
