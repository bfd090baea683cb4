package room

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	userID int64
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, userID int64) *Client {
	return &Client{
		send:   make(chan interface{}, 256),
		Close:  make(chan string),
		Conn:   conn,
		userID: userID,
	}
}

// Send send a message to the web client
// Returns false if the client's buffer is full
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// UserID returns the ID of the user the client belongs to
func (c *Client) UserID() int64 {
	return c.userID
}

// String returns a traceable identifier for the client
func (c *Client) String() string {
	return fmt.Sprintf("user:%d:%p", c.userID, c)
}
