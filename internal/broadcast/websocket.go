package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

var (
	ErrSubscriberClosed = errors.New("subscriber closed")
	ErrSubscriberSlow   = errors.New("subscriber send buffer full")
)

// WSClient adapts a websocket connection to Subscriber. All writes happen on
// the write pump goroutine; Send only queues.
type WSClient struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	open      atomic.Bool
	closeOnce sync.Once
}

func NewWSClient(conn *websocket.Conn) *WSClient {
	c := &WSClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.open.Store(true)
	return c
}

func (c *WSClient) ID() string {
	return c.id
}

func (c *WSClient) Open() bool {
	return c.open.Load()
}

func (c *WSClient) Send(payload []byte) error {
	if !c.open.Load() {
		return ErrSubscriberClosed
	}

	select {
	case <-c.done:
		return ErrSubscriberClosed
	case c.send <- payload:
		return nil
	default:
		return ErrSubscriberSlow
	}
}

func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		close(c.done)
	})
}

// Serve registers the client with hub and blocks until the connection ends.
// Clients never send application data; reads only drive pong handling and
// disconnect detection.
func (c *WSClient) Serve(hub *Hub) {
	if !hub.Register(c) {
		c.conn.Close()
		return
	}

	go c.writePump()
	c.readPump()

	hub.Unregister(c)
	c.Close()
}

func (c *WSClient) readPump() {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}
