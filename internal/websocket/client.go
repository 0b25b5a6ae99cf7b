package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/toodo/internal/live"
	"github.com/dukerupert/toodo/internal/store"
	"github.com/dukerupert/toodo/internal/view"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Reorderer runs drag gestures on behalf of a client.
type Reorderer interface {
	BeginDrag(p view.Params) (*view.Drag, error)
	ReleaseDrag(d *view.Drag) ([]store.OrderChange, error)
}

// Inbound is a client request. Type selects which fields are used:
// "params" sets the view inputs, "drag_start", "move" and "drag_end" run a
// reorder gesture.
type Inbound struct {
	Type   string      `json:"type"`
	Params view.Params `json:"params"`
	From   int         `json:"from"`
	To     int         `json:"to"`
}

type snapshotFrame struct {
	Type     string        `json:"type"`
	Snapshot live.Snapshot `json:"snapshot"`
}

type orderFrame struct {
	Type    string             `json:"type"`
	Changes []store.OrderChange `json:"changes"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Client represents a single WebSocket connection.
type Client struct {
	hub       *Hub
	conn      *ws.Conn
	send      chan []byte
	sub       *live.Subscription
	reorderer Reorderer
	drag      *view.Drag
}

// NewClient creates a Client tied to the given hub, connection and snapshot
// subscription.
func NewClient(hub *Hub, conn *ws.Conn, sub *live.Subscription, reorderer Reorderer) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		sub:       sub,
		reorderer: reorderer,
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)
	defer c.sub.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump decodes client requests until the connection closes.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.reply(errorFrame{Type: "error", Error: "invalid message"})
			continue
		}
		c.handle(in)
	}
}

func (c *Client) handle(in Inbound) {
	switch in.Type {
	case "params":
		if err := c.sub.SetParams(in.Params); err != nil {
			c.hub.logger.Error("set view params", "error", err)
			c.reply(errorFrame{Type: "error", Error: "failed to load tasks"})
		}
	case "drag_start":
		c.drag = nil
		drag, err := c.reorderer.BeginDrag(c.sub.Params())
		if errors.Is(err, view.ErrNotReorderable) {
			c.reply(errorFrame{Type: "error", Error: err.Error()})
			return
		}
		if err != nil {
			c.hub.logger.Error("begin drag", "error", err)
			c.reply(errorFrame{Type: "error", Error: "failed to start reorder"})
			return
		}
		c.drag = drag
	case "move":
		if c.drag != nil {
			c.drag.Move(in.From, in.To)
		}
	case "drag_end":
		if c.drag == nil {
			return
		}
		changes, err := c.reorderer.ReleaseDrag(c.drag)
		c.drag = nil
		if err != nil {
			c.hub.logger.Error("release drag", "error", err)
			c.reply(errorFrame{Type: "error", Error: "failed to save order"})
			return
		}
		c.reply(orderFrame{Type: "order_saved", Changes: changes})
	default:
		c.reply(errorFrame{Type: "error", Error: "unknown message type"})
	}
}

func (c *Client) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel and the snapshot subscription and writes
// them to the WebSocket. It also sends periodic pings to detect stale
// connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case snap, ok := <-c.sub.Updates():
			if !ok {
				return
			}
			data, err := json.Marshal(snapshotFrame{Type: "snapshot", Snapshot: snap})
			if err != nil {
				c.hub.logger.Error("marshal snapshot", "error", err)
				continue
			}
			if err := c.conn.Write(ctx, ws.MessageText, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
