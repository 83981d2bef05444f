// Package hostbus links the engine to the host UI over a websocket.
// The engine mirrors interim transcripts, replies and connectivity
// state outward; the host pushes control messages (trigger, stop,
// consent decisions, connectivity transitions) inward.
package hostbus

import (
	"encoding/json"
	log "log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

// Message is the single frame type flowing both ways.
type Message struct {
	Kind    string `json:"kind"`
	Text    string `json:"text,omitempty"`
	Emotion string `json:"emotion,omitempty"`
	Seq     int    `json:"seq,omitempty"`
	Final   bool   `json:"final,omitempty"`
}

// Message kinds.
const (
	KindTranscript   = "transcript"   // out: interim/final transcript text
	KindResponse     = "response"     // out: spoken reply + emotion
	KindListening    = "listening"    // out: capture session state
	KindError        = "error"        // out: user-visible errors
	KindConsent      = "consent"      // in: "granted" / "revoked"
	KindConnectivity = "connectivity" // both: "online" / "offline"
	KindTrigger      = "trigger"      // in: start listening
	KindStop         = "stop"         // in: stop listening
)

type Client struct {
	url    string
	reconn time.Duration

	writeMu sync.Mutex
	conn    *ws.Conn
}

func Dial(url string, reconn time.Duration) (*Client, error) {
	if reconn <= 0 {
		reconn = 3 * time.Second
	}
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to host bus", "url", url)
	return &Client{url: url, reconn: reconn, conn: conn}, nil
}

// Publish sends one frame to the host. Send failures are logged and
// dropped: the host UI is a mirror, never a dependency of the
// interaction loop.
func (c *Client) Publish(m Message) {
	raw, err := json.Marshal(m)
	if err != nil {
		log.Error("Failed to marshal bus message", "err", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.conn.WriteMessage(ws.TextMessage, raw); err != nil {
		log.Warn("Failed to publish to host bus", "err", err)
	}
}

// Run reads control frames until Close, reconnecting on dropped
// connections. Blocks; run it on its own goroutine.
func (c *Client) Run(handle func(Message)) {
	for {
		c.writeMu.Lock()
		conn := c.conn
		c.writeMu.Unlock()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !isClosed(err) {
				log.Error("Host bus read failed", "err", err)
			}
			log.Warn("Host bus disconnected, reconnecting", "url", c.url)
			if !c.tryReconnect() {
				return
			}
			continue
		}

		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			log.Warn("Dropping malformed bus frame", "err", err)
			continue
		}
		handle(m)
	}
}

func (c *Client) Close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// tryReconnect dials until it succeeds or the client is closed. The
// closed check runs every attempt so Close ends the loop even while
// the host stays down.
func (c *Client) tryReconnect() bool {
	for {
		if c.closed() {
			return false
		}

		conn, _, err := ws.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			c.writeMu.Lock()
			closed := c.conn == nil
			if !closed {
				c.conn = conn
			}
			c.writeMu.Unlock()
			if closed {
				conn.Close()
				return false
			}
			log.Info("Reconnected to host bus")
			return true
		}
		time.Sleep(c.reconn)
	}
}

func (c *Client) closed() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn == nil
}

func isClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
