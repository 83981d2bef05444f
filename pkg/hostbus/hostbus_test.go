package hostbus_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"shopvoice/pkg/hostbus"
)

func TestPublishAndReceive(t *testing.T) {
	upgrader := ws.Upgrader{}
	received := make(chan hostbus.Message, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Push one control frame to the engine.
		raw, _ := json.Marshal(hostbus.Message{Kind: hostbus.KindConsent, Text: "granted"})
		require.NoError(t, conn.WriteMessage(ws.TextMessage, raw))

		// Then collect what the engine publishes.
		_, raw, err = conn.ReadMessage()
		require.NoError(t, err)
		var m hostbus.Message
		require.NoError(t, json.Unmarshal(raw, &m))
		received <- m
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := hostbus.Dial(url, time.Second)
	require.NoError(t, err)
	defer c.Close()

	fromHost := make(chan hostbus.Message, 1)
	go c.Run(func(m hostbus.Message) { fromHost <- m })

	select {
	case m := <-fromHost:
		require.Equal(t, hostbus.KindConsent, m.Kind)
		require.Equal(t, "granted", m.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("no control frame from host")
	}

	c.Publish(hostbus.Message{Kind: hostbus.KindTranscript, Text: "add earbuds", Seq: 1, Final: true})

	select {
	case m := <-received:
		require.Equal(t, hostbus.KindTranscript, m.Kind)
		require.Equal(t, "add earbuds", m.Text)
		require.True(t, m.Final)
	case <-time.After(2 * time.Second):
		t.Fatal("host never received the published frame")
	}
}

func TestCloseEndsRunWhileHostIsDown(t *testing.T) {
	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn.Close()
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := hostbus.Dial(url, 10*time.Millisecond)
	require.NoError(t, err)

	// Take the host down so every reconnect attempt fails.
	srv.Close()

	done := make(chan struct{})
	go func() {
		c.Run(func(hostbus.Message) {})
		close(done)
	}()

	time.Sleep(50 * time.Millisecond) // let the reconnect loop spin
	c.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close while the host was down")
	}
}

func TestDialFailure(t *testing.T) {
	_, err := hostbus.Dial("ws://127.0.0.1:1/ws", time.Second)
	require.Error(t, err)
}
