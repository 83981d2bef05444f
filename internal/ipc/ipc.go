// Package ipc is the local control channel: a unix socket carrying one
// JSON command per connection, used by shopvoice-ctl.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

type Reply struct {
	OK   bool   `json:"ok"`
	Text string `json:"text,omitempty"`
}

func StartServer(socketPath string, handler func(ControlMessage) Reply) error {
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage) Reply) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	json.NewEncoder(conn).Encode(handler(msg))
}

func Send(socketPath string, msg ControlMessage) (Reply, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return Reply{}, err
	}

	var r Reply
	if err := json.NewDecoder(conn).Decode(&r); err != nil {
		return Reply{}, err
	}
	return r, nil
}
