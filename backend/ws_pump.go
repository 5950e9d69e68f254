package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// pumpWS forwards queued frames to conn until send is closed, pinging the
// peer whenever the connection has been quiet for a full interval. A closed
// send channel ends the connection with a normal close frame.
func pumpWS(conn *websocket.Conn, send <-chan []byte, pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	quiet := true

	for {
		select {
		case frame, ok := <-send:
			deadline := time.Now().Add(wsWriteWait)
			if !ok {
				return conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			}
			_ = conn.SetWriteDeadline(deadline)
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return err
			}
			quiet = false
		case <-ticker.C:
			if !quiet {
				quiet = true
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return err
			}
		}
	}
}
