package port

import (
	"golang.org/x/net/websocket"
)

// DialWebsocket connects to a websocket endpoint carrying the byte link
// in binary frames.
func DialWebsocket(url, origin string) (*Stream, error) {
	if origin == "" {
		origin = "http://localhost/"
	}
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return NewStream(conn, DefaultQueueSize), nil
}

// WebsocketHandler serves a Port for each websocket connection.
// serve must return when the connection is no longer needed.
func WebsocketHandler(serve func(*Stream)) websocket.Handler {
	return func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		s := NewStream(conn, DefaultQueueSize)
		defer s.Close()
		serve(s)
	}
}
