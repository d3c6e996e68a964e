package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WSHandler streams every event published on a topic to a websocket client,
// one JSON message per event, until the client disconnects.
type WSHandler[T any] struct {
	bus      *Bus[T]
	topic    Topic
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler[T any](bus *Bus[T], topic Topic, log logrus.FieldLogger) *WSHandler[T] {
	return &WSHandler[T]{
		bus:   bus,
		topic: topic,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP subscribes before upgrading, so a client that has seen the
// handshake complete is guaranteed every event published afterwards.
func (h *WSHandler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub := h.bus.Subscribe(h.topic)
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	go h.readPump(conn, sub)
	go h.pingLoop(conn, sub.Done())

	for v := range sub.All(r.Context()) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			h.log.WithError(err).Debug("websocket write failed")
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// pingLoop keeps the peer's read deadline fresh. WriteControl may run
// concurrently with the JSON writer.
func (h *WSHandler[T]) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed, and ends
// the subscription once the client goes away.
func (h *WSHandler[T]) readPump(conn *websocket.Conn, sub *Subscription[T]) {
	defer sub.Close()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("websocket closed unexpectedly")
			}
			return
		}
	}
}
