// Package broker implements the server-side session and room engine:
// per-connection subscription state and topic-filtered fan-out of
// published messages to subscribers.
package broker

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/komurugov/publish-subscribe-assignment/internal/netutil"
	"github.com/komurugov/publish-subscribe-assignment/internal/protocol"
)

// Session is the server-side state for one accepted connection: its
// socket, its subscription set, and its outbound queue (owned by its
// netutil.Conn).
type Session struct {
	conn   *netutil.Conn
	room   *Room
	logger *slog.Logger

	mu            sync.Mutex
	subscriptions map[string]struct{}
}

func newSession(nc net.Conn, room *Room, logger *slog.Logger) *Session {
	return &Session{
		conn:          netutil.New(nc),
		room:          room,
		logger:        logger,
		subscriptions: make(map[string]struct{}),
	}
}

// serve registers the session with its room and blocks reading frames
// until the connection fails or the peer disconnects. The caller
// should run serve on its own goroutine per accepted connection.
func (s *Session) serve() {
	s.room.join(s)
	s.logger.Info("a client connected", "remote", s.conn.Raw().RemoteAddr())

	err := s.conn.ReadLoop(s.handleBody)

	s.room.leave(s)
	_ = s.conn.Close()

	if err != nil && !errors.Is(err, io.EOF) {
		s.logger.Debug("session read loop ended", "error", err)
	}
	s.logger.Info("a client disconnected")
}

func (s *Session) handleBody(body []byte) {
	msg := protocol.DecodeClient(body)

	switch msg.Kind {
	case protocol.KindSubscribe:
		s.logger.Info("a client tries to subscribe to the topic", "topic", msg.Topic)
		s.mu.Lock()
		s.subscriptions[msg.Topic] = struct{}{}
		s.mu.Unlock()
	case protocol.KindUnsubscribe:
		s.logger.Info("a client tries to unsubscribe from the topic", "topic", msg.Topic)
		s.mu.Lock()
		delete(s.subscriptions, msg.Topic)
		s.mu.Unlock()
	case protocol.KindPublish:
		s.logger.Info("a client sent data with topic", "data", msg.Data, "topic", msg.Topic)
		s.room.deliver(msg.Topic, msg.Data)
	case protocol.KindUnknown:
		// Silently ignored, per protocol.
	}
}

// subscribed reports whether this session currently subscribes to topic.
func (s *Session) subscribed(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subscriptions[topic]
	return ok
}

// deliver sends a ServerDeliver frame for (topic, data) to this
// session if, and only if, it is currently subscribed to topic.
// OversizedBody failures are suppressed for this peer rather than
// propagated — the room's fan-out must not stop for other subscribers.
func (s *Session) deliver(topic, data string) {
	if !s.subscribed(topic) {
		return
	}

	f, err := protocol.EncodeDeliver(topic, data)
	if err != nil {
		s.logger.Warn("dropping oversized delivery", "topic", topic, "error", err)
		return
	}

	if err := s.conn.Send(f); err != nil {
		s.logger.Debug("delivery enqueue failed", "topic", topic, "error", err)
		return
	}

	s.logger.Info("the server is sending data with the topic to a client", "data", data, "topic", topic)
}
