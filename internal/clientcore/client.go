package clientcore

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/komurugov/publish-subscribe-assignment/internal/netutil"
	"github.com/komurugov/publish-subscribe-assignment/internal/protocol"
)

// Printer receives each successfully decoded delivery for display.
type Printer func(topic, data string)

// Client drives a single active connection to a broker at a time,
// translating Commands into outbound frames and handing received
// deliveries to a Printer. Connecting replaces any previously active
// connection.
type Client struct {
	logger *slog.Logger
	print  Printer
	dialFn func(network, address string) (net.Conn, error)

	mu   sync.Mutex
	conn *netutil.Conn
}

// New constructs a Client that prints deliveries via print.
func New(logger *slog.Logger, print Printer) *Client {
	return &Client{logger: logger, print: print, dialFn: net.Dial}
}

// Connect dials 127.0.0.1:port and starts its read loop on a new
// goroutine so incoming deliveries are printed without waiting for
// further user input. Any previously active connection is closed
// first.
func (c *Client) Connect(port string) error {
	c.mu.Lock()
	prev := c.conn
	c.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}

	nc, err := c.dialFn("tcp", net.JoinHostPort("127.0.0.1", port))
	if err != nil {
		return fmt.Errorf("clientcore: connect: %w", err)
	}

	conn := netutil.New(nc)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)

	return nil
}

func (c *Client) readLoop(conn *netutil.Conn) {
	err := conn.ReadLoop(func(body []byte) {
		topic, data, derr := protocol.DecodeDeliver(body)
		if derr != nil {
			c.logger.Debug("dropping malformed delivery", "error", derr)
			return
		}
		c.print(topic, data)
	})

	if err != nil && err != io.EOF {
		c.logger.Debug("connection closed", "error", err)
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

// Disconnect closes the active connection, if any.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

var errNotConnected = fmt.Errorf("clientcore: not connected")

func (c *Client) active() (*netutil.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, errNotConnected
	}
	return c.conn, nil
}

// Subscribe sends a Subscribe message for topic.
func (c *Client) Subscribe(topic string) error {
	conn, err := c.active()
	if err != nil {
		return err
	}
	f, err := protocol.EncodeSubscribe(topic)
	if err != nil {
		return err
	}
	return conn.Send(f)
}

// Unsubscribe sends an Unsubscribe message for topic.
func (c *Client) Unsubscribe(topic string) error {
	conn, err := c.active()
	if err != nil {
		return err
	}
	f, err := protocol.EncodeUnsubscribe(topic)
	if err != nil {
		return err
	}
	return conn.Send(f)
}

// Publish sends a Publish message for (topic, data).
func (c *Client) Publish(topic, data string) error {
	conn, err := c.active()
	if err != nil {
		return err
	}
	f, err := protocol.EncodePublish(topic, data)
	if err != nil {
		return err
	}
	return conn.Send(f)
}

// Dispatch executes a parsed Command against the client.
func (c *Client) Dispatch(cmd Command) error {
	switch cmd.Kind {
	case CommandConnect:
		return c.Connect(cmd.Port)
	case CommandDisconnect:
		c.Disconnect()
		return nil
	case CommandSubscribe:
		return c.Subscribe(cmd.Topic)
	case CommandUnsubscribe:
		return c.Unsubscribe(cmd.Topic)
	case CommandPublish:
		return c.Publish(cmd.Topic, cmd.Data)
	default:
		return fmt.Errorf("clientcore: unhandled command kind %v", cmd.Kind)
	}
}
