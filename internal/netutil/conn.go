// Package netutil implements the connection I/O loop shared by the
// broker's sessions and the client: exact framed reads driven by a
// dedicated goroutine, and an outbound FIFO queue drained by a single
// writer goroutine so at most one write is ever in flight per
// connection.
package netutil

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/komurugov/publish-subscribe-assignment/internal/frame"
)

// Handler is invoked with each frame body read off the connection, in
// the order received.
type Handler func(body []byte)

// Conn wraps a net.Conn with the read-loop and outbound-queue
// discipline required by the protocol. It is safe for one goroutine to
// call ReadLoop and for any number of goroutines to call Send
// concurrently.
type Conn struct {
	nc     net.Conn
	reader *bufio.Reader

	mu      sync.Mutex
	queue   [][]byte
	writing bool
	closed  bool
}

// New wraps nc for framed I/O.
func New(nc net.Conn) *Conn {
	return &Conn{
		nc:     nc,
		reader: bufio.NewReaderSize(nc, frame.HeaderLen+frame.MaxBody),
	}
}

// Raw returns the underlying net.Conn, e.g. for RemoteAddr().
func (c *Conn) Raw() net.Conn {
	return c.nc
}

// ReadLoop blocks, reading frames and invoking handle for each body,
// until a read fails or the header is malformed. It returns the error
// that ended the loop; io.EOF indicates a clean peer disconnect.
func (c *Conn) ReadLoop(handle Handler) error {
	for {
		var header [frame.HeaderLen]byte
		if _, err := io.ReadFull(c.reader, header[:]); err != nil {
			return err
		}

		bodyLen, err := frame.DecodeHeader(header)
		if err != nil {
			return err
		}

		body := make([]byte, bodyLen)
		if bodyLen > 0 {
			if _, err := io.ReadFull(c.reader, body); err != nil {
				return err
			}
		}

		handle(body)
	}
}

// Send enqueues a pre-encoded frame for delivery. If no write is
// currently in flight, it starts one on a new goroutine; otherwise the
// frame waits in the FIFO queue and is picked up when the in-flight
// write completes. The queue is unbounded, per the protocol's
// deliberate no-flow-control simplification.
func (c *Conn) Send(frameBytes []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return net.ErrClosed
	}

	c.queue = append(c.queue, frameBytes)
	if c.writing {
		c.mu.Unlock()
		return nil
	}

	c.writing = true
	next := c.queue[0]
	c.mu.Unlock()

	go c.drainFrom(next)
	return nil
}

func (c *Conn) drainFrom(next []byte) {
	for {
		_, err := c.nc.Write(next)
		if err != nil {
			c.mu.Lock()
			c.writing = false
			c.queue = nil
			c.closed = true
			c.mu.Unlock()
			// A failed write tears the connection down so ReadLoop ends too.
			_ = c.nc.Close()
			return
		}

		c.mu.Lock()
		if len(c.queue) > 0 {
			c.queue = c.queue[1:]
		}
		if len(c.queue) == 0 {
			c.writing = false
			c.mu.Unlock()
			return
		}
		next = c.queue[0]
		c.mu.Unlock()
	}
}

// Close closes the underlying connection. Further Send calls fail with
// net.ErrClosed; an in-progress ReadLoop observes the resulting I/O
// error and returns.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.nc.Close()
}
