package unii

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/daemonp/unii2mqtt/internal/log"
)

// DefaultPort is the vendor's standard TCP service port.
const DefaultPort = 6502

const (
	dialTimeout = 10 * time.Second
	// The receive loop polls the socket with a short deadline so it can
	// notice cancellation between reads.
	readPollTimeout = 100 * time.Millisecond
	// Once a header has arrived the remainder of the message is expected
	// promptly.
	readRemainderTimeout = 5 * time.Second
	closeTimeout         = 5 * time.Second
)

// connection owns the TCP socket and the per-connection session state: the
// session ID, the monotonic outbound sequence counter and the last received
// sequence number echoed on subsequent sends.
type connection struct {
	log       *log.Logger
	host      string
	port      int
	sharedKey []byte

	// mu serializes writes and guards the session state shared between the
	// sender and the receive loop.
	mu           sync.Mutex
	conn         net.Conn
	sessionID    uint16
	txSequence   uint32
	rxSequence   uint32
	lastSent     time.Time
	lastReceived time.Time

	onMessage func(*Message)

	done     chan struct{}
	loopDone chan struct{}
}

func newConnection(host string, port int, sharedKey []byte, logger *log.Logger) *connection {
	return &connection{
		log:       logger,
		host:      host,
		port:      port,
		sharedKey: sharedKey,
	}
}

func (c *connection) String() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

func (c *connection) setOnMessage(callback func(*Message)) {
	c.onMessage = callback
}

func (c *connection) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *connection) lastMessageSent() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSent
}

// connect opens the socket and launches the background receive loop.
func (c *connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	c.log.Info("Connecting to %s", c)
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", c.host, c.port), dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c, err)
	}
	c.log.Info("Connected to %s", c)

	c.conn = conn
	// This client supports a single session; the real session ID arrives
	// with the peer's first reply.
	c.sessionID = 0xFFFF
	// Start with a random TX sequence.
	c.txSequence = uint32(rand.Intn(0x10000))
	c.rxSequence = 0

	c.done = make(chan struct{})
	c.loopDone = make(chan struct{})
	go c.receiveLoop(c.conn, c.done, c.loopDone)

	return nil
}

// send builds a message for the given command, writes it to the socket and
// returns the TX sequence number used, which doubles as the correlation key.
// A non-nil onSequence is invoked with that sequence number before the bytes
// hit the wire, so the caller can register a correlation entry without racing
// the receive loop.
func (c *connection) send(command Command, data []byte, onSequence func(uint32)) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return 0, fmt.Errorf("connection to %s is not open", c)
	}

	c.txSequence++
	request := &Request{
		SessionID:  c.sessionID,
		TxSequence: c.txSequence,
		RxSequence: c.rxSequence,
		Command:    command,
		Data:       data,
	}
	encoded, err := request.Encode(c.sharedKey)
	if err != nil {
		return 0, err
	}

	if onSequence != nil {
		onSequence(request.TxSequence)
	}

	if _, err := c.conn.Write(encoded); err != nil {
		c.closeLocked()
		return request.TxSequence, fmt.Errorf("failed to send %s: %v", command, err)
	}
	c.lastSent = time.Now()

	return request.TxSequence, nil
}

// receiveLoop reads the fixed-size header, then the declared remainder of
// each message, decodes it and dispatches the result. Single-frame failures
// are logged and the loop continues; a connection reset closes the socket
// and stops the loop.
func (c *connection) receiveLoop(conn net.Conn, done, loopDone chan struct{}) {
	defer close(loopDone)

	header := make([]byte, headerLength)
	for {
		select {
		case <-done:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readPollTimeout))
		n, err := conn.Read(header)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
				c.log.Error("Read error: %v", err)
			}
			c.teardown()
			return
		}
		if n < headerLength {
			conn.SetReadDeadline(time.Now().Add(readRemainderTimeout))
			if _, err := io.ReadFull(conn, header[n:]); err != nil {
				c.log.Error("Failed to read message header: %v", err)
				c.teardown()
				return
			}
		}

		packetLength := int(header[12])<<8 | int(header[13])
		if packetLength < headerLength+2 {
			c.log.Error("Invalid packet length %d", packetLength)
			continue
		}

		raw := make([]byte, packetLength)
		copy(raw, header)
		conn.SetReadDeadline(time.Now().Add(readRemainderTimeout))
		if _, err := io.ReadFull(conn, raw[headerLength:]); err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				c.log.Error("Message not fully received")
				continue
			}
			c.log.Error("Read error: %v", err)
			c.teardown()
			return
		}

		message, err := DecodeMessage(raw, c.sharedKey)
		if err != nil {
			// A corrupt frame is dropped; the protocol self-heals on the
			// next frame boundary.
			c.log.Error("Failed to decode message: %v", err)
			continue
		}

		c.mu.Lock()
		if message.RxSequence != c.txSequence {
			c.log.Warn("Invalid sequence number, expected %d, received %d", c.txSequence, message.RxSequence)
		}
		c.sessionID = message.SessionID
		c.rxSequence = message.TxSequence
		c.lastReceived = time.Now()
		c.mu.Unlock()

		c.log.Trace("Received %s from %s", message.Command, c)
		if c.onMessage != nil {
			c.onMessage(message)
		}
	}
}

// close shuts the socket down and waits for the receive loop to finish. A
// receive loop that fails to stop within the close timeout is reported as an
// error instead of being silently abandoned.
func (c *connection) close() error {
	c.mu.Lock()
	done, loopDone := c.done, c.loopDone
	c.done, c.loopDone = nil, nil
	c.closeLocked()
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	if loopDone != nil {
		select {
		case <-loopDone:
		case <-time.After(closeTimeout):
			return fmt.Errorf("failed to stop receive loop for %s", c)
		}
	}
	c.log.Debug("Connection to %s closed", c)
	return nil
}

// teardown closes the socket from inside the receive loop, which cannot wait
// on itself.
func (c *connection) teardown() {
	c.mu.Lock()
	c.closeLocked()
	c.mu.Unlock()
	c.log.Debug("Connection to %s lost", c)
}

func (c *connection) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
