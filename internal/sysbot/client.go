package sysbot

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/session"
)

// Client talks to a console running sys-botbase over its line based TCP
// protocol. Requests are strictly sequential.
type Client struct {
	log logrus.FieldLogger
	cfg Config

	mu   sync.Mutex
	conn net.Conn
	rd   *bufio.Reader
}

// Compile-time interface compliance check.
var _ session.Session = (*Client)(nil)

// New creates a disconnected client. cfg must have been validated.
func New(log logrus.FieldLogger, cfg Config) *Client {
	return &Client{
		log: log.WithFields(logrus.Fields{
			"component": "sysbot",
			"address":   cfg.Address,
		}),
		cfg: cfg,
	}
}

// Connect implements session.Session. Connecting twice is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Address)
	if err != nil {
		return session.Wrap("connect", err)
	}

	c.conn = conn
	c.rd = bufio.NewReader(conn)

	c.log.Info("Connected to console")

	return nil
}

// Disconnect implements session.Session. The virtual controller is detached
// so the console accepts physical input again.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	if err := c.sendLocked(ctx, "detachController"); err != nil {
		c.log.WithError(err).Debug("Failed to detach controller")
	}

	err := c.conn.Close()
	c.conn = nil
	c.rd = nil

	c.log.Info("Disconnected from console")

	if err != nil {
		return fmt.Errorf("close connection: %w", err)
	}

	return nil
}

// Connected implements session.Session.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

// send issues a command that has no reply.
func (c *Client) send(ctx context.Context, command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sendLocked(ctx, command)
}

// query issues a command and returns its reply line.
func (c *Client) query(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendLocked(ctx, command); err != nil {
		return "", err
	}

	line, err := c.rd.ReadString('\n')
	if err != nil {
		c.dropLocked()

		return "", c.ioError(ctx, err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) sendLocked(ctx context.Context, command string) error {
	if c.conn == nil {
		return session.ErrNotConnected
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(c.cfg.CommandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	// Cancellation only interrupts the write. Once the command is out, query
	// reads the reply until the deadline set above, so a stop never strands a
	// reply in the stream for the next command to pick up.
	conn := c.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c.log.WithField("command", command).Trace("Sending command")

	if _, err := conn.Write([]byte(command + "\r\n")); err != nil {
		c.dropLocked()

		return c.ioError(ctx, err)
	}

	return nil
}

// ioError prefers the context error so cancellation is not mistaken for a
// broken link.
func (c *Client) ioError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return err
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}

	c.conn = nil
	c.rd = nil
}

// ReadAbsolute implements session.Session.
func (c *Client) ReadAbsolute(ctx context.Context, address uint64, length int) ([]byte, error) {
	out := make([]byte, 0, length)

	for offset := 0; offset < length; offset += c.cfg.MaxReadSize {
		size := min(c.cfg.MaxReadSize, length-offset)

		line, err := c.query(ctx, fmt.Sprintf("peekAbsolute 0x%X %d", address+uint64(offset), size))
		if err != nil {
			return nil, session.Wrap("peekAbsolute", err)
		}

		chunk, err := hex.DecodeString(line)
		if err != nil {
			return nil, session.Wrap("peekAbsolute", fmt.Errorf("malformed reply: %w", err))
		}

		if len(chunk) != size {
			return nil, session.Wrap("peekAbsolute", fmt.Errorf("short reply: %d of %d bytes", len(chunk), size))
		}

		out = append(out, chunk...)
	}

	return out, nil
}

// ResolvePointer implements session.Session. The first offset is relative to
// the main executable, the last is added to the final dereference.
func (c *Client) ResolvePointer(ctx context.Context, offsets []int64) (uint64, error) {
	if len(offsets) == 0 {
		return 0, fmt.Errorf("empty pointer chain")
	}

	args := make([]string, len(offsets))
	for i, off := range offsets {
		if off < 0 {
			args[i] = fmt.Sprintf("-0x%X", -off)
		} else {
			args[i] = fmt.Sprintf("0x%X", off)
		}
	}

	line, err := c.query(ctx, "pointerAll "+strings.Join(args, " "))
	if err != nil {
		return 0, session.Wrap("pointerAll", err)
	}

	addr, err := parseHex(line)
	if err != nil {
		return 0, session.Wrap("pointerAll", err)
	}

	return addr, nil
}

// TitleID implements session.Session.
func (c *Client) TitleID(ctx context.Context) (string, error) {
	line, err := c.query(ctx, "getTitleID")
	if err != nil {
		return "", session.Wrap("getTitleID", err)
	}

	return strings.ToUpper(strings.TrimSpace(line)), nil
}

// CurrentTime implements session.Session.
func (c *Client) CurrentTime(ctx context.Context) (time.Time, error) {
	line, err := c.query(ctx, "getUnixTime")
	if err != nil {
		return time.Time{}, session.Wrap("getUnixTime", err)
	}

	secs, err := parseHex(line)
	if err != nil {
		return time.Time{}, session.Wrap("getUnixTime", err)
	}

	return time.Unix(int64(secs), 0).UTC(), nil
}

// Screenshot implements session.Session. The console returns a JPEG.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	line, err := c.query(ctx, "pixelPeek")
	if err != nil {
		return nil, session.Wrap("pixelPeek", err)
	}

	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, session.Wrap("pixelPeek", fmt.Errorf("malformed reply: %w", err))
	}

	return data, nil
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed reply %q: %w", s, err)
	}

	return v, nil
}
