// Package mcclient implements the client side of the Minecraft-style framed
// wire protocol: varint-length frames carrying an id varint and a typed
// payload, decoded against the connection's current phase and dispatched to
// handlers that mutate shared game state.
package mcclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gardenstoney/mc-client/event"
	"github.com/gardenstoney/mc-client/game"
	"github.com/gardenstoney/mc-client/packet"
	"github.com/gardenstoney/mc-client/transport"
)

type Config struct {
	// Transport dials the server. Nil means plain TCP.
	Transport transport.Transport
	Logger    *slog.Logger

	MaxPacketLen       int32
	MaxDecompressedLen int32
}

func (cfg Config) withDefaults() Config {
	if cfg.Transport == nil {
		cfg.Transport = transport.NewTCP()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxPacketLen == 0 {
		cfg.MaxPacketLen = 1 << 21
	}
	if cfg.MaxDecompressedLen == 0 {
		cfg.MaxDecompressedLen = 1 << 23
	}
	return cfg
}

// Client owns one connection: the framing transport, the session state its
// packet handlers mutate, and the goroutines moving packets between them.
//
// Receipt is a dedicated read loop that decodes frames and pushes typed
// packets onto an ordered queue; a single dispatch goroutine runs handlers
// exactly once each, in arrival order, so handlers never race one another.
// Sends may come from any goroutine and serialize onto the connection.
type Client struct {
	logger *slog.Logger
	cfg    Config

	host string
	port uint16

	conn      io.ReadWriteCloser
	t         Transport
	session   *game.Session
	decoded   chan packet.Clientbound
	done      chan struct{}
	loops     sync.WaitGroup
	writeMu   sync.Mutex
	closing   atomic.Bool
	closeOnce sync.Once

	// Events to flush after the dispatch queue drains. Written by the read
	// loop before it closes the queue; the channel close orders the
	// dispatcher's read after the write.
	finalEvents []event.Event
}

// Dial connects to addr but does not speak yet: follow with Login or Status.
func Dial(ctx context.Context, addr string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	conn, err := cfg.Transport.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}

	c := &Client{
		logger:  cfg.Logger,
		cfg:     cfg,
		host:    host,
		port:    uint16(port),
		conn:    conn,
		session: game.NewSession(),
		decoded: make(chan packet.Clientbound, 64),
		done:    make(chan struct{}),
	}
	c.t = NewTransport(conn, conn, TransportConfig{
		MaxPacketLen:       cfg.MaxPacketLen,
		MaxDecompressedLen: cfg.MaxDecompressedLen,
	})
	return c, nil
}

func (c *Client) Session() *game.Session { return c.session }

// Events is the stream of notifications for UI and render layers. It closes
// once the connection is down and every queued handler has run.
func (c *Client) Events() <-chan event.Event { return c.session.Events() }

// Login performs the offline-mode login sequence and starts the packet
// loops. Events carry everything that happens from here on.
func (c *Client) Login(username string, playerUUID uuid.UUID) error {
	if err := c.WritePacket(packet.Handshake{
		ProtocolVersion: packet.ProtocolVersion,
		ServerAddr:      c.host,
		ServerPort:      c.port,
		NextState:       2,
	}); err != nil {
		return err
	}
	c.session.SetPhase(game.PhaseLogin)

	start := packet.LoginStart{Name: username}
	if playerUUID != (uuid.UUID{}) {
		start.PlayerUUID = packet.Optional[uuid.UUID]{Exists: true, Item: playerUUID}
	}
	if err := c.WritePacket(start); err != nil {
		return err
	}

	c.start()
	return nil
}

// Status performs a status query and starts the packet loops. The response
// arrives as event.StatusReceived, the ping answer as event.Pong.
func (c *Client) Status() error {
	if err := c.WritePacket(packet.Handshake{
		ProtocolVersion: packet.ProtocolVersion,
		ServerAddr:      c.host,
		ServerPort:      c.port,
		NextState:       1,
	}); err != nil {
		return err
	}
	c.session.SetPhase(game.PhaseStatus)

	if err := c.WritePacket(packet.StatusRequest{}); err != nil {
		return err
	}
	if err := c.WritePacket(packet.PingRequest{Timestamp: time.Now().UnixMilli()}); err != nil {
		return err
	}

	c.start()
	return nil
}

func (c *Client) start() {
	c.loops.Add(3)
	go c.readLoop()
	go c.dispatchLoop()
	go c.replyLoop()
}

// Close tears the connection down: the read loop unblocks, queued handlers
// finish, the event stream closes. Safe to call more than once.
func (c *Client) Close() error {
	c.closing.Store(true)
	var err error
	c.closeOnce.Do(func() {
		c.session.SetPhase(game.PhaseClosed)
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// WritePacket serializes a serverbound packet onto the connection. Safe from
// any goroutine.
func (c *Client) WritePacket(p packet.Serverbound) error {
	frame, err := packet.Marshal(p)
	if err != nil {
		return err
	}
	return c.writeFrame(frame)
}

func (c *Client) writeFrame(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.t.Send(frame)
}

// readLoop receives frames, decodes them against the current phase and
// queues the typed packets for dispatch. It owns the decoded channel: every
// exit path closes it, which is what lets the dispatcher finish.
func (c *Client) readLoop() {
	defer c.loops.Done()
	defer close(c.decoded)

	for {
		if c.session.Phase() == game.PhaseClosed {
			// A disconnect packet drove the phase here; finish the teardown
			// ourselves so Wait does not depend on the caller closing.
			_ = c.Close()
			return
		}

		pr, err := c.t.Recv()
		if err != nil {
			c.readFailed(fmt.Errorf("recv frame: %w", err))
			return
		}

		id, err := packet.ReadVarInt(byteReaderOf(pr))
		if err != nil {
			c.readFailed(fmt.Errorf("read packet id: %w", err))
			return
		}

		if _, err := packet.Lookup(c.session.Phase(), id); err != nil {
			if errors.Is(err, packet.ErrUnknownPacket) {
				n, derr := pr.Discard()
				if derr != nil {
					c.readFailed(fmt.Errorf("skip unknown packet: %w", derr))
					return
				}
				c.logger.Warn("skipping unknown packet",
					"id", fmt.Sprintf("0x%02X", id),
					"phase", c.session.Phase().String(),
					"bytes", n)
				continue
			}
			c.readFailed(err)
			return
		}

		payload, err := io.ReadAll(pr)
		if err != nil {
			c.readFailed(fmt.Errorf("read payload: %w", err))
			return
		}
		if err := pr.Close(); err != nil {
			c.readFailed(fmt.Errorf("close payload: %w", err))
			return
		}

		pk, err := packet.Decode(c.session.Phase(), id, payload)
		if err != nil {
			c.readFailed(err)
			return
		}

		// Threshold and phase updates must land before the next frame is
		// read: they change how that frame is interpreted.
		if cu, ok := pk.(packet.CompressionUpdater); ok {
			c.writeMu.Lock()
			c.t.CompressionThreshold = int(cu.Threshold())
			c.writeMu.Unlock()
		}
		if pc, ok := pk.(packet.PhaseChanger); ok {
			c.session.SetPhase(pc.NextPhase())
		}

		select {
		case c.decoded <- pk:
		case <-c.done:
			return
		}
	}
}

// readFailed records why reading stopped. A local Close surfaces as a plain
// disconnect; everything else is a protocol failure that the event stream
// reports before the connection is declared down.
func (c *Client) readFailed(err error) {
	if c.closing.Load() {
		c.finalEvents = []event.Event{event.Disconnected{Reason: "connection closed"}}
		return
	}
	if errors.Is(err, io.EOF) {
		c.finalEvents = []event.Event{event.Disconnected{Reason: "server closed the connection"}}
	} else {
		c.finalEvents = []event.Event{
			event.DecodeFailed{Err: err},
			event.Disconnected{Reason: err.Error()},
		}
	}
	c.logger.Error("connection failed", "err", err)
	_ = c.Close()
}

// dispatchLoop runs handlers one at a time in arrival order. A handler error
// is fatal: the connection is torn down and queued packets are dropped.
func (c *Client) dispatchLoop() {
	defer c.loops.Done()
	defer c.session.CloseEvents()
	defer c.reportDropped()

	for pk := range c.decoded {
		if err := pk.Handle(c.session); err != nil {
			c.logger.Error("packet handler failed",
				"packet", fmt.Sprintf("%T", pk), "err", err)
			c.session.Emit(event.Disconnected{
				Reason: fmt.Sprintf("handler failure: %v", err),
			})
			_ = c.Close()
			for range c.decoded {
				// Drop the rest; the connection is gone.
			}
			return
		}
	}

	for _, ev := range c.finalEvents {
		c.session.Emit(ev)
	}
}

// reportDropped logs what the server still had live on this client once no
// further handler can run. Runs on the dispatch goroutine, so it never races
// a handler's world writes.
func (c *Client) reportDropped() {
	players := c.session.World.Tracker().Players()
	entities := c.session.World.Tracker().Clear()
	if len(entities) == 0 && len(players) == 0 {
		return
	}
	c.logger.Info("connection down with state still tracked",
		"entities", entities, "players", len(players))
}

// replyLoop moves handler replies (KeepAlive echoes, teleport confirms) onto
// the wire, keeping network I/O out of the handlers themselves.
func (c *Client) replyLoop() {
	defer c.loops.Done()

	for {
		select {
		case frame := <-c.session.Replies():
			if err := c.writeFrame(frame); err != nil {
				c.logger.Error("send reply", "err", err)
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Wait blocks until all connection goroutines have stopped.
func (c *Client) Wait() {
	c.loops.Wait()
}

type byteReaderAdapter struct {
	r io.Reader
}

func (b byteReaderAdapter) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b.r, buf[:])
	return buf[0], err
}

func byteReaderOf(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return byteReaderAdapter{r}
}
