package channel

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Rahib777-7/ore-ui/pkg/facet"
	"github.com/Rahib777-7/ore-ui/pkg/metrics"
	"github.com/Rahib777-7/ore-ui/pkg/protocol"
)

// Config configures a Channel.
type Config struct {
	// ReadTimeout is the per-message read deadline. A backend that stays
	// silent longer than this is considered gone.
	ReadTimeout time.Duration

	// WriteTimeout bounds pong writes.
	WriteTimeout time.Duration

	// MaxMessageSize caps incoming WebSocket messages in bytes.
	MaxMessageSize int64

	// Logger receives connection and ingestion diagnostics.
	// Default: slog.Default().
	Logger *slog.Logger

	// Metrics, when set, counts frames, writes, and connected backends.
	Metrics *metrics.Metrics

	// CheckOrigin overrides the upgrader's origin policy. The default
	// accepts any origin; engine backends connect from non-browser hosts.
	CheckOrigin func(*http.Request) bool
}

// DefaultConfig returns the default channel configuration.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: protocol.MaxFrameSize,
	}
}

// Channel is an http.Handler that upgrades backend connections and runs
// their ingestion loop.
type Channel struct {
	registry *facet.Registry
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a channel feeding reg.
func New(reg *facet.Registry, config Config) *Channel {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Channel{
		registry: reg,
		config:   config,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP upgrades the connection and blocks in the read loop until the
// backend disconnects.
func (c *Channel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Error("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	c.logger.Info("backend connected", "remote", conn.RemoteAddr().String())
	c.config.Metrics.BackendConnected(1)
	defer c.config.Metrics.BackendConnected(-1)

	c.readLoop(conn)
	c.logger.Info("backend disconnected", "remote", conn.RemoteAddr().String())
}

// readLoop reads, decodes, and applies frames until the connection drops.
func (c *Channel) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(c.config.MaxMessageSize)

	for {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Error("frame decode error", "error", err)
			c.config.Metrics.RecordFrameError()
			continue
		}
		c.config.Metrics.RecordFrame(string(frame.Type))

		switch frame.Type {
		case protocol.FrameWrite, protocol.FrameBatch:
			c.applyWrites(frame)

		case protocol.FramePing:
			c.sendPong(conn, frame)

		case protocol.FramePong:
			c.logger.Debug("received pong", "seq", frame.Seq)
		}
	}
}

// applyWrites applies a frame's writes to the registry in order.
// Each write runs to completion, including the synchronous notification
// cascade, before the next is applied.
func (c *Channel) applyWrites(frame *protocol.Frame) {
	for _, w := range frame.Writes {
		start := time.Now()
		applied := c.registry.Write(w.ID, w.Value)
		c.config.Metrics.RecordWriteDuration(time.Since(start).Seconds())
		c.config.Metrics.RecordWrite(applied)
	}
}

// sendPong answers a ping, echoing its sequence and timestamp.
func (c *Channel) sendPong(conn *websocket.Conn, ping *protocol.Frame) {
	data, err := protocol.EncodeFrame(protocol.NewPong(ping))
	if err != nil {
		c.logger.Error("pong encode error", "error", err)
		return
	}

	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Error("pong write error", "error", err)
	}
}
