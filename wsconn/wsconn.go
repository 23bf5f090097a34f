// Package wsconn carries IRC over WebSocket: every text frame holds exactly
// one line without its terminator. A Conn behaves like a plain line stream so
// the chat client can treat it like a TCP connection.
package wsconn

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/lxzan/gws"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/logger"
)

// Subprotocol is the IRCv3 WebSocket subprotocol for UTF-8 text frames.
const Subprotocol = "text.ircv3.net"

var ErrClosed error = errors.New("websocket connection closed")

type frameWriter interface {
	WriteMessage(opcode gws.Opcode, payload []byte) error
}

type Conn struct {
	socket frameWriter
	close  func() error

	reader *io.PipeReader
	writer *io.PipeWriter

	mu      sync.Mutex
	pending []byte
	closed  bool
}

func newConn(socket frameWriter, close func() error) *Conn {
	reader, writer := io.Pipe()
	return &Conn{
		socket: socket,
		close:  close,
		reader: reader,
		writer: writer,
	}
}

// Dial opens a WebSocket connection to addr (ws:// or wss://) and starts
// reading frames in the background.
func Dial(addr string) (*Conn, error) {
	handler := &eventHandler{}
	header := http.Header{}
	header.Set("Sec-WebSocket-Protocol", Subprotocol)
	socket, _, err := gws.NewClient(handler, &gws.ClientOption{
		Addr:          addr,
		RequestHeader: header,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", addr)
	}
	conn := newConn(socket, func() error {
		// WriteClose also closes the underlying connection, ending ReadLoop.
		socket.WriteClose(1000, nil)
		return nil
	})
	handler.conn = conn
	go socket.ReadLoop()
	logger.Log.Info("websocket_connected", zap.String("addr", addr))
	return conn, nil
}

// Read returns inbound lines, each terminated by CRLF.
func (c *Conn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

// Write sends every complete line in p as its own text frame. A trailing
// partial line is held until its terminator arrives.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	c.pending = append(c.pending, p...)
	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(c.pending[:i], "\r")
		if len(line) > 0 {
			if err := c.socket.WriteMessage(gws.OpcodeText, append([]byte(nil), line...)); err != nil {
				return 0, errors.Wrap(err, "failed to write frame")
			}
		}
		c.pending = c.pending[i+1:]
	}
	return len(p), nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	_ = c.reader.Close()
	return c.close()
}

// deliver hands one inbound frame to readers. It blocks until the frame has
// been read.
func (c *Conn) deliver(frame []byte) {
	frame = bytes.TrimRight(frame, "\r\n")
	line := make([]byte, 0, len(frame)+2)
	line = append(append(line, frame...), '\r', '\n')
	if _, err := c.writer.Write(line); err != nil {
		logger.Log.Debug("websocket_frame_dropped", zap.Error(err))
	}
}

// terminate makes pending and future reads return io.EOF.
func (c *Conn) terminate() {
	_ = c.writer.CloseWithError(io.EOF)
}

type eventHandler struct {
	conn *Conn
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	logger.Log.Info("websocket_closed", zap.Error(err))
	if h.conn != nil {
		h.conn.terminate()
	}
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.WritePong(payload)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	if h.conn == nil {
		return
	}
	h.conn.deliver(message.Bytes())
}
