package chat

import (
	"bufio"
	"fmt"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/logger"
	"github.com/ynotnauk/go-irc/message"
)

// startCloser closes the connection once the session ends, which unblocks the
// connection reader.
func (c *Client) startCloser(wg *sync.WaitGroup, s *session) {
	go func() {
		defer wg.Done()
		<-s.ctx.Done()
		if err := s.conn.Close(); err != nil {
			logger.Log.Debug("chat_connection_close_failed", zap.Error(err))
		}
	}()
}

func (c *Client) startConnectionReader(wg *sync.WaitGroup, s *session, incoming chan<- string) {
	logger.Log.Debug("chat_connection_reader_starting")
	go func() {
		defer func() {
			close(incoming)
			s.cancel()
			logger.Log.Debug("chat_connection_reader_closed")
			wg.Done()
		}()
		tp := textproto.NewReader(bufio.NewReader(s.conn))
		for {
			// Check if there is a new line to read
			line, err := tp.ReadLine()
			if err != nil {
				if s.ctx.Err() == nil {
					logger.Log.Info("chat_connection_read_failed", zap.Error(err))
				}
				return
			}
			if line == "" {
				continue
			}
			select {
			case s.keepAliveReset <- struct{}{}:
			default:
			}
			incoming <- line
		}
	}()
}

func (c *Client) startConnectionWriter(wg *sync.WaitGroup, s *session) {
	logger.Log.Debug("chat_connection_writer_starting")
	go func() {
		defer func() {
			logger.Log.Debug("chat_connection_writer_closed")
			wg.Done()
		}()
		for {
			select {
			case <-s.ctx.Done():
				return
			case line := <-s.outgoing:
				// Flood control
				if err := c.limiter.Wait(s.ctx); err != nil {
					return
				}
				if _, err := s.conn.Write([]byte(line)); err != nil {
					logger.Log.Warn("chat_connection_write_failed", zap.Error(err))
					s.fail(ErrDisconnected)
					return
				}
			}
		}
	}()
}

func (c *Client) startKeepAlive(wg *sync.WaitGroup, s *session) {
	logger.Log.Debug("chat_keep_alive_starting")
	go func() {
		defer func() {
			logger.Log.Debug("chat_keep_alive_closed")
			wg.Done()
		}()
		for {
			idleTimer := time.NewTimer(c.options.IdlePingInterval)
			select {
			case <-s.ctx.Done():
				idleTimer.Stop()
				return
			case <-s.keepAliveReset:
				idleTimer.Stop()
				continue
			case <-idleTimer.C:
				// Drop any unsolicited pong so only a reply to this ping counts
				select {
				case <-s.pongReceived:
				default:
				}
				// Ping the server
				token := fmt.Sprintf("%v", time.Now().Unix())
				if err := c.send(message.New(message.Identity{}, "PING", []string{token}, nil)); err != nil {
					return
				}
				pingTimer := time.NewTimer(c.options.PingTimeout)
				// Wait for either the server to respond with a pong or timeout
				select {
				case <-s.ctx.Done():
					pingTimer.Stop()
					return
				case <-s.pongReceived:
					pingTimer.Stop()
					continue
				case <-pingTimer.C:
					logger.Log.Warn("chat_ping_timeout", zap.Duration("timeout", c.options.PingTimeout))
					s.fail(ErrPingTimeout)
					return
				}
			}
		}
	}()
}

// startMessageParser drains every line the reader queued, so handlers see the
// whole stream even when the connection has already dropped.
func (c *Client) startMessageParser(wg *sync.WaitGroup, s *session, incoming <-chan string) {
	logger.Log.Debug("chat_message_parser_starting")
	go func() {
		defer func() {
			logger.Log.Debug("chat_message_parser_closed")
			wg.Done()
		}()
		for line := range incoming {
			c.handleLine(s, line)
		}
	}()
}

func (c *Client) handleLine(s *session, line string) {
	m := message.Parse(line)
	if m.Command() == "" {
		logger.Log.Debug("chat_line_ignored", zap.String("line", line))
		return
	}
	m.SetNetwork(c.network)
	m.SetClient(message.ClientID(fmt.Sprintf("%s/%s", c.network, c.Nick())))

	view := m.View()
	if view.IsChannel() {
		m.SetChannel(message.ChannelID(m.Param(0)))
	}
	c.options.Metrics.Received(view.Kind().String(), len(line))
	logger.Log.Debug("chat_received", zap.String("command", m.Command()), zap.Stringer("kind", view.Kind()))

	dispatch(c, "raw", snapshot(c, &c.onRaw), m)

	switch strings.ToUpper(m.Command()) {
	case "001":
		if nick := m.Param(0); nick != "" {
			c.setNick(nick)
		}
		logger.Log.Info("chat_registered", zap.String("network", string(c.network)), zap.String("nick", c.Nick()))
		dispatch(c, "connect", snapshot(c, &c.onConnect), m)
		return
	case "PING":
		if err := c.send(message.New(message.Identity{}, "PONG", m.Params(), nil)); err != nil {
			logger.Log.Debug("chat_pong_failed", zap.Error(err))
		}
		return
	case "PONG":
		select {
		case s.pongReceived <- struct{}{}:
		default:
		}
		return
	}

	if c.options.Recorder != nil {
		if err := c.options.Recorder.Record(m); err != nil {
			logger.Log.Warn("chat_record_failed", zap.Error(err))
		}
	}

	switch view.Kind() {
	case message.KindMessage:
		v, _ := view.AsText()
		dispatch(c, "message", snapshot(c, &c.onMessage), v)
	case message.KindNotice:
		v, _ := view.AsText()
		dispatch(c, "notice", snapshot(c, &c.onNotice), v)
	case message.KindAction:
		v, _ := view.AsAction()
		dispatch(c, "action", snapshot(c, &c.onAction), v)
	case message.KindCTCP:
		v, _ := view.AsCTCP()
		dispatch(c, "ctcp", snapshot(c, &c.onCTCP), v)
	case message.KindJoin:
		v, _ := view.AsJoin()
		dispatch(c, "join", snapshot(c, &c.onJoin), v)
	case message.KindPart:
		v, _ := view.AsPart()
		dispatch(c, "part", snapshot(c, &c.onPart), v)
	case message.KindKick:
		v, _ := view.AsKick()
		dispatch(c, "kick", snapshot(c, &c.onKick), v)
	case message.KindNick:
		v, _ := view.AsNick()
		if strings.EqualFold(v.OldNick(), c.Nick()) {
			c.setNick(v.NewNick())
		}
		dispatch(c, "nick", snapshot(c, &c.onNick), v)
	case message.KindQuit:
		v, _ := view.AsQuit()
		dispatch(c, "quit", snapshot(c, &c.onQuit), v)
	case message.KindTopic:
		v, _ := view.AsTopic()
		dispatch(c, "topic", snapshot(c, &c.onTopic), v)
	}
}

// snapshot copies a handler list so handlers run without holding the lock.
func snapshot[T any](c *Client, handlers *[]func(T)) []func(T) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(([]func(T))(nil), *handlers...)
}

// dispatch runs every handler with v, recovering handler panics so one bad
// handler cannot stop the parser.
func dispatch[T any](c *Client, event string, handlers []func(T), v T) {
	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.options.Metrics.HandlerPanicked()
					logger.Log.Error("chat_handler_panicked", zap.String("event", event), zap.Any("panic", r))
				}
			}()
			handler(v)
		}()
	}
}
