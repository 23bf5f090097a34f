package chat

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ynotnauk/go-irc/interfaces"
	"github.com/ynotnauk/go-irc/logger"
	"github.com/ynotnauk/go-irc/message"
	"github.com/ynotnauk/go-irc/metrics"
	"github.com/ynotnauk/go-irc/wsconn"
)

const (
	defaultIdlePingInterval time.Duration = time.Second * 15
	defaultPingTimeout      time.Duration = time.Second * 5
	defaultReconnectDelay   time.Duration = time.Second * 5
	outgoingBuffer          int           = 64
)

var (
	ErrBlankAddress     error = errors.New("address cannot be blank")
	ErrBlankChannel     error = errors.New("channel cannot be blank")
	ErrBlankTarget      error = errors.New("target cannot be blank")
	ErrBlankCommand     error = errors.New("command cannot be blank")
	ErrNilAuthProvider  error = errors.New("authProvider cannot be nil")
	ErrNotConnected     error = errors.New("not connected")
	ErrAlreadyConnected error = errors.New("already connected")
	ErrDisconnected     error = errors.New("disconnected from server")
	ErrPingTimeout      error = errors.New("server did not answer ping")
	ErrInvalidLine      error = errors.New("line cannot contain CR, LF or NUL")
)

type Options struct {
	// Network names the connection; it is stamped on every inbound message.
	Network string
	// Address is host:port, or a ws:// or wss:// URL.
	Address          string
	TLS              bool
	SendRate         float64
	SendBurst        int
	IdlePingInterval time.Duration
	PingTimeout      time.Duration
	ReconnectDelay   time.Duration
	Metrics          *metrics.Metrics
	Recorder         interfaces.MessageRecorder
}

type session struct {
	ctx            context.Context
	cancel         context.CancelFunc
	conn           io.ReadWriteCloser
	outgoing       chan string
	keepAliveReset chan struct{}
	pongReceived   chan struct{}

	errMu sync.Mutex
	err   error
}

// fail records the first error that ends the session and tears it down.
func (s *session) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
	s.cancel()
}

func (s *session) cause() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

type Client struct {
	authProvider interfaces.AuthProvider
	options      Options
	network      message.NetworkID
	limiter      *rate.Limiter

	mu      sync.RWMutex
	session *session
	nick    string

	onConnect []func(m *message.Message)
	onMessage []func(v message.TextView)
	onNotice  []func(v message.TextView)
	onAction  []func(v message.ActionView)
	onCTCP    []func(v message.CTCPView)
	onJoin    []func(v message.JoinView)
	onPart    []func(v message.PartView)
	onKick    []func(v message.KickView)
	onNick    []func(v message.NickView)
	onQuit    []func(v message.QuitView)
	onTopic   []func(v message.TopicView)
	onRaw     []func(m *message.Message)
}

// Start connects and reconnects until ctx is cancelled or registration fails.
func (c *Client) Start(ctx context.Context) error {
	logger.Log.Info("chat_client_starting", zap.String("network", string(c.network)))
	for {
		err := c.Connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, ErrDisconnected) && !errors.Is(err, ErrPingTimeout) && !isDialError(err) {
			return err
		}
		logger.Log.Warn("chat_reconnecting", zap.Duration("delay", c.options.ReconnectDelay), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.options.ReconnectDelay):
		}
	}
}

type dialError struct{ error }

func isDialError(err error) bool {
	var d dialError
	return errors.As(err, &d)
}

// Connect dials the configured server and serves the connection until it
// drops or ctx is cancelled.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return dialError{err}
	}
	c.options.Metrics.Connected()
	return c.Serve(ctx, conn)
}

func (c *Client) dial(ctx context.Context) (io.ReadWriteCloser, error) {
	address := c.options.Address
	logger.Log.Info("chat_connecting", zap.String("address", address))

	if strings.HasPrefix(address, "ws://") || strings.HasPrefix(address, "wss://") {
		conn, err := wsconn.Dial(address)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	// Create a dialer
	netDialer := &net.Dialer{
		KeepAlive: time.Second * 10,
	}
	if !c.options.TLS {
		conn, err := netDialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to dial %s", address)
		}
		return conn, nil
	}

	// tls configuration
	tlsDialer := &tls.Dialer{
		NetDialer: netDialer,
		Config: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	conn, err := tlsDialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", address)
	}
	return conn, nil
}

// Serve registers with the server over conn and runs the read, write, parse
// and keep-alive loops until the connection drops or ctx is cancelled. conn is
// closed on return.
func (c *Client) Serve(ctx context.Context, conn io.ReadWriteCloser) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	s := &session{
		ctx:            sessionCtx,
		cancel:         cancel,
		conn:           conn,
		outgoing:       make(chan string, outgoingBuffer),
		keepAliveReset: make(chan struct{}, 1),
		pongReceived:   make(chan struct{}, 1),
	}

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		cancel()
		_ = conn.Close()
		return ErrAlreadyConnected
	}
	c.session = s
	c.mu.Unlock()

	incoming := make(chan string, outgoingBuffer)

	// Start all required go routines
	wg := &sync.WaitGroup{}
	wg.Add(5)
	c.startCloser(wg, s)
	c.startMessageParser(wg, s, incoming)
	c.startConnectionReader(wg, s, incoming)
	c.startConnectionWriter(wg, s)
	c.startKeepAlive(wg, s)

	if err := c.register(); err != nil {
		s.fail(err)
	}

	// Wait for all go routines to close
	wg.Wait()

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	logger.Log.Info("chat_disconnected", zap.String("network", string(c.network)))

	if err := s.cause(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrDisconnected
}

func (c *Client) register() error {
	// Get login details from auth provider
	login, err := c.authProvider.GetLogin()
	if err != nil {
		return errors.Wrap(err, "failed to get login")
	}
	user := login.User
	if user == "" {
		user = login.Nick
	}
	realName := login.RealName
	if realName == "" {
		realName = login.Nick
	}

	c.setNick(login.Nick)

	// Setup the connection
	if err := c.send(message.New(message.Identity{}, "CAP", []string{"REQ", "message-tags server-time"}, nil)); err != nil {
		return err
	}
	if login.Password != "" {
		if err := c.send(message.New(message.Identity{}, "PASS", []string{login.Password}, nil)); err != nil {
			return err
		}
	}
	if err := c.send(message.New(message.Identity{}, "NICK", []string{login.Nick}, nil)); err != nil {
		return err
	}
	if err := c.send(message.New(message.Identity{}, "USER", []string{user, "0", "*", realName}, nil)); err != nil {
		return err
	}
	return c.send(message.New(message.Identity{}, "CAP", []string{"END"}, nil))
}

// Nick returns the nick the client is currently registered with.
func (c *Client) Nick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nick
}

func (c *Client) setNick(nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nick = nick
}

func (c *Client) Network() message.NetworkID {
	return c.network
}

// Connected reports whether a connection is being served.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

func (c *Client) send(m *message.Message) error {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()
	if s == nil {
		return ErrNotConnected
	}
	line := m.Format(message.ExcludePrefix)
	if strings.ContainsAny(line, "\r\n\x00") {
		return ErrInvalidLine
	}
	select {
	case <-s.ctx.Done():
		return ErrNotConnected
	case s.outgoing <- line + "\r\n":
	}
	c.options.Metrics.Sent(strings.ToUpper(m.Command()))
	logger.Log.Debug("chat_sent", zap.String("command", m.Command()))
	return nil
}

// Send queues m for the server. The prefix is never sent.
func (c *Client) Send(m *message.Message) error {
	if m == nil || m.Command() == "" {
		return ErrBlankCommand
	}
	return c.send(m)
}

func normaliseChannel(channel string) string {
	// If channel does not start with a channel prefix add #
	if !message.IsChannelName(channel) {
		channel = fmt.Sprintf("#%s", channel)
	}
	return channel
}

func (c *Client) Join(channel string) error {
	if channel == "" {
		return ErrBlankChannel
	}
	return c.send(message.New(message.Identity{}, "JOIN", []string{normaliseChannel(channel)}, nil))
}

func (c *Client) Part(channel string, reason string) error {
	if channel == "" {
		return ErrBlankChannel
	}
	params := []string{normaliseChannel(channel)}
	if reason != "" {
		params = append(params, reason)
	}
	return c.send(message.New(message.Identity{}, "PART", params, nil))
}

func (c *Client) Quit(reason string) error {
	var params []string
	if reason != "" {
		params = []string{reason}
	}
	return c.send(message.New(message.Identity{}, "QUIT", params, nil))
}

func (c *Client) Say(target string, text string) error {
	if target == "" {
		return ErrBlankTarget
	}
	return c.send(message.NewPrivmsg(target, text))
}

func (c *Client) Notice(target string, text string) error {
	if target == "" {
		return ErrBlankTarget
	}
	return c.send(message.NewNotice(target, text))
}

func (c *Client) Action(target string, text string) error {
	if target == "" {
		return ErrBlankTarget
	}
	return c.send(message.NewAction(target, text))
}

// Reply answers parent in the channel it was sent to, or privately when it
// was sent to the client directly. The parent's msgid is referenced through
// the +reply client tag.
func (c *Client) Reply(parent message.TextView, text string) error {
	target := parent.Target()
	if !message.IsChannelName(target) {
		target = parent.Nick()
	}
	if target == "" {
		return ErrBlankTarget
	}
	reply := message.NewPrivmsg(target, text)
	if id := parent.Tag("msgid"); id != "" {
		reply.SetTag("+reply", id)
	}
	return c.send(reply)
}

func (c *Client) OnConnect(handler func(m *message.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, handler)
}

func (c *Client) OnMessage(handler func(v message.TextView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = append(c.onMessage, handler)
}

func (c *Client) OnNotice(handler func(v message.TextView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNotice = append(c.onNotice, handler)
}

func (c *Client) OnAction(handler func(v message.ActionView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAction = append(c.onAction, handler)
}

func (c *Client) OnCTCP(handler func(v message.CTCPView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCTCP = append(c.onCTCP, handler)
}

func (c *Client) OnJoin(handler func(v message.JoinView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onJoin = append(c.onJoin, handler)
}

func (c *Client) OnPart(handler func(v message.PartView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPart = append(c.onPart, handler)
}

func (c *Client) OnKick(handler func(v message.KickView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onKick = append(c.onKick, handler)
}

func (c *Client) OnNick(handler func(v message.NickView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNick = append(c.onNick, handler)
}

func (c *Client) OnQuit(handler func(v message.QuitView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onQuit = append(c.onQuit, handler)
}

func (c *Client) OnTopic(handler func(v message.TopicView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTopic = append(c.onTopic, handler)
}

// OnRaw handlers see every inbound message before the typed handlers.
func (c *Client) OnRaw(handler func(m *message.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRaw = append(c.onRaw, handler)
}

func NewClient(authProvider interfaces.AuthProvider, options Options) (*Client, error) {
	if authProvider == nil {
		return nil, ErrNilAuthProvider
	}
	if options.Address == "" {
		return nil, ErrBlankAddress
	}
	if options.Network == "" {
		options.Network = options.Address
	}
	if options.IdlePingInterval <= 0 {
		options.IdlePingInterval = defaultIdlePingInterval
	}
	if options.PingTimeout <= 0 {
		options.PingTimeout = defaultPingTimeout
	}
	if options.ReconnectDelay <= 0 {
		options.ReconnectDelay = defaultReconnectDelay
	}
	limit := rate.Inf
	if options.SendRate > 0 {
		limit = rate.Limit(options.SendRate)
	}
	burst := options.SendBurst
	if burst < 1 {
		burst = 1
	}
	client := &Client{
		authProvider: authProvider,
		options:      options,
		network:      message.NetworkID(options.Network),
		limiter:      rate.NewLimiter(limit, burst),
	}
	return client, nil
}
