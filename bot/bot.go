package bot

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/chat"
	"github.com/ynotnauk/go-irc/entities"
	"github.com/ynotnauk/go-irc/interfaces"
	"github.com/ynotnauk/go-irc/logger"
	"github.com/ynotnauk/go-irc/message"
)

const (
	defaultCommandPrefix string = "!"
	defaultVersion       string = "go-irc"
)

var (
	ErrNilChatClient    error = errors.New("chat client cannot be nil")
	ErrBlankCommandName error = errors.New("commandName cannot be blank")
	ErrNilChatCommander error = errors.New("command cannot be nil")
)

type Options struct {
	CommandPrefix string
	// Version is the CTCP VERSION reply.
	Version  string
	Channels []string
	// Buffer, when set, is played back whenever the bot joins a channel.
	Buffer        interfaces.BufferPlayer
	PlaybackLimit int
}

type Bot struct {
	chat              *chat.Client
	chatCommandPrefix string
	chatCommands      map[string][]interfaces.ChatCommander
	version           string
	channels          []string
	buffer            interfaces.BufferPlayer
	playbackLimit     int
	onPlayback        []func(m *message.Message)
	now               func() time.Time
}

func (b *Bot) Chat() *chat.Client {
	return b.chat
}

func (b *Bot) ChatJoin(channel string) error {
	return b.chat.Join(channel)
}

func (b *Bot) ChatReply(parent message.TextView, response string) error {
	return b.chat.Reply(parent, response)
}

func (b *Bot) ChatSay(target string, text string) error {
	return b.chat.Say(target, text)
}

// OnChatCommand registers command for messages starting with the command
// prefix followed by commandName. Handlers must be registered before the bot
// is started.
func (b *Bot) OnChatCommand(commandName string, command interfaces.ChatCommander) error {
	if commandName == "" {
		return ErrBlankCommandName
	}
	if command == nil {
		return ErrNilChatCommander
	}
	b.chatCommands[commandName] = append(b.chatCommands[commandName], command)
	return nil
}

func (b *Bot) OnChatMessage(handler func(v message.TextView)) {
	b.chat.OnMessage(handler)
}

func (b *Bot) OnChatConnect(handler func(m *message.Message)) {
	b.chat.OnConnect(handler)
}

func (b *Bot) OnChatJoin(handler func(v message.JoinView)) {
	b.chat.OnJoin(handler)
}

// OnPlayback handlers receive buffered messages, oldest first, after the bot
// joins a channel.
func (b *Bot) OnPlayback(handler func(m *message.Message)) {
	b.onPlayback = append(b.onPlayback, handler)
}

func (b *Bot) handleMessage(v message.TextView) {
	text := v.Text()
	// Check to see if a command has been requested
	if !strings.HasPrefix(text, b.chatCommandPrefix) || len(text) <= len(b.chatCommandPrefix) {
		return
	}
	messageParts := strings.Fields(text)
	if len(messageParts) == 0 {
		return
	}
	commandName := strings.TrimPrefix(messageParts[0], b.chatCommandPrefix)
	// Check if handler(s) have been loaded for the command
	handlers := b.chatCommands[commandName]
	if len(handlers) == 0 {
		return
	}
	// Build command context
	commandContext := &entities.ChatCommandContext{
		CommandName: commandName,
		Message:     v,
		Reply:       b.ChatReply,
		Say:         b.ChatSay,
	}
	if len(messageParts) > 1 {
		commandContext.CommandParams = messageParts[1:]
	}
	logger.Log.Info("bot_command",
		zap.String("command", commandName),
		zap.String("nick", v.Nick()),
		zap.String("target", v.Target()),
	)
	// Call each handler
	for _, handler := range handlers {
		handler.Execute(commandContext)
	}
}

// handleCTCP answers VERSION, PING and TIME requests with CTCP notices.
func (b *Bot) handleCTCP(v message.CTCPView) {
	if !strings.EqualFold(v.Command(), "PRIVMSG") || v.Nick() == "" {
		return
	}
	var reply string
	switch strings.ToUpper(v.Name()) {
	case "VERSION":
		reply = "VERSION " + b.version
	case "PING":
		reply = strings.TrimSpace("PING " + v.Args())
	case "TIME":
		reply = "TIME " + b.now().Format(time.RFC1123Z)
	default:
		logger.Log.Debug("bot_ctcp_ignored", zap.String("ctcp", v.Name()), zap.String("nick", v.Nick()))
		return
	}
	if err := b.chat.Send(message.NewCTCP("NOTICE", v.Nick(), reply)); err != nil {
		logger.Log.Warn("bot_ctcp_reply_failed", zap.Error(err))
	}
}

func (b *Bot) handleConnect(*message.Message) {
	for _, channel := range b.channels {
		if err := b.chat.Join(channel); err != nil {
			logger.Log.Warn("bot_join_failed", zap.String("channel", channel), zap.Error(err))
		}
	}
}

func (b *Bot) handleJoin(v message.JoinView) {
	if b.buffer == nil || !strings.EqualFold(v.Nick(), b.chat.Nick()) {
		return
	}
	channel := v.Param(0)
	messages, err := b.buffer.Playback(v.Network(), channel, b.playbackLimit)
	if err != nil {
		logger.Log.Warn("bot_playback_failed", zap.String("channel", channel), zap.Error(err))
		return
	}
	logger.Log.Info("bot_playback", zap.String("channel", channel), zap.Int("messages", len(messages)))
	for _, m := range messages {
		logger.Log.Info("bot_playback_message",
			zap.String("channel", channel),
			zap.Time("at", m.ReceivedAt()),
			zap.String("line", m.Format(message.ExcludeTags)),
		)
		for _, handler := range b.onPlayback {
			handler(m)
		}
	}
}

// Start runs the chat client until ctx is cancelled, reconnecting on drops.
func (b *Bot) Start(ctx context.Context) error {
	logger.Log.Info("bot_starting", zap.String("network", string(b.chat.Network())))
	return b.chat.Start(ctx)
}

// Serve runs the bot over an already established connection.
func (b *Bot) Serve(ctx context.Context, conn io.ReadWriteCloser) error {
	return b.chat.Serve(ctx, conn)
}

func New(client *chat.Client, options Options) (*Bot, error) {
	if client == nil {
		return nil, ErrNilChatClient
	}
	if options.CommandPrefix == "" {
		options.CommandPrefix = defaultCommandPrefix
	}
	if options.Version == "" {
		options.Version = defaultVersion
	}
	// Create bot
	bot := &Bot{
		chat:              client,
		chatCommands:      make(map[string][]interfaces.ChatCommander),
		chatCommandPrefix: options.CommandPrefix,
		version:           options.Version,
		channels:          options.Channels,
		buffer:            options.Buffer,
		playbackLimit:     options.PlaybackLimit,
		now:               time.Now,
	}
	client.OnConnect(bot.handleConnect)
	client.OnMessage(bot.handleMessage)
	client.OnCTCP(bot.handleCTCP)
	client.OnJoin(bot.handleJoin)
	return bot, nil
}
