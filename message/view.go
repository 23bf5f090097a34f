package message

import "strings"

// Kind is the typed interpretation Classify assigns to a message.
type Kind int

const (
	KindGeneric Kind = iota
	KindMessage
	KindNotice
	KindAction
	KindCTCP
	KindJoin
	KindPart
	KindKick
	KindNick
	KindQuit
	KindTopic
)

var kindNames = [...]string{
	KindGeneric: "generic",
	KindMessage: "message",
	KindNotice:  "notice",
	KindAction:  "action",
	KindCTCP:    "ctcp",
	KindJoin:    "join",
	KindPart:    "part",
	KindKick:    "kick",
	KindNick:    "nick",
	KindQuit:    "quit",
	KindTopic:   "topic",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

const (
	ctcpDelimiter = "\x01"
	actionPrefix  = ctcpDelimiter + "ACTION "
)

type classifier func(m *Message) Kind

// dispatch maps upper-cased commands to the classifier deciding their kind.
// Commands missing from the table are KindGeneric.
var dispatch = map[string]classifier{
	"PRIVMSG": classifyText(KindMessage),
	"NOTICE":  classifyText(KindNotice),
	"JOIN":    fixedKind(KindJoin),
	"PART":    fixedKind(KindPart),
	"KICK":    fixedKind(KindKick),
	"NICK":    fixedKind(KindNick),
	"QUIT":    fixedKind(KindQuit),
	"TOPIC":   fixedKind(KindTopic),
}

func fixedKind(kind Kind) classifier {
	return func(*Message) Kind {
		return kind
	}
}

func classifyText(plain Kind) classifier {
	return func(m *Message) Kind {
		text := m.Param(1)
		if !isCTCP(text) {
			return plain
		}
		if strings.HasPrefix(text, actionPrefix) {
			return KindAction
		}
		return KindCTCP
	}
}

func isCTCP(text string) bool {
	return len(text) >= 2 && strings.HasPrefix(text, ctcpDelimiter) && strings.HasSuffix(text, ctcpDelimiter)
}

// View is a message paired with its kind. It holds no copy of the message;
// the As* methods hand out typed views only when the kind matches.
type View struct {
	msg  *Message
	kind Kind
}

// Classify determines the kind of m. It never fails, unknown commands yield
// KindGeneric.
func Classify(m *Message) View {
	kind := KindGeneric
	if c, ok := dispatch[strings.ToUpper(m.command)]; ok {
		kind = c(m)
	}
	return View{msg: m, kind: kind}
}

// View is shorthand for Classify(m).
func (m *Message) View() View {
	return Classify(m)
}

func (v View) Kind() Kind {
	return v.kind
}

func (v View) Message() *Message {
	return v.msg
}

// IsChannel reports whether the first parameter names a channel, which tells
// channel traffic apart from private traffic for the same kind.
func (v View) IsChannel() bool {
	return IsChannelName(v.msg.Param(0))
}

// IsChannelName reports whether name starts with one of the RFC 2812 channel
// prefixes.
func IsChannelName(name string) bool {
	return name != "" && strings.ContainsRune("#&+!", rune(name[0]))
}

func (v View) AsAction() (ActionView, bool) {
	if v.kind != KindAction {
		return ActionView{}, false
	}
	return ActionView{v.msg}, true
}

func (v View) AsCTCP() (CTCPView, bool) {
	if v.kind != KindCTCP {
		return CTCPView{}, false
	}
	return CTCPView{v.msg}, true
}

// AsText accepts both plain PRIVMSG and plain NOTICE messages.
func (v View) AsText() (TextView, bool) {
	if v.kind != KindMessage && v.kind != KindNotice {
		return TextView{}, false
	}
	return TextView{v.msg}, true
}

func (v View) AsJoin() (JoinView, bool) {
	if v.kind != KindJoin {
		return JoinView{}, false
	}
	return JoinView{v.msg}, true
}

func (v View) AsPart() (PartView, bool) {
	if v.kind != KindPart {
		return PartView{}, false
	}
	return PartView{v.msg}, true
}

func (v View) AsKick() (KickView, bool) {
	if v.kind != KindKick {
		return KickView{}, false
	}
	return KickView{v.msg}, true
}

func (v View) AsNick() (NickView, bool) {
	if v.kind != KindNick {
		return NickView{}, false
	}
	return NickView{v.msg}, true
}

func (v View) AsQuit() (QuitView, bool) {
	if v.kind != KindQuit {
		return QuitView{}, false
	}
	return QuitView{v.msg}, true
}

func (v View) AsTopic() (TopicView, bool) {
	if v.kind != KindTopic {
		return TopicView{}, false
	}
	return TopicView{v.msg}, true
}
