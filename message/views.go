package message

import "strings"

// ActionView reads and writes the text of a CTCP ACTION ("/me") message.
type ActionView struct{ *Message }

func (v ActionView) Text() string {
	return strings.TrimSuffix(strings.TrimPrefix(v.Param(1), actionPrefix), ctcpDelimiter)
}

func (v ActionView) SetText(text string) {
	v.SetParam(1, actionPrefix+text+ctcpDelimiter)
}

// CTCPView reads and writes a CTCP request or reply other than ACTION.
type CTCPView struct{ *Message }

func (v CTCPView) Text() string {
	return strings.TrimSuffix(strings.TrimPrefix(v.Param(1), ctcpDelimiter), ctcpDelimiter)
}

func (v CTCPView) SetText(text string) {
	v.SetParam(1, ctcpDelimiter+text+ctcpDelimiter)
}

// Name is the CTCP command, the first word of the text (VERSION, PING, ...).
func (v CTCPView) Name() string {
	name, _, _ := strings.Cut(v.Text(), " ")
	return name
}

// Args is the text after the CTCP command.
func (v CTCPView) Args() string {
	_, args, _ := strings.Cut(v.Text(), " ")
	return args
}

// TextView covers plain PRIVMSG and NOTICE messages.
type TextView struct{ *Message }

func (v TextView) Target() string {
	return v.Param(0)
}

func (v TextView) SetTarget(target string) {
	v.SetParam(0, target)
}

func (v TextView) Text() string {
	return v.Param(1)
}

func (v TextView) SetText(text string) {
	v.SetParam(1, text)
}

// JoinView has no accessors beyond the message itself.
type JoinView struct{ *Message }

type NickView struct{ *Message }

// OldNick is the nick the change originates from.
func (v NickView) OldNick() string {
	return v.Nick()
}

func (v NickView) NewNick() string {
	return v.Param(0)
}

func (v NickView) SetNewNick(nick string) {
	v.SetParam(0, nick)
}

type KickView struct{ *Message }

func (v KickView) KickedNick() string {
	return v.Param(1)
}

func (v KickView) SetKickedNick(nick string) {
	v.SetParam(1, nick)
}

func (v KickView) Reason() string {
	return v.Param(2)
}

func (v KickView) SetReason(reason string) {
	v.SetParam(2, reason)
}

type PartView struct{ *Message }

func (v PartView) Reason() string {
	return v.Param(1)
}

func (v PartView) SetReason(reason string) {
	v.SetParam(1, reason)
}

type QuitView struct{ *Message }

func (v QuitView) Reason() string {
	return v.Param(0)
}

func (v QuitView) SetReason(reason string) {
	v.SetParam(0, reason)
}

type TopicView struct{ *Message }

func (v TopicView) Topic() string {
	return v.Param(1)
}

func (v TopicView) SetTopic(topic string) {
	v.SetParam(1, topic)
}

// NewPrivmsg composes a PRIVMSG to target.
func NewPrivmsg(target, text string) *Message {
	return New(Identity{}, "PRIVMSG", []string{target, text}, nil)
}

// NewNotice composes a NOTICE to target.
func NewNotice(target, text string) *Message {
	return New(Identity{}, "NOTICE", []string{target, text}, nil)
}

// NewAction composes a CTCP ACTION sent as a PRIVMSG.
func NewAction(target, text string) *Message {
	m := NewPrivmsg(target, "")
	ActionView{m}.SetText(text)
	return m
}

// NewCTCP composes a CTCP message. Requests are sent with PRIVMSG and replies
// with NOTICE.
func NewCTCP(command, target, text string) *Message {
	m := New(Identity{}, command, []string{target, ""}, nil)
	CTCPView{m}.SetText(text)
	return m
}
