// Package message implements a single IRC protocol message: parsing raw
// lines into a structured form, serializing that form back to wire text and
// interpreting it through typed views (action, CTCP, join, kick, ...).
//
// The package performs no I/O and keeps no state between calls. A Message
// has a single owner at a time and must not be mutated concurrently.
package message

import (
	"strings"
	"time"
)

// Message is a parsed or composed IRC line. Views returned by Classify share
// its storage, so writes through a view are visible on the Message.
type Message struct {
	identity   Identity
	command    string
	params     []string
	tags       map[string]string
	receivedAt time.Time
	network    NetworkID
	client     ClientID
	channel    ChannelID
}

// New composes an outbound message. The params and tags are copied.
func New(identity Identity, command string, params []string, tags map[string]string) *Message {
	m := &Message{
		identity:   identity,
		command:    command,
		receivedAt: time.Now(),
	}
	m.SetParams(params)
	m.SetTags(tags)
	return m
}

func (m *Message) Command() string {
	return m.command
}

func (m *Message) SetCommand(command string) {
	m.command = command
}

// Params returns a copy of the parameters.
func (m *Message) Params() []string {
	if len(m.params) == 0 {
		return nil
	}
	return append([]string(nil), m.params...)
}

func (m *Message) SetParams(params []string) {
	if len(params) == 0 {
		m.params = nil
		return
	}
	m.params = append([]string(nil), params...)
}

// Param returns the parameter at index i, or an empty string when there is no
// such parameter.
func (m *Message) Param(i int) string {
	if i < 0 || i >= len(m.params) {
		return ""
	}
	return m.params[i]
}

// SetParam stores v at index i, growing the parameter list with empty
// strings when needed. Negative indexes are ignored.
func (m *Message) SetParam(i int, v string) {
	if i < 0 {
		return
	}
	for len(m.params) <= i {
		m.params = append(m.params, "")
	}
	m.params[i] = v
}

// ParamsFrom joins count parameters starting at start with single spaces. A
// negative count joins everything up to the last parameter.
func (m *Message) ParamsFrom(start, count int) string {
	if start < 0 || start >= len(m.params) || count == 0 {
		return ""
	}
	end := len(m.params)
	if count > 0 && start+count < end {
		end = start + count
	}
	return strings.Join(m.params[start:end], " ")
}

// Tags returns a copy of the tag mapping. It is never nil.
func (m *Message) Tags() map[string]string {
	tags := make(map[string]string, len(m.tags))
	for k, v := range m.tags {
		tags[k] = v
	}
	return tags
}

func (m *Message) SetTags(tags map[string]string) {
	m.tags = make(map[string]string, len(tags))
	for k, v := range tags {
		m.tags[k] = v
	}
}

// Tag returns the value stored under key, or an empty string.
func (m *Message) Tag(key string) string {
	return m.tags[key]
}

func (m *Message) SetTag(key, value string) {
	if m.tags == nil {
		m.tags = make(map[string]string)
	}
	m.tags[key] = value
}

func (m *Message) DeleteTag(key string) {
	delete(m.tags, key)
}

func (m *Message) Identity() Identity {
	return m.identity
}

func (m *Message) SetIdentity(identity Identity) {
	m.identity = identity
}

// Nick is a shortcut for Identity().Nick.
func (m *Message) Nick() string {
	return m.identity.Nick
}

// ReceivedAt is the time the message was parsed or composed.
func (m *Message) ReceivedAt() time.Time {
	return m.receivedAt
}

func (m *Message) SetReceivedAt(t time.Time) {
	m.receivedAt = t
}

func (m *Message) Network() NetworkID {
	return m.network
}

func (m *Message) SetNetwork(id NetworkID) {
	m.network = id
}

func (m *Message) Client() ClientID {
	return m.client
}

func (m *Message) SetClient(id ClientID) {
	m.client = id
}

func (m *Message) Channel() ChannelID {
	return m.channel
}

func (m *Message) SetChannel(id ChannelID) {
	m.channel = id
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	c := *m
	c.SetParams(m.params)
	c.SetTags(m.tags)
	return &c
}
