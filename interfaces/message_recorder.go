package interfaces

import "github.com/ynotnauk/go-irc/message"

// MessageRecorder persists inbound messages. Implementations decide which
// messages are worth keeping and ignore the rest.
type MessageRecorder interface {
	Record(m *message.Message) error
}
