package interfaces

import "github.com/ynotnauk/go-irc/message"

type BufferPlayer interface {
	Playback(network message.NetworkID, channel string, limit int) ([]*message.Message, error)
}
