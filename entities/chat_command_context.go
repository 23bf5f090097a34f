package entities

import "github.com/ynotnauk/go-irc/message"

type ChatCommandContext struct {
	CommandName   string
	CommandParams []string
	Message       message.TextView
	Reply         func(parent message.TextView, text string) error
	Say           func(target string, text string) error
}
