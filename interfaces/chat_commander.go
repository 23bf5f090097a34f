package interfaces

import "github.com/ynotnauk/go-irc/entities"

type ChatCommander interface {
	Execute(context *entities.ChatCommandContext)
}
