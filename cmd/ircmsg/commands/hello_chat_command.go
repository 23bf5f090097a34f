package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/entities"
	"github.com/ynotnauk/go-irc/logger"
)

type HelloChatCommand struct{}

func (c *HelloChatCommand) Execute(context *entities.ChatCommandContext) {
	greeting := fmt.Sprintf("Hello, %s!", context.Message.Nick())
	if len(context.CommandParams) > 0 {
		greeting = fmt.Sprintf("Hello, %s!", context.CommandParams[0])
	}
	if err := context.Reply(context.Message, greeting); err != nil {
		logger.Log.Warn("hello_reply_failed", zap.Error(err))
	}
}
