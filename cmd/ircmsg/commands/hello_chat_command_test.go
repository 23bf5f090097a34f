package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynotnauk/go-irc/entities"
	"github.com/ynotnauk/go-irc/message"
)

func TestHelloChatCommand(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		want   string
	}{
		{name: "greets the sender", want: "Hello, alice!"},
		{name: "greets the first param", params: []string{"bob", "carol"}, want: "Hello, bob!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := message.Parse(":alice!a@h PRIVMSG #go :!hello").View().AsText()
			require.True(t, ok)

			var replies []string
			context := &entities.ChatCommandContext{
				CommandName:   "hello",
				CommandParams: tt.params,
				Message:       text,
				Reply: func(parent message.TextView, response string) error {
					assert.Equal(t, "#go", parent.Target())
					replies = append(replies, response)
					return nil
				},
			}
			(&HelloChatCommand{}).Execute(context)
			assert.Equal(t, []string{tt.want}, replies)
		})
	}
}
