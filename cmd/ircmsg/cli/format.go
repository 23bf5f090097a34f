package cli

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ynotnauk/go-irc/message"
)

var (
	ErrBlankCommand error = errors.New("command cannot be blank")
	ErrInvalidTag   error = errors.New("tag must be key=value")
)

type formatOptions struct {
	nick          string
	user          string
	host          string
	command       string
	params        []string
	tags          []string
	excludePrefix bool
	excludeTags   bool
}

var formatFlags formatOptions

func init() {
	flags := formatCmd.Flags()
	flags.StringVar(&formatFlags.nick, "nick", "", "prefix nick or server name")
	flags.StringVar(&formatFlags.user, "user", "", "prefix user")
	flags.StringVar(&formatFlags.host, "host", "", "prefix host")
	flags.StringVar(&formatFlags.command, "command", "", "command or numeric (required)")
	flags.StringArrayVarP(&formatFlags.params, "param", "p", nil, "parameter, repeat for more")
	flags.StringArrayVarP(&formatFlags.tags, "tag", "t", nil, "tag as key=value or key, repeat for more")
	flags.BoolVar(&formatFlags.excludePrefix, "exclude-prefix", false, "omit the prefix")
	flags.BoolVar(&formatFlags.excludeTags, "exclude-tags", false, "omit the tags")
	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Compose an IRC line from flags",
	Example: `  ircmsg format --nick bot --command PRIVMSG -p '#go' -p 'hello there' -t msgid=1
  @msgid=1 :bot PRIVMSG #go :hello there`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMessage(formatFlags)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.Format(formatFlags.flags()))
		return nil
	},
}

func (o formatOptions) flags() message.FormatFlags {
	flags := message.IncludeAll
	if o.excludePrefix {
		flags |= message.ExcludePrefix
	}
	if o.excludeTags {
		flags |= message.ExcludeTags
	}
	return flags
}

func buildMessage(o formatOptions) (*message.Message, error) {
	if o.command == "" {
		return nil, ErrBlankCommand
	}
	tags := make(map[string]string, len(o.tags))
	for _, tag := range o.tags {
		key, value, _ := strings.Cut(tag, "=")
		if key == "" {
			return nil, errors.Wrap(ErrInvalidTag, tag)
		}
		tags[key] = value
	}
	identity := message.Identity{Nick: o.nick, User: o.user, Host: o.host}
	return message.New(identity, o.command, o.params, tags), nil
}
