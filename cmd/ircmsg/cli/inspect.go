package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/ynotnauk/go-irc/message"
)

var ErrUnknownOutput error = errors.New("output must be text, json or yaml")

type inspectOptions struct {
	output string
	sel    string
}

var inspectFlags inspectOptions

func init() {
	inspectCmd.Flags().StringVarP(&inspectFlags.output, "output", "o", "text", "output format: text, json or yaml")
	inspectCmd.Flags().StringVarP(&inspectFlags.sel, "select", "s", "", "print one field of the JSON rendering (gjson path, e.g. tags.msgid)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Parse IRC lines and show their parts",
	Long: `Reads one IRC line per input line from file, or stdin when no file is
given, and prints the kind, prefix, command, parameters and tags of each.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			file, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to open input")
			}
			defer file.Close()
			in = file
		}
		return runInspect(in, cmd.OutOrStdout(), inspectFlags)
	},
}

type inspectedLine struct {
	Line    string            `json:"line" yaml:"line"`
	Kind    string            `json:"kind" yaml:"kind"`
	Nick    string            `json:"nick,omitempty" yaml:"nick,omitempty"`
	User    string            `json:"user,omitempty" yaml:"user,omitempty"`
	Host    string            `json:"host,omitempty" yaml:"host,omitempty"`
	Command string            `json:"command" yaml:"command"`
	Params  []string          `json:"params" yaml:"params"`
	Tags    map[string]string `json:"tags" yaml:"tags"`
	Channel bool              `json:"channel" yaml:"channel"`
	Text    string            `json:"text,omitempty" yaml:"text,omitempty"`
	Size    int               `json:"size" yaml:"size"`
}

func inspectLine(line string) inspectedLine {
	m := message.Parse(line)
	view := m.View()
	identity := m.Identity()
	params := m.Params()
	if params == nil {
		params = []string{}
	}
	inspected := inspectedLine{
		Line:    line,
		Kind:    view.Kind().String(),
		Nick:    identity.Nick,
		User:    identity.User,
		Host:    identity.Host,
		Command: m.Command(),
		Params:  params,
		Tags:    m.Tags(),
		Channel: view.IsChannel(),
		Size:    len(line),
	}
	if v, ok := view.AsText(); ok {
		inspected.Text = v.Text()
	} else if v, ok := view.AsAction(); ok {
		inspected.Text = v.Text()
	} else if v, ok := view.AsCTCP(); ok {
		inspected.Text = v.Text()
	}
	return inspected
}

func runInspect(in io.Reader, out io.Writer, options inspectOptions) error {
	output := options.output
	if options.sel != "" {
		output = "json"
	}
	switch output {
	case "text", "json", "yaml":
	default:
		return ErrUnknownOutput
	}

	var lines, total int
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		inspected := inspectLine(line)
		lines++
		total += inspected.Size

		switch output {
		case "json":
			data, err := json.Marshal(inspected)
			if err != nil {
				return errors.Wrap(err, "failed to encode line")
			}
			if options.sel != "" {
				fmt.Fprintln(out, gjson.GetBytes(data, options.sel).String())
				continue
			}
			fmt.Fprintln(out, string(data))
		case "yaml":
			data, err := yaml.Marshal(inspected)
			if err != nil {
				return errors.Wrap(err, "failed to encode line")
			}
			fmt.Fprintf(out, "---\n%s", data)
		default:
			writeText(out, inspected)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed to read input")
	}
	if output == "text" {
		fmt.Fprintf(out, "%s lines, %s\n", humanize.Comma(int64(lines)), humanize.Bytes(uint64(total)))
	}
	return nil
}

func writeText(out io.Writer, l inspectedLine) {
	fmt.Fprintf(out, "%s (%s)\n", l.Kind, humanize.Bytes(uint64(l.Size)))
	if l.Nick != "" {
		fmt.Fprintf(out, "  prefix:  %s\n", message.Identity{Nick: l.Nick, User: l.User, Host: l.Host})
	}
	fmt.Fprintf(out, "  command: %s\n", l.Command)
	for i, param := range l.Params {
		fmt.Fprintf(out, "  param %d: %q\n", i, param)
	}
	keys := make([]string, 0, len(l.Tags))
	for key := range l.Tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  tag %s: %q\n", key, l.Tags[key])
	}
	if l.Text != "" {
		fmt.Fprintf(out, "  text:    %q\n", l.Text)
	}
}
