package message

import (
	"strings"
	"time"
)

// Parse builds a message from a single line with the line terminator already
// removed. It never fails: malformed or missing parts are left empty.
func Parse(line string) *Message {
	m := &Message{}
	m.Parse(line)
	return m
}

// Parse replaces the identity, command, params and tags of m with those read
// from line and stamps the receive time. The context identifiers are kept.
func (m *Message) Parse(line string) {
	m.identity = Identity{}
	m.command = ""
	m.params = nil
	m.tags = make(map[string]string)
	m.receivedAt = time.Now()

	rest := line
	// Tags
	if strings.HasPrefix(rest, "@") {
		var segment string
		segment, rest = cutSegment(rest[1:])
		m.tags = ParseTags(segment)
	}
	// Prefix
	if strings.HasPrefix(rest, ":") {
		var segment string
		segment, rest = cutSegment(rest[1:])
		m.identity = ParseIdentity(segment)
	}
	// Command
	m.command, rest = nextToken(rest)
	// Params, the first one starting with a colon takes the rest of the line
	for rest != "" {
		if rest[0] == ':' {
			m.params = append(m.params, rest[1:])
			break
		}
		var param string
		param, rest = nextToken(rest)
		m.params = append(m.params, param)
	}
}

// cutSegment returns the text up to the first space and the remainder with
// its leading spaces removed.
func cutSegment(s string) (string, string) {
	segment, rest, _ := strings.Cut(s, " ")
	return segment, strings.TrimLeft(rest, " ")
}

// nextToken skips leading spaces, returns the text up to the next space and
// the remainder with its leading spaces removed.
func nextToken(s string) (string, string) {
	return cutSegment(strings.TrimLeft(s, " "))
}
