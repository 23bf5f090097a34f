package message

import "strings"

// FormatFlags select which optional segments Format leaves out. They combine
// with bitwise OR.
type FormatFlags uint

const (
	IncludeAll    FormatFlags = 0x0
	ExcludePrefix FormatFlags = 0x1
	ExcludeTags   FormatFlags = 0x2
)

// Format serializes the message as [@tags ][:prefix ]COMMAND[ params]. Only
// the last parameter is ever colon-prefixed; callers must not put spaces in
// the other ones.
func (m *Message) Format(flags FormatFlags) string {
	var b strings.Builder
	if flags&ExcludeTags == 0 && len(m.tags) > 0 {
		b.WriteByte('@')
		b.WriteString(FormatTags(m.tags))
		b.WriteByte(' ')
	}
	if flags&ExcludePrefix == 0 && !m.identity.IsEmpty() {
		b.WriteByte(':')
		b.WriteString(m.identity.String())
		b.WriteByte(' ')
	}
	b.WriteString(m.command)
	for i, param := range m.params {
		b.WriteByte(' ')
		if i == len(m.params)-1 && needsColon(param) {
			b.WriteByte(':')
		}
		b.WriteString(param)
	}
	return b.String()
}

// String is Format(IncludeAll).
func (m *Message) String() string {
	return m.Format(IncludeAll)
}

func needsColon(param string) bool {
	return param == "" || strings.Contains(param, " ") || strings.HasPrefix(param, ":")
}
