package message

import (
	"sort"
	"strings"
)

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\:`,
	" ", `\s`,
	"\r", `\r`,
	"\n", `\n`,
)

// EscapeTagValue applies the IRCv3 message-tag escaping rules to a value.
// Keys are never escaped.
func EscapeTagValue(value string) string {
	return tagEscaper.Replace(value)
}

// UnescapeTagValue reverses EscapeTagValue. Unknown escape sequences lose
// their backslash and keep the following character; a lone trailing
// backslash is dropped.
func UnescapeTagValue(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(raw) {
			break
		}
		switch raw[i] {
		case ':':
			b.WriteByte(';')
		case 's':
			b.WriteByte(' ')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

// ParseTags decodes a tags segment (without the leading '@'). Entries
// without '=' get an empty value, empty entries are skipped.
func ParseTags(segment string) map[string]string {
	tags := make(map[string]string)
	for _, entry := range strings.Split(segment, ";") {
		key, value, _ := strings.Cut(entry, "=")
		if key == "" {
			continue
		}
		tags[key] = UnescapeTagValue(value)
	}
	return tags
}

// FormatTags encodes tags as key=value pairs joined by ';', sorted by key.
// Keys with an empty value are written bare.
func FormatTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		if v := tags[k]; v != "" {
			b.WriteByte('=')
			b.WriteString(EscapeTagValue(v))
		}
	}
	return b.String()
}
