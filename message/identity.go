package message

import "strings"

// Identity is the nick!user@host prefix naming the origin of a message. Any
// component may be empty.
type Identity struct {
	Nick string
	User string
	Host string
}

// ParseIdentity splits a prefix on the first '!' and then on the first '@'
// of the remainder. A prefix without '!' is stored entirely in Nick, so a
// bare server name ends up there as well.
func ParseIdentity(prefix string) Identity {
	nick, rest, found := strings.Cut(prefix, "!")
	if !found {
		return Identity{Nick: prefix}
	}
	user, host, _ := strings.Cut(rest, "@")
	return Identity{Nick: nick, User: user, Host: host}
}

func (i Identity) IsEmpty() bool {
	return i.Nick == "" && i.User == "" && i.Host == ""
}

// String renders the identity as nick[!user][@host].
func (i Identity) String() string {
	var b strings.Builder
	b.WriteString(i.Nick)
	if i.User != "" {
		b.WriteByte('!')
		b.WriteString(i.User)
	}
	if i.Host != "" {
		b.WriteByte('@')
		b.WriteString(i.Host)
	}
	return b.String()
}
