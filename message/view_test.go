package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind Kind
	}{
		{line: ":n!u@h PRIVMSG #chan :Hello there", kind: KindMessage},
		{line: ":n!u@h privmsg #chan :lower case command", kind: KindMessage},
		{line: ":n!u@h NOTICE nick :server notice", kind: KindNotice},
		{line: ":n!u@h PRIVMSG #chan :\x01ACTION waves\x01", kind: KindAction},
		{line: ":n!u@h NOTICE nick :\x01ACTION waves\x01", kind: KindAction},
		{line: ":n!u@h PRIVMSG nick :\x01VERSION\x01", kind: KindCTCP},
		{line: ":n!u@h NOTICE nick :\x01PING 123\x01", kind: KindCTCP},
		{line: ":n!u@h PRIVMSG nick :\x01ACTION\x01", kind: KindCTCP},
		{line: ":n!u@h PRIVMSG nick :\x01unterminated", kind: KindMessage},
		{line: ":n!u@h PRIVMSG nick :\x01", kind: KindMessage},
		{line: ":n!u@h PRIVMSG", kind: KindMessage},
		{line: ":n!u@h JOIN #chan", kind: KindJoin},
		{line: ":n!u@h Part #chan :bye", kind: KindPart},
		{line: ":n!u@h KICK #chan Target :reason", kind: KindKick},
		{line: ":n!u@h NICK newnick", kind: KindNick},
		{line: ":n!u@h QUIT :gone", kind: KindQuit},
		{line: ":n!u@h TOPIC #chan :new topic", kind: KindTopic},
		{line: ":server 001 nick :Welcome", kind: KindGeneric},
		{line: "PING :token", kind: KindGeneric},
		{line: "", kind: KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := Parse(tt.line)
			v := Classify(m)
			assert.Equal(t, tt.kind, v.Kind(), "got %s", v.Kind())
			assert.Same(t, m, v.Message())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "action", KindAction.String())
	assert.Equal(t, "generic", KindGeneric.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestCheckedConversions(t *testing.T) {
	v := Parse("KICK #chan Target :reason").View()

	_, ok := v.AsAction()
	assert.False(t, ok)
	_, ok = v.AsCTCP()
	assert.False(t, ok)
	_, ok = v.AsText()
	assert.False(t, ok)
	_, ok = v.AsJoin()
	assert.False(t, ok)
	_, ok = v.AsPart()
	assert.False(t, ok)
	_, ok = v.AsNick()
	assert.False(t, ok)
	_, ok = v.AsQuit()
	assert.False(t, ok)
	_, ok = v.AsTopic()
	assert.False(t, ok)

	kick, ok := v.AsKick()
	require.True(t, ok)
	assert.Equal(t, "Target", kick.KickedNick())
	assert.Equal(t, "reason", kick.Reason())
}

func TestExampleMessageText(t *testing.T) {
	m := Parse(":Nick!user@host PRIVMSG #chan :Hello there")

	text, ok := m.View().AsText()
	require.True(t, ok)
	assert.Equal(t, "Hello there", text.Text())
	assert.Equal(t, "#chan", text.Target())
	assert.True(t, m.View().IsChannel())
}

func TestExampleAction(t *testing.T) {
	m := Parse("@id=123;time=2020 :Nick!u@h PRIVMSG #chan :\x01ACTION waves\x01")
	assert.Equal(t, "123", m.Tag("id"))

	action, ok := m.View().AsAction()
	require.True(t, ok)
	assert.Equal(t, "waves", action.Text())
}

func TestExampleKick(t *testing.T) {
	kick, ok := Parse("KICK #chan Target :reason text").View().AsKick()
	require.True(t, ok)
	assert.Equal(t, "Target", kick.KickedNick())
	assert.Equal(t, "reason text", kick.Reason())
}

func TestActionSetText(t *testing.T) {
	m := Parse(":n!u@h PRIVMSG #chan :\x01ACTION waves\x01")
	action, ok := m.View().AsAction()
	require.True(t, ok)

	action.SetText("dances wildly")
	assert.Equal(t, "\x01ACTION dances wildly\x01", m.Param(1))
	assert.Equal(t, "dances wildly", action.Text())
	assert.Equal(t, KindAction, m.View().Kind())
}

func TestCTCPView(t *testing.T) {
	m := Parse(":n!u@h PRIVMSG bot :\x01PING 1234 5678\x01")
	ctcp, ok := m.View().AsCTCP()
	require.True(t, ok)

	assert.Equal(t, "PING 1234 5678", ctcp.Text())
	assert.Equal(t, "PING", ctcp.Name())
	assert.Equal(t, "1234 5678", ctcp.Args())
	assert.Equal(t, "PRIVMSG", ctcp.Command(), "base accessors stay reachable")

	ctcp.SetText("VERSION")
	assert.Equal(t, "\x01VERSION\x01", m.Param(1))
	assert.Equal(t, "", ctcp.Args())
}

func TestTextViewSetters(t *testing.T) {
	m := Parse("NOTICE nick :hello")
	text, ok := m.View().AsText()
	require.True(t, ok)
	assert.False(t, m.View().IsChannel())

	text.SetTarget("#other")
	text.SetText("bye now")
	assert.Equal(t, "NOTICE #other :bye now", m.String())
}

func TestTextViewMissingParams(t *testing.T) {
	text, ok := Parse("PRIVMSG").View().AsText()
	require.True(t, ok)
	assert.Equal(t, "", text.Target())
	assert.Equal(t, "", text.Text())
}

func TestNickView(t *testing.T) {
	m := Parse(":old!u@h NICK new")
	nick, ok := m.View().AsNick()
	require.True(t, ok)

	assert.Equal(t, "old", nick.OldNick())
	assert.Equal(t, "new", nick.NewNick())

	nick.SetNewNick("newer")
	assert.Equal(t, ":old!u@h NICK newer", m.String())
}

func TestPartQuitTopicViews(t *testing.T) {
	part, ok := Parse(":n!u@h PART #chan :see you").View().AsPart()
	require.True(t, ok)
	assert.Equal(t, "see you", part.Reason())
	part.SetReason("later")
	assert.Equal(t, "later", part.Param(1))

	quit, ok := Parse(":n!u@h QUIT :Ping timeout").View().AsQuit()
	require.True(t, ok)
	assert.Equal(t, "Ping timeout", quit.Reason())
	quit.SetReason("Client exited")
	assert.Equal(t, ":n!u@h QUIT :Client exited", quit.String())

	topic, ok := Parse(":n!u@h TOPIC #chan :old topic").View().AsTopic()
	require.True(t, ok)
	assert.Equal(t, "old topic", topic.Topic())
	topic.SetTopic("new")
	assert.Equal(t, "new", topic.Param(1))

	emptyPart, ok := Parse(":n!u@h PART #chan").View().AsPart()
	require.True(t, ok)
	assert.Equal(t, "", emptyPart.Reason())
}

func TestJoinView(t *testing.T) {
	join, ok := Parse(":n!u@h JOIN #chan").View().AsJoin()
	require.True(t, ok)
	assert.Equal(t, "#chan", join.Param(0))
	assert.Equal(t, "n", join.Nick())
}

func TestKickSettersGrowParams(t *testing.T) {
	m := New(Identity{}, "KICK", []string{"#chan"}, nil)
	kick, ok := m.View().AsKick()
	require.True(t, ok)

	kick.SetReason("spam")
	kick.SetKickedNick("troll")
	assert.Equal(t, "KICK #chan troll spam", m.String())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "PRIVMSG #chan :hello world", NewPrivmsg("#chan", "hello world").String())
	assert.Equal(t, "NOTICE nick hi", NewNotice("nick", "hi").String())
	assert.Equal(t, "PRIVMSG #chan :\x01ACTION waves\x01", NewAction("#chan", "waves").String())
	assert.Equal(t, "NOTICE nick :\x01VERSION go-irc\x01", NewCTCP("NOTICE", "nick", "VERSION go-irc").String())
	assert.Equal(t, "PRIVMSG nick \x01PING\x01", NewCTCP("PRIVMSG", "nick", "PING").String())

	assert.Equal(t, KindAction, NewAction("#chan", "waves").View().Kind())
	assert.Equal(t, KindCTCP, NewCTCP("PRIVMSG", "nick", "PING").View().Kind())
}

func TestIsChannelName(t *testing.T) {
	assert.True(t, IsChannelName("#go"))
	assert.True(t, IsChannelName("&local"))
	assert.True(t, IsChannelName("+modeless"))
	assert.True(t, IsChannelName("!ABCDEchan"))
	assert.False(t, IsChannelName("nick"))
	assert.False(t, IsChannelName(""))
}
