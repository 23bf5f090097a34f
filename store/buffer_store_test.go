package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynotnauk/go-irc/message"
	"github.com/ynotnauk/go-irc/metrics"
)

func openBufferStore(t *testing.T, m *metrics.Metrics) *BufferStore {
	t.Helper()
	s, err := NewBufferStore(filepath.Join(t.TempDir(), "buffer"), m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func inbound(network, line string, at time.Time) *message.Message {
	m := message.Parse(line)
	m.SetNetwork(message.NetworkID(network))
	m.SetReceivedAt(at)
	return m
}

func counterValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestNewBufferStoreBlankPath(t *testing.T) {
	_, err := NewBufferStore("", nil)
	assert.ErrorIs(t, err, ErrBlankStoreLocation)
}

func TestBufferStoreRecordFilters(t *testing.T) {
	m := metrics.New()
	s := openBufferStore(t, m)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	lines := []string{
		":a!u@h PRIVMSG #go :hello",
		":a!u@h NOTICE #go :notice",
		":a!u@h PRIVMSG #go :\x01ACTION waves\x01",
		":a!u@h PRIVMSG bot :private",
		":a!u@h JOIN #go",
		":a!u@h TOPIC #go :topic",
		"PING :server",
	}
	for i, line := range lines {
		require.NoError(t, s.Record(inbound("libera", line, now.Add(time.Duration(i)*time.Second))))
	}

	got, err := s.Playback("libera", "#go", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "hello", got[0].Param(1))
	assert.Equal(t, "notice", got[1].Param(1))
	assert.Equal(t, message.KindAction, got[2].View().Kind())
	assert.Equal(t, 3.0, counterValue(t, m, "irc_buffer_records_total"))
}

func TestBufferStorePlaybackLimitAndOrder(t *testing.T) {
	s := openBufferStore(t, nil)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		line := fmt.Sprintf(":a!u@h PRIVMSG #go :line %d", i)
		require.NoError(t, s.Record(inbound("libera", line, start.Add(time.Duration(i)*time.Minute))))
	}

	got, err := s.Playback("libera", "#GO", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "line 7", got[0].Param(1))
	assert.Equal(t, "line 8", got[1].Param(1))
	assert.Equal(t, "line 9", got[2].Param(1))

	last := got[2]
	assert.Equal(t, "2024-05-01T12:09:00.000Z", last.Tag(TimeTag))
	assert.True(t, start.Add(9*time.Minute).Equal(last.ReceivedAt()))
	assert.Equal(t, message.NetworkID("libera"), last.Network())
	assert.Equal(t, message.ChannelID("#go"), last.Channel())
	assert.Equal(t, message.Identity{Nick: "a", User: "u", Host: "h"}, last.Identity())
}

func TestBufferStoreKeepsServerTime(t *testing.T) {
	s := openBufferStore(t, nil)
	m := inbound("libera", "@time=2020-01-01T00:00:00.000Z;msgid=x :a!u@h PRIVMSG #go :old", time.Now())
	require.NoError(t, s.Record(m))

	got, err := s.Playback("libera", "#go", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2020-01-01T00:00:00.000Z", got[0].Tag(TimeTag))
	assert.Equal(t, "x", got[0].Tag("msgid"))
	assert.Equal(t, 2020, got[0].ReceivedAt().Year())

	plain := inbound("libera", ":a!u@h PRIVMSG #go :new", time.Now())
	require.NoError(t, s.Record(plain))
	assert.Equal(t, "", plain.Tag(TimeTag), "the recorded copy carries the time tag, not the caller's message")
}

func TestBufferStoreSeparatesNetworksAndChannels(t *testing.T) {
	s := openBufferStore(t, nil)
	now := time.Now()

	require.NoError(t, s.Record(inbound("libera", ":a!u@h PRIVMSG #go :libera go", now)))
	require.NoError(t, s.Record(inbound("oftc", ":a!u@h PRIVMSG #go :oftc go", now)))
	require.NoError(t, s.Record(inbound("libera", ":a!u@h PRIVMSG #go-nuts :nuts", now)))

	got, err := s.Playback("libera", "#go", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "libera go", got[0].Param(1))

	got, err = s.Playback("oftc", "#go", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "oftc go", got[0].Param(1))
}

func TestBufferStoreClear(t *testing.T) {
	s := openBufferStore(t, nil)
	now := time.Now()

	require.NoError(t, s.Record(inbound("libera", ":a!u@h PRIVMSG #go :one", now)))
	require.NoError(t, s.Record(inbound("libera", ":a!u@h PRIVMSG #rust :two", now)))
	require.NoError(t, s.Clear("libera", "#go"))

	got, err := s.Playback("libera", "#go", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Playback("libera", "#rust", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBufferStoreCloseTwice(t *testing.T) {
	s, err := NewBufferStore(filepath.Join(t.TempDir(), "buffer"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte("buf:n:#c;"), upperBound([]byte("buf:n:#c:")))
	assert.Equal(t, []byte("b"), upperBound([]byte{'a', 0xff}))
	assert.Nil(t, upperBound([]byte{0xff, 0xff}))
}
