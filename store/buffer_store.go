package store

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/logger"
	"github.com/ynotnauk/go-irc/message"
	"github.com/ynotnauk/go-irc/metrics"
)

// TimeTag is the IRCv3 server-time tag; recorded lines always carry it.
const TimeTag = "time"

// timeFormat is the server-time layout, millisecond precision in UTC.
const timeFormat = "2006-01-02T15:04:05.000Z"

// BufferStore keeps recent channel traffic so it can be played back after a
// (re)join. Keys sort by receive time within a network and channel:
//
//	buf:<network>:<channel>:<unix_nano_padded>-<seq>
type BufferStore struct {
	db      *pebble.DB
	seq     uint64
	metrics *metrics.Metrics
}

// NewBufferStore opens (or creates) the pebble database at path. m may be nil.
func NewBufferStore(path string, m *metrics.Metrics) (*BufferStore, error) {
	if path == "" {
		return nil, ErrBlankStoreLocation
	}
	logger.Log.Info("opening_buffer_store", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Log.Error("buffer_store_open_failed", zap.String("path", path), zap.Error(err))
		return nil, errors.Wrap(err, "failed to open buffer store")
	}
	return &BufferStore{db: db, metrics: m}, nil
}

func channelPrefix(network message.NetworkID, channel string) []byte {
	return []byte(fmt.Sprintf("buf:%s:%s:", network, strings.ToLower(channel)))
}

// upperBound returns the smallest key greater than every key with prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Record stores PRIVMSG and NOTICE messages addressed to a channel, actions
// and CTCP included. Anything else is ignored without error.
func (s *BufferStore) Record(m *message.Message) error {
	view := m.View()
	switch view.Kind() {
	case message.KindMessage, message.KindNotice, message.KindAction, message.KindCTCP:
	default:
		return nil
	}
	if !view.IsChannel() {
		return nil
	}
	channel := m.Param(0)

	receivedAt := m.ReceivedAt()
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	stored := m.Clone()
	if stored.Tag(TimeTag) == "" {
		stored.SetTag(TimeTag, receivedAt.UTC().Format(timeFormat))
	}

	n := atomic.AddUint64(&s.seq, 1)
	key := fmt.Sprintf("%s%020d-%06d", channelPrefix(m.Network(), channel), receivedAt.UnixNano(), n%1000000)
	if err := s.db.Set([]byte(key), []byte(stored.String()), pebble.Sync); err != nil {
		logger.Log.Error("buffer_record_failed", zap.String("key", key), zap.Error(err))
		return errors.Wrap(err, "failed to record message")
	}
	s.metrics.BufferRecorded()
	logger.Log.Debug("buffer_recorded", zap.String("key", key))
	return nil
}

// Playback returns up to limit of the newest messages recorded for channel,
// oldest first. A limit of zero or less returns everything.
func (s *BufferStore) Playback(network message.NetworkID, channel string, limit int) ([]*message.Message, error) {
	prefix := channelPrefix(network, channel)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open buffer iterator")
	}
	defer iter.Close()

	var lines []string
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(lines) >= limit {
			break
		}
		lines = append(lines, string(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to read buffer")
	}

	messages := make([]*message.Message, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		m := message.Parse(lines[i])
		if t, err := time.Parse(timeFormat, m.Tag(TimeTag)); err == nil {
			m.SetReceivedAt(t)
		}
		m.SetNetwork(network)
		m.SetChannel(message.ChannelID(m.Param(0)))
		messages = append(messages, m)
	}
	return messages, nil
}

// Clear removes everything recorded for channel.
func (s *BufferStore) Clear(network message.NetworkID, channel string) error {
	prefix := channelPrefix(network, channel)
	if err := s.db.DeleteRange(prefix, upperBound(prefix), pebble.Sync); err != nil {
		return errors.Wrap(err, "failed to clear buffer")
	}
	logger.Log.Info("buffer_cleared", zap.String("network", string(network)), zap.String("channel", channel))
	return nil
}

func (s *BufferStore) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	logger.Log.Info("buffer_store_closed")
	return nil
}
