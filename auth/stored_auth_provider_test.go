package auth

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynotnauk/go-irc/entities"
	"github.com/ynotnauk/go-irc/store"
)

type memoryStore struct {
	records   map[string]*entities.AuthRecord
	updateErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*entities.AuthRecord)}
}

func (s *memoryStore) GetByNetwork(network string) (*entities.AuthRecord, error) {
	record, ok := s.records[network]
	if !ok {
		return nil, store.ErrAuthRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *memoryStore) UpdateByNetwork(auth *entities.AuthRecord) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	copied := *auth
	s.records[auth.Network] = &copied
	return nil
}

func TestNewStaticProvider(t *testing.T) {
	_, err := NewStaticProvider(entities.AuthRecord{})
	assert.ErrorIs(t, err, ErrBlankNick)

	p, err := NewStaticProvider(entities.AuthRecord{Nick: "gobot", Password: "pw"})
	require.NoError(t, err)

	record, err := p.GetLogin()
	require.NoError(t, err)
	assert.Equal(t, "gobot", record.User)
	assert.Equal(t, "gobot", record.RealName)
	assert.Equal(t, "pw", record.Password)

	record.Nick = "changed"
	again, _ := p.GetLogin()
	assert.Equal(t, "gobot", again.Nick, "callers get a copy")
}

func TestNewStoredProviderValidation(t *testing.T) {
	_, err := NewStoredProvider(nil, "libera", nil)
	assert.ErrorIs(t, err, ErrNilAuthStore)

	_, err = NewStoredProvider(newMemoryStore(), "", nil)
	assert.ErrorIs(t, err, ErrBlankNetwork)
}

func TestStoredProviderReadsStore(t *testing.T) {
	s := newMemoryStore()
	s.records["libera"] = &entities.AuthRecord{Network: "libera", Nick: "stored", User: "u"}

	p, err := NewStoredProvider(s, "libera", nil)
	require.NoError(t, err)

	record, err := p.GetLogin()
	require.NoError(t, err)
	assert.Equal(t, "stored", record.Nick)
	assert.Equal(t, "u", record.User)
	assert.Equal(t, "stored", record.RealName)
}

func TestStoredProviderSeedsFromFallback(t *testing.T) {
	s := newMemoryStore()
	fallback, err := NewStaticProvider(entities.AuthRecord{Nick: "fallback"})
	require.NoError(t, err)

	p, err := NewStoredProvider(s, "libera", fallback)
	require.NoError(t, err)

	record, err := p.GetLogin()
	require.NoError(t, err)
	assert.Equal(t, "fallback", record.Nick)
	assert.Equal(t, "libera", record.Network)
	require.Contains(t, s.records, "libera")
	assert.Equal(t, "fallback", s.records["libera"].Nick)
}

func TestStoredProviderErrors(t *testing.T) {
	p, err := NewStoredProvider(newMemoryStore(), "libera", nil)
	require.NoError(t, err)
	_, err = p.GetLogin()
	assert.ErrorIs(t, err, store.ErrAuthRecordNotFound)

	s := newMemoryStore()
	s.updateErr = errors.New("disk full")
	fallback, _ := NewStaticProvider(entities.AuthRecord{Nick: "x"})
	p, err = NewStoredProvider(s, "libera", fallback)
	require.NoError(t, err)
	_, err = p.GetLogin()
	assert.ErrorContains(t, err, "disk full")

	s = newMemoryStore()
	s.records["libera"] = &entities.AuthRecord{Network: "libera"}
	p, _ = NewStoredProvider(s, "libera", nil)
	_, err = p.GetLogin()
	assert.ErrorIs(t, err, ErrBlankNick)
}

func TestStoredProviderWithFilesystemStore(t *testing.T) {
	fs, err := store.NewAuthFilesystemStore(t.TempDir())
	require.NoError(t, err)
	fallback, _ := NewStaticProvider(entities.AuthRecord{Nick: "gobot", Password: "pw"})

	p, err := NewStoredProvider(fs, "libera", fallback)
	require.NoError(t, err)
	_, err = p.GetLogin()
	require.NoError(t, err)

	onDisk, err := fs.GetByNetwork("libera")
	require.NoError(t, err)
	assert.Equal(t, "pw", onDisk.Password)
}

func TestStoredProviderFallbackOverridesStore(t *testing.T) {
	tests := []struct {
		name     string
		stored   entities.AuthRecord
		fallback entities.AuthRecord
		want     entities.AuthRecord
	}{
		{
			name:     "changed nick and password",
			stored:   entities.AuthRecord{Network: "libera", Nick: "gobot", User: "gobot", RealName: "gobot", Password: "old"},
			fallback: entities.AuthRecord{Nick: "newbot", Password: "new"},
			want:     entities.AuthRecord{Network: "libera", Nick: "newbot", User: "newbot", RealName: "newbot", Password: "new"},
		},
		{
			name:     "blank password keeps stored one",
			stored:   entities.AuthRecord{Network: "libera", Nick: "gobot", User: "u", RealName: "r", Password: "secret"},
			fallback: entities.AuthRecord{Nick: "gobot", User: "u", RealName: "r"},
			want:     entities.AuthRecord{Network: "libera", Nick: "gobot", User: "u", RealName: "r", Password: "secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemoryStore()
			stored := tt.stored
			s.records["libera"] = &stored
			fallback, err := NewStaticProvider(tt.fallback)
			require.NoError(t, err)

			p, err := NewStoredProvider(s, "libera", fallback)
			require.NoError(t, err)
			record, err := p.GetLogin()
			require.NoError(t, err)

			assert.Equal(t, tt.want, *record)
			assert.Equal(t, tt.want, *s.records["libera"])
		})
	}
}
