package auth

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ynotnauk/go-irc/entities"
	"github.com/ynotnauk/go-irc/interfaces"
	"github.com/ynotnauk/go-irc/logger"
	"github.com/ynotnauk/go-irc/store"
)

var (
	ErrNilAuthStore error = errors.New("authStore cannot be nil")
	ErrBlankNetwork error = errors.New("network cannot be blank")
	ErrBlankNick    error = errors.New("nick cannot be blank")
)

// StaticProvider always logs in with the same record.
type StaticProvider struct {
	record entities.AuthRecord
}

func (p *StaticProvider) GetLogin() (*entities.AuthRecord, error) {
	record := p.record
	return &record, nil
}

func NewStaticProvider(record entities.AuthRecord) (*StaticProvider, error) {
	if record.Nick == "" {
		return nil, ErrBlankNick
	}
	withDefaults(&record)
	return &StaticProvider{record: record}, nil
}

// StoredProvider reads the login for one network from an auth store. The
// fallback provider seeds a missing record, and its non-empty fields override
// a stored one so configuration changes reach the store.
type StoredProvider struct {
	authStore interfaces.AuthStorer
	network   string
	fallback  interfaces.AuthProvider
}

func (p *StoredProvider) GetLogin() (*entities.AuthRecord, error) {
	// Get current record
	record, err := p.authStore.GetByNetwork(p.network)
	if err != nil && (!errors.Is(err, store.ErrAuthRecordNotFound) || p.fallback == nil) {
		return nil, err
	}
	if p.fallback == nil {
		if record.Nick == "" {
			return nil, ErrBlankNick
		}
		withDefaults(record)
		return record, nil
	}

	seeding := err != nil
	override, err := p.fallback.GetLogin()
	if err != nil {
		return nil, err
	}
	if seeding {
		record = &entities.AuthRecord{}
	}
	if !merge(record, override) && !seeding {
		withDefaults(record)
		return record, nil
	}
	record.Network = p.network
	if record.Nick == "" {
		return nil, ErrBlankNick
	}
	withDefaults(record)
	if err := p.authStore.UpdateByNetwork(record); err != nil {
		return nil, errors.Wrap(err, "failed to save auth record")
	}
	if seeding {
		logger.Log.Info("auth_record_seeded", zap.String("network", p.network), zap.String("nick", record.Nick))
	} else {
		logger.Log.Info("auth_record_updated", zap.String("network", p.network), zap.String("nick", record.Nick))
	}
	return record, nil
}

// merge copies the non-empty login fields of src into dst and reports whether
// dst changed.
func merge(dst *entities.AuthRecord, src *entities.AuthRecord) bool {
	changed := false
	set := func(field *string, value string) {
		if value != "" && *field != value {
			*field = value
			changed = true
		}
	}
	set(&dst.Nick, src.Nick)
	set(&dst.User, src.User)
	set(&dst.RealName, src.RealName)
	set(&dst.Password, src.Password)
	return changed
}

// NewStoredProvider returns a provider for network. fallback may be nil, in
// which case a missing record is an error.
func NewStoredProvider(authStore interfaces.AuthStorer, network string, fallback interfaces.AuthProvider) (*StoredProvider, error) {
	if authStore == nil {
		return nil, ErrNilAuthStore
	}
	if network == "" {
		return nil, ErrBlankNetwork
	}
	provider := &StoredProvider{
		authStore: authStore,
		network:   network,
		fallback:  fallback,
	}
	return provider, nil
}

// withDefaults fills user and real name from the nick when they are blank.
func withDefaults(record *entities.AuthRecord) {
	if record.User == "" {
		record.User = record.Nick
	}
	if record.RealName == "" {
		record.RealName = record.Nick
	}
}
