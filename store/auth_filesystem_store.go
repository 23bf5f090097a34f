package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ynotnauk/go-irc/entities"
)

var (
	ErrBlankStoreLocation error = errors.New("storeLocation cannot be blank")
	ErrBlankNetwork       error = errors.New("network cannot be blank")
	ErrAuthRecordNotFound error = errors.New("auth record not found")
)

// AuthFilesystemStore keeps one JSON file per network inside a directory.
type AuthFilesystemStore struct {
	storeLocation string
}

func (s *AuthFilesystemStore) path(network string) string {
	return filepath.Join(s.storeLocation, fmt.Sprintf("auth.%s.json", network))
}

func (s *AuthFilesystemStore) GetByNetwork(network string) (*entities.AuthRecord, error) {
	if network == "" {
		return nil, ErrBlankNetwork
	}
	// Read store
	fileContents, err := os.ReadFile(s.path(network))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrAuthRecordNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read auth record for %s", network)
	}
	// Write store to struct
	authRecord := &entities.AuthRecord{}
	if err := json.Unmarshal(fileContents, authRecord); err != nil {
		return nil, errors.Wrapf(err, "failed to decode auth record for %s", network)
	}
	if authRecord.Network == "" {
		authRecord.Network = network
	}
	return authRecord, nil
}

func (s *AuthFilesystemStore) UpdateByNetwork(auth *entities.AuthRecord) error {
	if auth == nil || auth.Network == "" {
		return ErrBlankNetwork
	}
	// Convert struct into a JSON byte array
	fileContents, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode auth record")
	}
	if err := os.MkdirAll(s.storeLocation, 0700); err != nil {
		return errors.Wrap(err, "failed to create store directory")
	}
	// Write store, the record may carry a password
	if err := os.WriteFile(s.path(auth.Network), fileContents, 0600); err != nil {
		return errors.Wrapf(err, "failed to write auth record for %s", auth.Network)
	}
	return nil
}

func NewAuthFilesystemStore(storeLocation string) (*AuthFilesystemStore, error) {
	// Ensure store location is not blank
	if storeLocation == "" {
		return nil, ErrBlankStoreLocation
	}
	store := &AuthFilesystemStore{
		storeLocation: storeLocation,
	}
	return store, nil
}
