package interfaces

import "github.com/ynotnauk/go-irc/entities"

type AuthStorer interface {
	GetByNetwork(network string) (*entities.AuthRecord, error)
	UpdateByNetwork(auth *entities.AuthRecord) error
}
