package interfaces

import "github.com/ynotnauk/go-irc/entities"

type AuthProvider interface {
	GetLogin() (*entities.AuthRecord, error)
}
