package i

import (
	"github.com/beka-birhanu/vinom-warden/identity"
)

// Authenticator registers operators and signs them in.
type Authenticator interface {
	Register(username, password string) error
	SignIn(username, password string) (*identity.Operator, string, error)
}
