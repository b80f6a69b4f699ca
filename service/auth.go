package service

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-warden/identity"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/google/uuid"
)

const tokenLifetime = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingDependency  = errors.New("missing dependency")
)

var _ i.Authenticator = &Auth{}

// Auth registers operators and issues their bearer tokens.
type Auth struct {
	operatorRepo i.OperatorRepo
	tokenizer    i.Tokenizer
}

// NewAuthService creates an Auth service.
func NewAuthService(repo i.OperatorRepo, tokenizer i.Tokenizer) (*Auth, error) {
	if repo == nil || tokenizer == nil {
		return nil, ErrMissingDependency
	}
	return &Auth{operatorRepo: repo, tokenizer: tokenizer}, nil
}

// Register creates an operator account.
func (a *Auth) Register(username, password string) error {
	operator, err := identity.NewOperator(identity.OperatorConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	})
	if err != nil {
		return err
	}

	return a.operatorRepo.Save(operator)
}

// SignIn checks the password and returns the operator with a token valid for a day.
func (a *Auth) SignIn(username, password string) (*identity.Operator, string, error) {
	operator, err := a.operatorRepo.ByUsername(username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !operator.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(map[string]any{
		"operatorID": operator.ID.String(),
		"username":   operator.Username,
	}, tokenLifetime)
	if err != nil {
		return nil, "", err
	}

	return operator, token, nil
}
