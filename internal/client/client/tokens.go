package client

import "context"

// TokenProvider supplies the bearer token. Refresh is called at most once
// per request, after the backend answered "token expired".
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a fixed token that cannot be refreshed.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

func (t StaticToken) Refresh(context.Context) (string, error) {
	return "", ErrNoRefresh
}
