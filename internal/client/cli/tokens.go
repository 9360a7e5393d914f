package cli

import (
	"context"
	"errors"
	"sync"
)

var (
	errEmptyToken = errors.New("empty access token")
	errUsage      = errors.New("usage")
)

// promptTokens holds the session token and asks the author for a new one
// when the backend reports it expired.
type promptTokens struct {
	mu     sync.Mutex
	token  string
	prompt func() (string, error)
}

func newPromptTokens(token string, prompt func() (string, error)) *promptTokens {
	return &promptTokens{token: token, prompt: prompt}
}

func (p *promptTokens) Token(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", errEmptyToken
	}
	return p.token, nil
}

func (p *promptTokens) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := p.prompt()
	if err != nil {
		return "", err
	}
	p.token = token
	return token, nil
}
