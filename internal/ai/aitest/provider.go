// Package aitest provides a scriptable ai.Provider for tests.
package aitest

import (
	"context"
	"errors"
	"sync"

	"anoa.com/eduainexus/internal/ai"
)

var ErrUnavailable = errors.New("model unavailable")

type Provider struct {
	GenerateFunc func(ctx context.Context, req ai.Request) (*ai.Response, error)

	mu    sync.Mutex
	calls []ai.Request
}

func (p *Provider) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if p.GenerateFunc == nil {
		return &ai.Response{}, nil
	}
	return p.GenerateFunc(ctx, req)
}

func (p *Provider) Calls() []ai.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ai.Request, len(p.calls))
	copy(out, p.calls)
	return out
}

// Reply always answers with text.
func Reply(text string, sources ...ai.Source) *Provider {
	return &Provider{GenerateFunc: func(context.Context, ai.Request) (*ai.Response, error) {
		return &ai.Response{Text: text, Sources: sources}, nil
	}}
}

// Failing always returns ErrUnavailable.
func Failing() *Provider {
	return &Provider{GenerateFunc: func(context.Context, ai.Request) (*ai.Response, error) {
		return nil, ErrUnavailable
	}}
}

// Gateway wires p into a gateway with the default model table.
func Gateway(p ai.Provider) ai.Gateway {
	return ai.NewGateway(p, ai.NewTable(ai.DefaultModels()), nil)
}
