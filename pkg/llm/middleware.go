package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type limitedProvider struct {
	next    LLMProvider
	limiter *rate.Limiter
	timeout time.Duration
}

// Guard wraps a provider with a per-call timeout and an optional token bucket.
// requestsPerSecond <= 0 disables throttling; timeout <= 0 disables the deadline.
func Guard(next LLMProvider, requestsPerSecond float64, timeout time.Duration) LLMProvider {
	p := &limitedProvider{next: next, timeout: timeout}
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return p
}

func (p *limitedProvider) before(ctx context.Context) (context.Context, context.CancelFunc, error) {
	cancel := func() {}
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("oracle rate limit: %w", err)
		}
	}
	return ctx, cancel, nil
}

func (p *limitedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	ctx, cancel, err := p.before(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	return p.next.Chat(ctx, history, options...)
}

func (p *limitedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	ctx, cancel, err := p.before(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	return p.next.Generate(ctx, prompt, options...)
}
