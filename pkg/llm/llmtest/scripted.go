// Package llmtest provides a deterministic oracle for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lazy-tourist-be/pkg/llm"
)

// ErrExhausted is returned when no scripted reply is left.
var ErrExhausted = errors.New("scripted provider: no reply queued")

type reply struct {
	text string
	err  error
}

// ScriptedProvider returns queued replies in order and records every prompt it receives.
type ScriptedProvider struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

var _ llm.LLMProvider = &ScriptedProvider{}

func New(replies ...string) *ScriptedProvider {
	p := &ScriptedProvider{}
	for _, r := range replies {
		p.Reply(r)
	}
	return p
}

// Reply queues a successful response.
func (p *ScriptedProvider) Reply(text string) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, reply{text: text})
	return p
}

// Fail queues a transport error.
func (p *ScriptedProvider) Fail(err error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, reply{err: err})
	return p
}

func (p *ScriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	var prompt strings.Builder
	for _, m := range history {
		prompt.WriteString(m.Role)
		prompt.WriteString(": ")
		prompt.WriteString(m.Content)
		prompt.WriteString("\n")
	}
	return p.next(prompt.String())
}

func (p *ScriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.next(prompt)
}

func (p *ScriptedProvider) next(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if len(p.replies) == 0 {
		return "", ErrExhausted
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.text, r.err
}

// Prompts returns every prompt received so far.
func (p *ScriptedProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}

// Calls returns how many times the oracle was asked.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// Pending returns how many queued replies were not consumed.
func (p *ScriptedProvider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.replies)
}
