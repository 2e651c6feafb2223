package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned by providers constructed without credentials.
// Callers treat it like any other failure and take their fallback path.
var ErrNotConfigured = errors.New("llm: provider not configured")

// Message is a provider-neutral chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request is a single completion request. A negative Temperature leaves the
// provider default in place.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client completes a prompt with a text model.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Unconfigured is a Client that always fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Complete(context.Context, Request) (Response, error) {
	return Response{}, ErrNotConfigured
}
