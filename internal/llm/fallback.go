package llm

import (
	"context"
	"errors"

	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// FallbackClient tries each provider in order and returns the first success.
// Each provider gets exactly one attempt.
type FallbackClient struct {
	providers []Client
	logger    *logging.Logger
}

// NewFallbackClient builds a provider chain. Nil providers are skipped; an
// empty chain behaves like Unconfigured.
func NewFallbackClient(logger *logging.Logger, providers ...Client) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	chain := make([]Client, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &FallbackClient{providers: chain, logger: logger}
}

// Len reports how many providers are configured.
func (c *FallbackClient) Len() int { return len(c.providers) }

// Complete sends the request to the providers in order.
func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	if len(c.providers) == 0 {
		return Response{}, ErrNotConfigured
	}
	var errs []error
	for i, p := range c.providers {
		resp, err := p.Complete(ctx, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("llm fallback provider succeeded", "provider_index", i)
			}
			return resp, nil
		}
		errs = append(errs, err)
		c.logger.Warn("llm provider failed", "provider_index", i, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return Response{}, errors.Join(errs...)
}
