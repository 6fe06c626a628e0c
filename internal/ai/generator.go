package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/contentgen-ai-go/internal/content"
	"github.com/olegiv/contentgen-ai-go/internal/ratelimit"
	"github.com/olegiv/contentgen-ai-go/internal/retry"
)

// Generator drives content generation end to end: it builds prompts from the
// registry, calls the provider, parses and validates the model output, and
// retries the whole round trip under the executor's policy. Parse failures
// are retryable (the model may produce valid JSON on the next attempt) while
// validation failures on a well-formed response are terminal.
type Generator struct {
	provider Provider
	executor *retry.Executor
	registry *content.Registry
	limiter  *ratelimit.Limiter
}

// NewGenerator creates a Generator. A nil registry falls back to the default
// content type registry; a nil limiter disables client-side rate limiting.
func NewGenerator(provider Provider, executor *retry.Executor, registry *content.Registry, limiter *ratelimit.Limiter) (*Generator, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("retry executor is required")
	}
	if registry == nil {
		registry = content.DefaultRegistry()
	}
	return &Generator{
		provider: provider,
		executor: executor,
		registry: registry,
		limiter:  limiter,
	}, nil
}

// generationResult bundles the parsed content with the provider call stats
// of the attempt that produced it.
type generationResult struct {
	gen   *content.Generated
	stats *Stats
}

// GenerateContent produces content for the request, retrying transient
// failures according to the executor's policy. The returned stats describe
// the final (successful) provider call.
func (g *Generator) GenerateContent(ctx context.Context, req content.Request) (*content.Generated, *Stats, error) {
	if err := content.ValidateRequest(req); err != nil {
		return nil, nil, err
	}

	spec, err := g.registry.Get(req.Type)
	if err != nil {
		return nil, nil, err
	}

	constraints, err := spec.Constraints.ForRequest(req)
	if err != nil {
		return nil, nil, err
	}

	if g.limiter != nil && !g.limiter.Allow() {
		return nil, nil, fmt.Errorf("rate limit exceeded, next window at %s",
			g.limiter.Reset().Format("15:04:05"))
	}

	systemPrompt := spec.Prompt.GetSystemPrompt()
	userPrompt := spec.Prompt.GetUserPrompt(req)

	op := retry.OperationContext{
		Name: "generate." + strings.ToLower(g.provider.GetProviderName()),
		Metadata: map[string]any{
			"request_id":   req.ID,
			"content_type": string(req.Type),
			"topic":        req.Topic,
		},
	}

	result, err := retry.Do(ctx, g.executor, op, func(ctx context.Context) (generationResult, error) {
		raw, stats, err := g.provider.GenerateText(ctx, systemPrompt, userPrompt)
		if err != nil {
			return generationResult{}, err
		}

		gen, err := content.Parse(raw)
		if err != nil {
			return generationResult{}, err
		}

		if err := content.ValidateGenerated(constraints, gen); err != nil {
			return generationResult{}, err
		}

		return generationResult{gen: gen, stats: stats}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result.gen, result.stats, nil
}

// Provider exposes the underlying provider, mainly for model info reporting.
func (g *Generator) Provider() Provider {
	return g.provider
}
