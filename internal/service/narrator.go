package service

import (
	"context"
	"fmt"
	"time"

	"text-adventure/internal/config"
	"text-adventure/internal/model"
	"text-adventure/internal/schemas"

	"go.uber.org/zap"
)

// Narrator turns a prompt into narrative text.
type Narrator interface {
	// Generate returns the narrative or an error wrapping model.ErrNoResponse once every attempt failed.
	Generate(ctx context.Context, prompt string) (string, error)
}

// RetryPolicy is a fixed number of attempts with a fixed pause between them.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

type aiNarrator struct {
	client       AIClient
	systemPrompt string
	policy       RetryPolicy
	params       GenerationParams
	logger       *zap.Logger
}

// NewNarrator wraps client with the retry policy from cfg.
func NewNarrator(client AIClient, cfg *config.Config, logger *zap.Logger) Narrator {
	temperature := cfg.AITemperature
	return newNarrator(client, RetryPolicy{MaxAttempts: cfg.AIMaxAttempts, Delay: cfg.AIRetryDelay},
		GenerationParams{Temperature: &temperature}, logger)
}

// NewNarratorWithPolicy is NewNarrator with an explicit policy and endpoint defaults.
func NewNarratorWithPolicy(client AIClient, policy RetryPolicy, logger *zap.Logger) Narrator {
	return newNarrator(client, policy, GenerationParams{}, logger)
}

func newNarrator(client AIClient, policy RetryPolicy, params GenerationParams, logger *zap.Logger) *aiNarrator {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &aiNarrator{
		client:       client,
		systemPrompt: narratorSystemPrompt,
		policy:       policy,
		params:       params,
		logger:       logger.Named("Narrator"),
	}
}

func (n *aiNarrator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= n.policy.MaxAttempts; attempt++ {
		text, _, err := n.client.GenerateText(ctx, n.systemPrompt, prompt, n.params)
		if err == nil {
			text = schemas.StripReasoning(text)
			if text != "" {
				narratorAttemptsTotal.WithLabelValues(outcomeSuccess).Inc()
				return text, nil
			}
			err = fmt.Errorf("%w: reply is empty after removing reasoning", ErrAIGenerationFailed)
		}
		lastErr = err
		narratorAttemptsTotal.WithLabelValues("error").Inc()
		n.logger.Warn("Narrative generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", n.policy.MaxAttempts),
			zap.Error(err),
		)
		if attempt == n.policy.MaxAttempts {
			break
		}
		if err := sleepCtx(ctx, n.policy.Delay); err != nil {
			lastErr = err
			break
		}
	}
	return "", fmt.Errorf("%w: %v", model.ErrNoResponse, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
