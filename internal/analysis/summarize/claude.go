package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
	"prismis/internal/utils/text"
)

const maxInputChars = 20000

// Claude implements Summarizer using Anthropic's Claude API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

// NewClaude constructs a Claude summarizer. apiKeyConfigValue is the raw
// config.toml value (either a literal key or "env:VAR"); construction
// fails fast with ConfigError if it cannot be resolved.
func NewClaude(apiKeyConfigValue string, cfg Config) (*Claude, error) {
	apiKey, err := ResolveAPIKey("llm.api_key", apiKeyConfigValue)
	if err != nil {
		return nil, err
	}

	slog.Info("initialized claude summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}, nil
}

func (c *Claude) Summarize(ctx context.Context, in Input) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var out Output
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doSummarize(ctx, in)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		out = result.(Output)
		return nil
	})
	if retryErr != nil {
		return Output{}, &AnalysisError{Provider: "claude", Cause: retryErr}
	}
	return out, nil
}

func (c *Claude) doSummarize(ctx context.Context, in Input) (Output, error) {
	requestID := uuid.New().String()

	content := in.Content
	if len(content) > maxInputChars {
		content = content[:maxInputChars] + "\n...(truncated)"
	}

	userMessage := fmt.Sprintf("Title: %s\nURL: %s\nSource type: %s\n\n%s", in.Title, in.URL, in.SourceType, content)

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return Output{}, fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return Output{}, ErrEmptyResponse
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return Output{}, fmt.Errorf("claude api returned unexpected response type")
	}

	out, err := parseResponse(textBlock.Text)
	if err != nil {
		c.metricsRecorder.RecordParseFailure()
		slog.WarnContext(ctx, "summarizer response failed to parse",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return Output{}, err
	}

	c.metricsRecorder.RecordSummaryLength(text.CountRunes(out.Summary))
	return out, nil
}
