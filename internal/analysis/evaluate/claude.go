package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

// Claude implements Evaluator using Anthropic's Claude API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

func NewClaude(apiKeyConfigValue string, cfg Config) (*Claude, error) {
	apiKey, err := ResolveAPIKey("llm.api_key", apiKeyConfigValue)
	if err != nil {
		return nil, err
	}
	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}, nil
}

func (c *Claude) Evaluate(ctx context.Context, in Input) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var out Output
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doEvaluate(ctx, in)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, evaluate rejected",
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

func (c *Claude) doEvaluate(ctx context.Context, in Input) (Output, error) {
	userMessage := fmt.Sprintf(
		"Interest profile:\n%s\n\nContent:\nTitle: %s\nURL: %s\n\n%s",
		string(in.UserContext), in.Title, in.URL, in.Content,
	)

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
	c.metricsRecorder.RecordDuration(time.Since(start))

	if err != nil {
		return Output{}, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return Output{}, ErrEmptyResponse
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return Output{}, fmt.Errorf("claude api returned unexpected response type")
	}

	text := stripCodeFence(textBlock.Text)
	if strings.TrimSpace(text) == "" {
		return Output{}, ErrEmptyResponse
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		c.metricsRecorder.RecordParseFailure()
		return Output{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	out := normalize(raw)
	rawPriority := strings.ToLower(strings.TrimSpace(raw.Priority))
	if rawPriority != string(out.Priority) {
		c.metricsRecorder.RecordCoercion()
		slog.WarnContext(ctx, "evaluator priority coerced to medium", slog.String("raw_priority", raw.Priority))
	}
	c.metricsRecorder.RecordPriority(out.Priority)
	return out, nil
}
