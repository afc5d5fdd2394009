package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
	"prismis/internal/utils/text"
)

// OpenAI implements Summarizer using OpenAI's chat completion API.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

func NewOpenAI(apiKeyConfigValue string, cfg Config) (*OpenAI, error) {
	apiKey, err := ResolveAPIKey("llm.api_key", apiKeyConfigValue)
	if err != nil {
		return nil, err
	}

	slog.Info("initialized openai summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}, nil
}

func (o *OpenAI) Summarize(ctx context.Context, in Input) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var out Output
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doSummarize(ctx, in)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		out = result.(Output)
		return nil
	})
	if retryErr != nil {
		return Output{}, &AnalysisError{Provider: "openai", Cause: retryErr}
	}
	return out, nil
}

func (o *OpenAI) doSummarize(ctx context.Context, in Input) (Output, error) {
	content := in.Content
	if len(content) > maxInputChars {
		content = content[:maxInputChars] + "\n...(truncated)"
	}

	userMessage := fmt.Sprintf("Title: %s\nURL: %s\nSource type: %s\n\n%s", in.Title, in.URL, in.SourceType, content)

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(duration)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return Output{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Output{}, ErrEmptyResponse
	}

	out, err := parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		o.metricsRecorder.RecordParseFailure()
		slog.WarnContext(ctx, "summarizer response failed to parse", slog.String("error", err.Error()))
		return Output{}, err
	}

	o.metricsRecorder.RecordSummaryLength(text.CountRunes(out.Summary))
	return out, nil
}
