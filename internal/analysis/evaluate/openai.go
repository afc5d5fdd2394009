package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

// OpenAI implements Evaluator using OpenAI's chat completion API.
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
	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}, nil
}

func (o *OpenAI) Evaluate(ctx context.Context, in Input) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var out Output
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doEvaluate(ctx, in)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, evaluate rejected",
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

func (o *OpenAI) doEvaluate(ctx context.Context, in Input) (Output, error) {
	userMessage := fmt.Sprintf(
		"Interest profile:\n%s\n\nContent:\nTitle: %s\nURL: %s\n\n%s",
		string(in.UserContext), in.Title, in.URL, in.Content,
	)

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	o.metricsRecorder.RecordDuration(time.Since(start))

	if err != nil {
		return Output{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Output{}, ErrEmptyResponse
	}

	text := stripCodeFence(resp.Choices[0].Message.Content)
	if strings.TrimSpace(text) == "" {
		return Output{}, ErrEmptyResponse
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		o.metricsRecorder.RecordParseFailure()
		return Output{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	out := normalize(raw)
	rawPriority := strings.ToLower(strings.TrimSpace(raw.Priority))
	if rawPriority != string(out.Priority) {
		o.metricsRecorder.RecordCoercion()
		slog.WarnContext(ctx, "evaluator priority coerced to medium", slog.String("raw_priority", raw.Priority))
	}
	o.metricsRecorder.RecordPriority(out.Priority)
	return out, nil
}
