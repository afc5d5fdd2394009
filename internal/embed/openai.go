package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"prismis/internal/resilience/circuitbreaker"
	"prismis/internal/resilience/retry"
)

// OpenAI implements Embedder using OpenAI's embeddings API.
type OpenAI struct {
	client         *openai.Client
	model          openai.EmbeddingModel
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewOpenAI constructs an embedder. apiKeyConfigValue follows the same
// "env:VAR" or literal convention as the summarizer and evaluator.
func NewOpenAI(apiKeyConfigValue string, model openai.EmbeddingModel) (*OpenAI, error) {
	apiKey, err := resolveAPIKey("embedder.api_key", apiKeyConfigValue)
	if err != nil {
		return nil, err
	}
	return &OpenAI{
		client:         openai.NewClient(apiKey),
		model:          model,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EmbedderConfig()),
		retryConfig:    retry.AIAPIConfig(),
	}, nil
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doEmbed(ctx, text)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("embedder circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
			}
			return err
		}
		vector = result.([]float32)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedFailed, retryErr)
	}
	return vector, nil
}

func (o *OpenAI) doEmbed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings api error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings api returned no data")
	}
	return resp.Data[0].Embedding, nil
}

// resolveAPIKey duplicates the summarize/evaluate package's env:VAR
// dereferencing rule locally to avoid a cross-package dependency for
// three lines of logic.
func resolveAPIKey(field, value string) (string, error) {
	if !strings.HasPrefix(value, "env:") {
		if value == "" {
			return "", fmt.Errorf("embedder config %s is required", field)
		}
		return value, nil
	}
	varName := strings.TrimPrefix(value, "env:")
	resolved, ok := os.LookupEnv(varName)
	if !ok || resolved == "" {
		return "", fmt.Errorf("embedder config %s: environment variable %s is not set", field, varName)
	}
	return resolved, nil
}
