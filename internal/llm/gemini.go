package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/crithinklab/crithink/internal/config"
	prommetrics "github.com/crithinklab/crithink/internal/metrics"
	"github.com/crithinklab/crithink/pkg/logger"
)

// GeminiProvider implements Provider on the Gemini generative-language API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
	log         *logger.Logger
}

// NewGeminiProvider creates a Gemini-backed provider from configuration.
func NewGeminiProvider(ctx context.Context, cfg *config.AIConfig, log *logger.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	temperature := float32(cfg.Temperature)
	if cfg.Temperature == 0 {
		temperature = 0.7
	}
	maxTokens := int32(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     cfg.Timeout(),
		log:         log,
	}, nil
}

// Complete sends the composed prompt and returns the raw completion text.
// The request is bounded by the configured timeout; deadline overruns come
// back as retryable upstream errors.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var contents []*genai.Content
	for _, m := range req.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == "persona" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.UserText, genai.RoleUser))

	temp := p.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   p.maxTokens,
	}

	start := time.Now()
	res, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	duration := time.Since(start)

	if err != nil {
		prommetrics.CompletionDurationSeconds.WithLabelValues(p.model, "error").Observe(duration.Seconds())
		p.log.Error().Err(err).Str("model", p.model).Dur("duration", duration).Msg("Generative-text request failed")
		return "", &UpstreamError{Err: err, Retryable: classifyRetryable(err)}
	}

	text := res.Text()
	if text == "" {
		prommetrics.CompletionDurationSeconds.WithLabelValues(p.model, "empty").Observe(duration.Seconds())
		return "", &UpstreamError{Err: errors.New("empty completion"), Retryable: true}
	}

	prommetrics.CompletionDurationSeconds.WithLabelValues(p.model, "ok").Observe(duration.Seconds())
	p.log.Debug().Str("model", p.model).Dur("duration", duration).Int("chars", len(text)).Msg("Completion received")
	return text, nil
}

// classifyRetryable decides whether an API failure is transient.
func classifyRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	// Network-level failures without an API status are worth one retry.
	return true
}
