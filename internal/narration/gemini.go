package narration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultModel is fast enough for real-time exchanges.
const DefaultModel = "gemini-2.5-flash-lite"

var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrQuotaExhausted = errors.New("quota exhausted")
	ErrEmptyResponse  = errors.New("no content returned from Gemini")
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is a Generator backed by the Gemini generate-content API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(150)
	model.SetTopP(0.9)
	model.SetTopK(40)
	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini: %T", part)
	}
	return string(text), nil
}

// classify maps provider errors onto ErrRateLimited and ErrQuotaExhausted so
// the retry loop can fail fast on them.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		if quotaMarker(apiErr.Body) || quotaMarker(apiErr.Message) {
			return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		}
		return err
	}

	if status.Code(err) == codes.ResourceExhausted {
		if quotaMarker(err.Error()) {
			return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		}
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	if quotaMarker(err.Error()) {
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	}
	return err
}

func quotaMarker(s string) bool {
	return strings.Contains(s, "quota") || strings.Contains(s, "RESOURCE_EXHAUSTED")
}

// fastFail reports errors that must not be retried.
func fastFail(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrQuotaExhausted)
}
