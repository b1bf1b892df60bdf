package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultChatModelName is used when a chat request does not name a model.
	DefaultChatModelName = "gemini-1.5-flash-latest"

	// lightModelName is the fixed lighter-weight model used for title
	// generation and document summaries.
	lightModelName = "gemini-1.5-flash-8b"

	titlePromptPrefix    = "Summarize this into a 3-word title: "
	titleMaxOutputTokens = int32(15)
)

// CompletionOptions carries the optional generation limits of a
// completion request. Nil fields leave the provider defaults in place.
type CompletionOptions struct {
	MaxTokens   *int32
	Temperature *float32
}

// Completer is the contract for the external text-generation API. It is
// a black box: calls may be slow and may fail, and are never retried.
type Completer interface {
	Complete(ctx context.Context, model, prompt string, opts *CompletionOptions) (string, error)
	GenerateTitle(ctx context.Context, message string) (string, error)
}

type LLMService struct {
	client *genai.Client
}

func NewLLMService(ctx context.Context, apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// Complete submits a single prompt to the named model and returns the
// generated text. Provider failures are surfaced as ErrUpstream with
// the provider's message attached.
func (s *LLMService) Complete(ctx context.Context, modelName, prompt string, opts *CompletionOptions) (string, error) {
	model := s.client.GenerativeModel(modelName)
	if opts != nil {
		model.GenerationConfig = genai.GenerationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from model %s", ErrUpstream, modelName)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Model response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("%w: non-text response from model %s", ErrUpstream, modelName)
	}
	return responseText.String(), nil
}

// GenerateTitle asks the lighter-weight model for a short thread title,
// capped at a few tokens, and strips surrounding quote characters.
func (s *LLMService) GenerateTitle(ctx context.Context, message string) (string, error) {
	maxTokens := titleMaxOutputTokens
	raw, err := s.Complete(ctx, lightModelName, titlePromptPrefix+message, &CompletionOptions{MaxTokens: &maxTokens})
	if err != nil {
		return "", err
	}
	return cleanTitle(raw), nil
}

// cleanTitle normalizes a model-generated title: trailing newline from
// the completion goes, and so do quote characters the model tends to
// wrap short answers in.
func cleanTitle(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), "\"'")
}
