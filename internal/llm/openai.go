package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Known OpenAI-compatible endpoints. Groq and Gemini both expose the chat
// completions wire format, so one client type covers all three.
const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
)

const systemPrompt = "あなたは天気予報のコメント編集者です。渡された天気コメントを、予報内容と矛盾しない自然な日本語に磨き上げてください。コメント本文のみを返し、説明は書かないでください。"

// OpenAICompatible is a chat-completions provider for OpenAI, Groq, or
// Gemini endpoints.
type OpenAICompatible struct {
	name   string
	client openai.Client
	opts   Options
}

// NewOpenAI creates a provider against the OpenAI API.
func NewOpenAI(apiKey string, opts Options) (*OpenAICompatible, error) {
	return newCompatible("openai", apiKey, "", opts.withDefaults("gpt-4o-mini"))
}

// NewGroq creates a provider against the Groq OpenAI-compatible API.
func NewGroq(apiKey string, opts Options) (*OpenAICompatible, error) {
	return newCompatible("groq", apiKey, groqBaseURL, opts.withDefaults("llama-3.3-70b-versatile"))
}

// NewGemini creates a provider against the Gemini OpenAI-compatible API.
func NewGemini(apiKey string, opts Options) (*OpenAICompatible, error) {
	return newCompatible("gemini", apiKey, geminiBaseURL, opts.withDefaults("gemini-2.0-flash"))
}

func newCompatible(name, apiKey, baseURL string, opts Options) (*OpenAICompatible, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key not set", name)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompatible{
		name:   name,
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}, nil
}

func (c *OpenAICompatible) Name() string { return c.name }

// Complete sends the prompt and returns the first choice's text.
func (c *OpenAICompatible) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(int64(c.opts.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
