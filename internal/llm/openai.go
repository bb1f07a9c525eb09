package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o"

// OpenAI generates text through the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI provider. An API key is required; BaseURL is
// optional and supports OpenAI-compatible gateways.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate sends the prompt and returns the model's reply.
func (p *OpenAI) Generate(ctx context.Context, prompt string, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req)),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Response{
		Content:    resp.Choices[0].Message.Content,
		Provider:   "openai",
		Model:      p.model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// systemPrompt builds the system message from the request context.
func systemPrompt(req Request) string {
	language := req.Language
	if language == "" {
		language = "text"
	}
	style := req.Style
	if style == "" {
		style = "clean and readable"
	}

	return fmt.Sprintf(`You are an expert software engineer. Generate %s code that is:
- %s
- Well-documented with clear comments
- Following best practices and conventions
- Production-ready and maintainable
- Secure and safe

Focus on code generation only. Do not include explanations unless requested.`, language, style)
}
