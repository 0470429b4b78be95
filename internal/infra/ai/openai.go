package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lumiere/internal/usecase"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// 空応答
var ErrEmptyCompletion = errors.New("ai returned empty response")

// OpenAICompleter は Chat Completions を JSON schema 付きで呼ぶ
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// baseURL は空なら OpenAI 本家（Azure / 互換APIのときだけ指定）
func NewOpenAICompleter(apiKey string, baseURL string, model string, opts ...option.RequestOption) *OpenAICompleter {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	client := openai.NewClient(reqOpts...)
	return &OpenAICompleter{client: &client, model: model}
}

func (c *OpenAICompleter) CompleteJSON(ctx context.Context, req usecase.CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0.7),
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
