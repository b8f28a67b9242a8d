package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient is the alternate provider, backed by the chat completions API.
type OpenAIClient struct {
	client openai.Client
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (o *OpenAIClient) Generate(ctx context.Context, model string, req Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	if req.Context != "" {
		messages = append(messages, openai.UserMessage(req.Context))
	}
	messages = append(messages, openai.UserMessage(req.Instruction))

	chatReq := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if req.MaxOutputTokens > 0 {
		chatReq.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.JSONOutput {
		chatReq.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	res, err := o.client.Chat.Completions.New(ctx, chatReq)
	if err != nil {
		return "", o.classify(model, err)
	}

	if len(res.Choices) == 0 {
		return "", &ProviderError{
			Kind:  ErrKindTransient,
			Model: model,
			Err:   fmt.Errorf("response contained no choices"),
		}
	}
	return res.Choices[0].Message.Content, nil
}

func (o *OpenAIClient) classify(model string, err error) *ProviderError {
	var apierr *openai.Error
	if !errors.As(err, &apierr) {
		return Classify(model, err)
	}

	perr := &ProviderError{Kind: ErrKindTransient, Model: model, Err: err}
	switch apierr.StatusCode {
	case http.StatusTooManyRequests:
		perr.Kind = ErrKindRateLimited
		if hint, ok := ParseRetryHint(apierr.Error()); ok {
			perr.RetryAfter = hint
		}
	case http.StatusNotFound:
		perr.Kind = ErrKindModelNotFound
	}
	return perr
}
