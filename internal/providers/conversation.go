package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultConversationModel = "gpt-4o-mini"

// ConversationConfig configures ConversationalReply.
type ConversationConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ConversationalReply answers free text with a single chat completion.
type ConversationalReply struct {
	apiKey string
	model  string
	client openai.Client
}

func NewConversationalReply(cfg ConversationConfig, httpClient *http.Client) *ConversationalReply {
	if cfg.Model == "" {
		cfg.Model = DefaultConversationModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &ConversationalReply{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

func (c *ConversationalReply) Name() string { return NameConversation }

func (c *ConversationalReply) Invoke(ctx context.Context, query string) ([]string, error) {
	if c.apiKey == "" {
		return nil, newError(NameConversation, query, ErrAuthConfigMissing, nil)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(query),
		},
	})
	if err != nil {
		return nil, classifyCompletionError(query, err)
	}

	if len(resp.Choices) == 0 {
		return nil, newError(NameConversation, query, ErrUpstreamParseFailed, fmt.Errorf("completion has no choices"))
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, newError(NameConversation, query, ErrUpstreamParseFailed, fmt.Errorf("completion is empty"))
	}
	return []string{content}, nil
}

func classifyCompletionError(query string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		e := newError(NameConversation, query, ErrUpstreamRequestFailed, err)
		e.Status = apiErr.StatusCode
		return e
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(NameConversation, query, ErrUpstreamRequestFailed, err)
	}
	return newError(NameConversation, query, ErrUpstreamParseFailed, err)
}
