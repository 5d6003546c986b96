package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nena/internal/providers"
	"nena/internal/structures"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const defaultTemperature = 0.7

// OpenAI generates text through an OpenAI-compatible chat completions API.
type OpenAI struct {
	client  oai.Client
	model   string
	timeout time.Duration
	breaker *Breaker
}

func NewOpenAI(conf *structures.GenerationConfig, logger providers.Logger) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(conf.APIKey)}
	if conf.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(conf.BaseURL))
	}
	if conf.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: conf.Timeout}))
	}
	return &OpenAI{
		client:  oai.NewClient(opts...),
		model:   conf.Model,
		timeout: conf.Timeout,
		breaker: NewBreaker(BreakerConfig{
			Name:         "generation:" + conf.Model,
			MaxFailures:  conf.MaxFailures,
			ResetTimeout: conf.ResetTimeout,
			HalfOpenMax:  conf.HalfOpenRequests,
		}, logger),
	}
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var out string
	err := o.breaker.Execute(func() error {
		resp, err := o.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
			Model:       shared.ChatModel(o.model),
			Messages:    []oai.ChatCompletionMessageParamUnion{oai.UserMessage(prompt)},
			Temperature: param.NewOpt(defaultTemperature),
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyResponse
		}
		out = strings.TrimSpace(resp.Choices[0].Message.Content)
		if out == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (o *OpenAI) State() State {
	return o.breaker.State()
}
