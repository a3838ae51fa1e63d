package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
)

// OpenAIClient implements ai.Client against an OpenAI-compatible chat API.
//
// Create one with NewOpenAIClient.
type OpenAIClient struct {
	proposerModel string
	criticModel   string

	chatURL string
	chatKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewOpenAIClientParams configures an OpenAIClient.
//
// ProposerModel is used for free-form generation, CriticModel for
// structured-output calls. ChatURL may point at any OpenAI-compatible
// endpoint; empty means the public API.
type NewOpenAIClientParams struct {
	ProposerModel string
	CriticModel   string

	ChatURL string
	ChatKey string
}

// NewOpenAIClient creates a collaborator client backed by the OpenAI chat
// completion API.
//
// Example:
//
//	client := openai.NewOpenAIClient(openai.NewOpenAIClientParams{
//		ProposerModel: "gpt-4o-mini",
//		CriticModel:   "gpt-4o-mini",
//		ChatKey:       os.Getenv("OPENAI_API_KEY"),
//	})
func NewOpenAIClient(params NewOpenAIClientParams) *OpenAIClient {
	return &OpenAIClient{
		proposerModel: params.ProposerModel,
		criticModel:   params.CriticModel,

		chatURL: params.ChatURL,
		chatKey: params.ChatKey,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient: newOpenaiClient(params.ChatURL, params.ChatKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
