package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GraphOpenAIClient implements ai.GraphAIClient against any
// OpenAI-compatible chat completion endpoint.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	extractionModel  string
	descriptionModel string

	baseURL string

	client *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration parameters for
// creating a new GraphOpenAIClient.
//
// ExtractionModel is used for structured extraction calls,
// DescriptionModel for plain completions. BaseURL may point at any
// OpenAI-compatible server; empty means the official API.
type NewGraphOpenAIClientParams struct {
	ExtractionModel  string
	DescriptionModel string

	BaseURL string
	APIKey  string
}

// NewGraphOpenAIClient creates and returns a new GraphOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		ExtractionModel:  "gpt-4o-mini",
//		DescriptionModel: "gpt-4o-mini",
//		APIKey:           os.Getenv("OPENAI_API_KEY"),
//	})
func NewGraphOpenAIClient(params NewGraphOpenAIClientParams) *GraphOpenAIClient {
	options := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(options...)

	return &GraphOpenAIClient{
		extractionModel:  params.ExtractionModel,
		descriptionModel: params.DescriptionModel,
		baseURL:          params.BaseURL,
		client:           &client,
	}
}
