package ollama

import (
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// GraphOllamaClient implements ai.GraphAIClient against a locally or
// remotely hosted Ollama server.
type GraphOllamaClient struct {
	extractionModel  string
	descriptionModel string

	client *api.Client
}

// NewGraphOllamaClientParams contains configuration options for creating
// a new GraphOllamaClient.
type NewGraphOllamaClientParams struct {
	ExtractionModel  string
	DescriptionModel string

	BaseURL string
	APIKey  string
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewGraphOllamaClient creates a new Ollama-based AI client. It
// connects to the Ollama server at the given BaseURL (or the default
// local server if empty).
func NewGraphOllamaClient(params NewGraphOllamaClientParams) (*GraphOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := http.DefaultClient
	if params.APIKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.APIKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	var client *api.Client
	if u != nil {
		client = api.NewClient(u, httpClient)
	} else {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	return &GraphOllamaClient{
		extractionModel:  params.ExtractionModel,
		descriptionModel: params.DescriptionModel,
		client:           client,
	}, nil
}
