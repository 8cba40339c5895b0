package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
)

const inferenceTimeout = 120 * time.Second

// InferenceService wraps the generative inference provider: schema-constrained
// text generation and text embedding.
type InferenceService struct {
	client         *resty.Client
	baseURL        string
	apiKey         string
	model          string
	embeddingModel string
	dimensions     int
}

// NewInferenceService creates a new InferenceService.
func NewInferenceService(infCfg *config.InferenceConfig, embCfg *config.EmbeddingConfig) *InferenceService {
	client := resty.New()
	client.SetTimeout(inferenceTimeout)

	return &InferenceService{
		client:         client,
		baseURL:        strings.TrimSuffix(infCfg.BaseURL, "/"),
		apiKey:         infCfg.APIKey,
		model:          infCfg.Model,
		embeddingModel: embCfg.Model,
		dimensions:     embCfg.Dimensions,
	}
}

// GenerateResult carries the parsed structured output plus the token usage
// reported by the provider for that call.
type GenerateResult struct {
	RawJSON    string
	TokensUsed int
}

// Provider wire shapes.
type generateRequest struct {
	SystemInstruction *contentBlock  `json:"systemInstruction,omitempty"`
	Contents          []contentBlock `json:"contents"`
	GenerationConfig  generateConfig `json:"generationConfig"`
}

type contentBlock struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateConfig struct {
	ResponseMIMEType string                 `json:"responseMimeType"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
	Temperature      float64                `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *inferenceError `json:"error,omitempty"`
}

type inferenceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type embedRequest struct {
	Content              contentBlock `json:"content"`
	OutputDimensionality int          `json:"outputDimensionality"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
	Error *inferenceError `json:"error,omitempty"`
}

// GenerateStructured sends one schema-constrained generation call and decodes
// the returned JSON into out. A response the schema-bound decoder cannot parse
// is reported as ErrSchemaParse; callers decide whether to retry.
func (s *InferenceService) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}, out interface{}) (*GenerateResult, error) {
	req := generateRequest{
		Contents: []contentBlock{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: generateConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
			Temperature:      0.2,
		},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &contentBlock{Parts: []part{{Text: systemPrompt}}}
	}

	var result generateResponse
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", s.apiKey).
		SetBody(req).
		SetResult(&result).
		ForceContentType("application/json").
		Post(endpoint)
	if err != nil {
		return nil, domain.NewRetryable(domain.ErrExternalService, err, "inference request failed")
	}
	if code := resp.StatusCode(); code != 200 {
		msg := fmt.Sprintf("HTTP %d", code)
		if result.Error != nil {
			msg = fmt.Sprintf("HTTP %d: %s", code, result.Error.Message)
		}
		if code == 429 || code >= 500 {
			return nil, domain.NewRetryable(domain.ErrExternalService, fmt.Errorf("%s", msg), "inference provider is unavailable")
		}
		return nil, domain.NewError(domain.ErrExternalService, "inference request rejected: %s", msg)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, domain.NewRetryable(domain.ErrSchemaParse, nil, "inference provider returned no candidates")
	}

	raw := result.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return nil, domain.NewRetryable(domain.ErrSchemaParse, err, "structured response does not match the declared schema")
	}

	return &GenerateResult{
		RawJSON:    raw,
		TokensUsed: result.UsageMetadata.TotalTokenCount,
	}, nil
}

// Embed produces a fixed-dimension embedding for text. The dimensionality is
// requested explicitly so the vector fits the index regardless of the model's
// native size.
func (s *InferenceService) Embed(ctx context.Context, text string) ([]float64, error) {
	req := embedRequest{
		Content:              contentBlock{Parts: []part{{Text: text}}},
		OutputDimensionality: s.dimensions,
	}

	var result embedResponse
	endpoint := fmt.Sprintf("%s/models/%s:embedContent", s.baseURL, s.embeddingModel)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", s.apiKey).
		SetBody(req).
		SetResult(&result).
		ForceContentType("application/json").
		Post(endpoint)
	if err != nil {
		return nil, domain.NewRetryable(domain.ErrExternalService, err, "embedding request failed")
	}
	if code := resp.StatusCode(); code != 200 {
		msg := fmt.Sprintf("HTTP %d", code)
		if result.Error != nil {
			msg = fmt.Sprintf("HTTP %d: %s", code, result.Error.Message)
		}
		if code == 429 || code >= 500 {
			return nil, domain.NewRetryable(domain.ErrExternalService, fmt.Errorf("%s", msg), "embedding provider is unavailable")
		}
		return nil, domain.NewError(domain.ErrExternalService, "embedding request rejected: %s", msg)
	}

	if len(result.Embedding.Values) == 0 {
		return nil, domain.NewRetryable(domain.ErrExternalService, nil, "embedding provider returned an empty vector")
	}
	if len(result.Embedding.Values) != s.dimensions {
		return nil, domain.NewError(domain.ErrExternalService,
			"embedding provider returned %d dimensions, expected %d", len(result.Embedding.Values), s.dimensions)
	}
	return result.Embedding.Values, nil
}
