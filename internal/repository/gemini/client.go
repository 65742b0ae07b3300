package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"phoneGuide/business/advisor"
	"phoneGuide/domain"
	"phoneGuide/pkg/config"

	"github.com/pobyzaarif/goshortcute"
	"google.golang.org/genai"
)

// User-facing failure messages, one per remote operation.
const (
	msgRecommendationsFailed = "Yapay zeka modelinden tavsiye alınamadı."
	msgSimilarFailed         = "Yapay zeka modelinden benzer modeller alınamadı."
	msgComparisonFailed      = "Yapay zeka modelinden karşılaştırma alınamadı."
)

var errNoImageData = errors.New("no image data found in the response")

var _ advisor.AIClient = (*Client)(nil)

// Client is the façade over the generative text/image service. Every call is a
// single request/response round trip; there is no retry or backoff.
type Client struct {
	models     *genai.Models
	textModel  string
	imageModel string
	timeout    time.Duration
}

func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		models:     client.Models,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		timeout:    cfg.Timeout,
	}, nil
}

// GenerateRecommendations asks the model for the 5 phones best matching prefs.
// The response is schema-constrained; transport, parse or schema failures all
// surface as a RecommendationError with no partial result.
func (c *Client) GenerateRecommendations(ctx context.Context, prefs domain.UserPreferences) ([]domain.PhoneRecommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.textModel,
		genai.Text(buildRecommendationPrompt(prefs)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationListSchema(),
			Temperature:      genai.Ptr[float32](0.5),
		},
	)
	if err != nil {
		return nil, domain.NewRecommendationError(msgRecommendationsFailed, err)
	}

	recs, err := decodeRecommendations(resp.Text())
	if err != nil {
		return nil, domain.NewRecommendationError(msgRecommendationsFailed, err)
	}

	return recs, nil
}

// GenerateSimilar asks for 3 alternatives to the reference phone, biased
// toward brand diversity. MatchScore here means similarity, not preference fit.
func (c *Client) GenerateSimilar(ctx context.Context, phone domain.PhoneRecommendation) ([]domain.PhoneRecommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.textModel,
		genai.Text(buildSimilarPrompt(phone)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationListSchema(),
			Temperature:      genai.Ptr[float32](0.6),
		},
	)
	if err != nil {
		return nil, domain.NewRecommendationError(msgSimilarFailed, err)
	}

	recs, err := decodeRecommendations(resp.Text())
	if err != nil {
		return nil, domain.NewRecommendationError(msgSimilarFailed, err)
	}

	return recs, nil
}

// CompareFeature returns the model's free-text comparison of one named spec
// across the given phones, formatted as '* '-delimited bullet lines.
func (c *Client) CompareFeature(ctx context.Context, featureTitle string, values []domain.FeatureValue) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.textModel,
		genai.Text(buildComparePrompt(featureTitle, values)),
		nil,
	)
	if err != nil {
		return "", domain.NewRecommendationError(msgComparisonFailed, err)
	}

	return resp.Text(), nil
}

// GenerateImage returns a base64 data URL for a product photograph of the
// given phone model, or an error when the response carries no inline image.
// Callers substitute the deterministic placeholder on any failure.
func (c *Client) GenerateImage(ctx context.Context, phoneModel string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.imageModel,
		genai.Text(buildImagePrompt(phoneModel)),
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{AspectRatio: "16:9"},
		},
	)
	if err != nil {
		return "", fmt.Errorf("image generation failed for %q: %w", phoneModel, err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				encoded := goshortcute.StringtoBase64Encode(string(part.InlineData.Data))
				return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
			}
		}
	}

	return "", errNoImageData
}

// decodeRecommendations parses the schema-constrained response body. The model
// is instructed to pre-sort by matchScore but that is not guaranteed, so the
// list is re-sorted here.
func decodeRecommendations(body string) ([]domain.PhoneRecommendation, error) {
	var recs []domain.PhoneRecommendation
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &recs); err != nil {
		return nil, fmt.Errorf("response does not match recommendation schema: %w", err)
	}

	domain.SortByMatchScore(recs)
	return recs, nil
}
