package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sjsage522/phdigest/helpers"
	"sjsage522/phdigest/internal/scraper"
	"sjsage522/phdigest/logger"
	"sjsage522/phdigest/pkg/errors"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// systemInstruction steers the model towards short newsletter copy
const systemInstruction = `You are a tech product analyst writing a daily launch newsletter.

For the product you receive (name, tagline, categories), respond with JSON:
{"summary": "...", "why_it_matters": "..."}

- "summary": 1-2 sentences on what the product does and its key value proposition
- "why_it_matters": one sentence on who benefits

Be concise and informative. Avoid marketing fluff. Keep the whole response under 80 words.`

// Client calls the Gemini generateContent API, one request per product
type Client struct {
	// BaseURL can be overridden for tests
	BaseURL string

	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Gemini client for the given model
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.ForSummarizer(),
	}
}

// Request/response shapes for the generateContent endpoint

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type productSummary struct {
	Summary      string `json:"summary"`
	WhyItMatters string `json:"why_it_matters"`
}

// Summarize enriches each product with an AI-generated summary. A
// failed call leaves that product with its tagline as the summary and
// the run continues; the returned count is the number of fallbacks.
func (c *Client) Summarize(ctx context.Context, products []scraper.Product) int {
	failed := 0
	for i := range products {
		p := &products[i]
		if err := c.summarizeProduct(ctx, p); err != nil {
			failed++
			p.Summary = p.Tagline
			p.WhyItMatters = ""
			c.log.Warn().
				Err(err).
				Str("product", p.Name).
				Msg("Summarization failed, falling back to tagline")
			continue
		}
		c.log.Debug().
			Str("product", p.Name).
			Str("summary", helpers.Truncate(p.Summary, 80)).
			Msg("Summarized product")
	}
	return failed
}

// summarizeProduct makes exactly one generateContent attempt for p and
// populates its summary fields on success
func (c *Client) summarizeProduct(ctx context.Context, p *scraper.Product) error {
	prompt := fmt.Sprintf("Product name: %s\nTagline: %s", p.Name, p.Tagline)
	if len(p.Topics) > 0 {
		prompt += "\nCategories: " + strings.Join(p.Topics, ", ")
	}

	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.7,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return errors.NewSummary("summarizer", "failed to encode request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewSummary("summarizer", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewSummary("summarizer", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewSummary("summarizer", "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.NewSummary("summarizer",
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, helpers.Truncate(string(body), 200)), nil)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return errors.NewSummary("summarizer", "malformed response", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return errors.NewSummary("summarizer", "response contained no candidates", nil)
	}

	var summary productSummary
	text := genResp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return errors.NewSummary("summarizer", "candidate text is not valid JSON", err)
	}
	if summary.Summary == "" {
		return errors.NewSummary("summarizer", "response contained no summary", nil)
	}

	p.Summary = summary.Summary
	p.WhyItMatters = summary.WhyItMatters
	return nil
}
