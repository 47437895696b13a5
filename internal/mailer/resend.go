package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sjsage522/phdigest/helpers"
	"sjsage522/phdigest/internal/renderer"
	"sjsage522/phdigest/logger"
	"sjsage522/phdigest/pkg/errors"
)

const defaultBaseURL = "https://api.resend.com"

// Client submits digest emails through the Resend API
type Client struct {
	// BaseURL can be overridden for tests
	BaseURL string

	apiKey     string
	from       string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Resend client sending from the given address
func NewClient(apiKey, from string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.ForMailer(),
	}
}

// sendRequest is the Resend /emails payload
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// sendResponse is the success body; errorResponse the failure body
type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send submits one digest email and returns the provider's message id.
// A non-2xx response becomes a send error carrying the provider's
// status and message.
func (c *Client) Send(ctx context.Context, d renderer.Digest) (string, error) {
	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{d.Recipient.Email},
		Subject: d.Subject,
		HTML:    d.HTML,
		Text:    d.Text,
	})
	if err != nil {
		return "", errors.NewSend("mailer", "failed to encode request", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewSend("mailer", "failed to create request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewSend("mailer", "request failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewSend("mailer", "failed to read response body", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var provider errorResponse
		message := helpers.Truncate(string(body), 200)
		if json.Unmarshal(body, &provider) == nil && provider.Message != "" {
			message = provider.Message
		}
		return "", errors.NewSend("mailer",
			fmt.Sprintf("provider rejected email to %s: %s", d.Recipient.Email, message),
			resp.StatusCode, nil)
	}

	var sent sendResponse
	if err := json.Unmarshal(body, &sent); err != nil {
		return "", errors.NewSend("mailer", "malformed provider response", resp.StatusCode, err)
	}

	c.log.Info().
		Str("recipient", d.Recipient.Email).
		Str("email_id", sent.ID).
		Msg("Email sent")

	return sent.ID, nil
}
