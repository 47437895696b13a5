package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/phdigest/config"
	"sjsage522/phdigest/internal/renderer"
	"sjsage522/phdigest/internal/scraper"
	"sjsage522/phdigest/pkg/errors"
)

// fakeScraper returns canned products or a canned error
type fakeScraper struct {
	products []scraper.Product
	err      error
	calls    int
}

func (f *fakeScraper) TopProducts(ctx context.Context) ([]scraper.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Hand out a copy; the pipeline owns the slice for the run
	out := make([]scraper.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

// fakeSummarizer enriches or falls back depending on fail
type fakeSummarizer struct {
	fail  bool
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, products []scraper.Product) int {
	f.calls++
	failed := 0
	for i := range products {
		if f.fail {
			products[i].Summary = products[i].Tagline
			failed++
			continue
		}
		products[i].Summary = "AI summary of " + products[i].Name
	}
	return failed
}

// fakeSender records every digest it is asked to send
type fakeSender struct {
	sent    []renderer.Digest
	failFor map[string]error
}

func (f *fakeSender) Send(ctx context.Context, d renderer.Digest) (string, error) {
	if err, ok := f.failFor[d.Recipient.Email]; ok {
		return "", err
	}
	f.sent = append(f.sent, d)
	return "email-id", nil
}

func testConfig(recipients ...config.Recipient) *config.Config {
	return &config.Config{
		ProductHuntURL: "https://www.producthunt.com",
		ProductCount:   3,
		GeminiModel:    "gemini-2.0-flash",
		SubjectPrefix:  "Product Hunt Daily",
		FromEmail:      "digest@example.com",
		Recipients:     recipients,
		HTTPTimeout:    5 * time.Second,
	}
}

func testProducts() []scraper.Product {
	return []scraper.Product{
		{Rank: 1, Name: "Acme AI", Tagline: "Your AI copilot", URL: "https://ph/acme", Votes: 120},
		{Rank: 2, Name: "ShipFast", Tagline: "Deploy in seconds", URL: "https://ph/shipfast", Votes: 85},
		{Rank: 3, Name: "DataLoom", Tagline: "Weave your data", URL: "https://ph/dataloom", Votes: 40},
	}
}

func newTestPipeline(cfg *config.Config, sc *fakeScraper, sm *fakeSummarizer, sd *fakeSender) *Pipeline {
	p := New(cfg, sc, sm, sd)
	p.now = func() time.Time { return time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC) }
	return p
}

func TestRunSendsOneDigestPerRecipient(t *testing.T) {
	cfg := testConfig(
		config.Recipient{Name: "Jane", Email: "jane@example.com"},
		config.Recipient{Name: "Ken", Email: "ken@example.com"},
		config.Recipient{Email: "anonymous@example.com"},
	)
	sc := &fakeScraper{products: testProducts()}
	sm := &fakeSummarizer{}
	sd := &fakeSender{}

	err := newTestPipeline(cfg, sc, sm, sd).Run(context.Background())
	assert.NoError(t, err)

	// Exactly R send attempts, each with exactly N product entries
	assert.Len(t, sd.sent, 3)
	for _, d := range sd.sent {
		assert.Contains(t, d.HTML, "Acme AI")
		assert.Contains(t, d.HTML, "ShipFast")
		assert.Contains(t, d.HTML, "DataLoom")
		assert.Equal(t, "Product Hunt Daily - 2026-08-25", d.Subject)
	}

	// Personalized greeting per recipient
	assert.Contains(t, sd.sent[0].HTML, "Good morning, Jane!")
	assert.Contains(t, sd.sent[1].HTML, "Good morning, Ken!")
	assert.Contains(t, sd.sent[2].HTML, "Good morning!")
}

func TestRunAbortsOnFetchError(t *testing.T) {
	cfg := testConfig(config.Recipient{Name: "Jane", Email: "jane@example.com"})
	sc := &fakeScraper{err: errors.NewFetch("scraper", "unexpected status code: 503", nil)}
	sm := &fakeSummarizer{}
	sd := &fakeSender{}

	err := newTestPipeline(cfg, sc, sm, sd).Run(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.IsTerminal(err))

	// Fail-fast: no partial digest is ever sent
	assert.Equal(t, 0, sm.calls)
	assert.Empty(t, sd.sent)
}

func TestRunContinuesOnSummaryFailure(t *testing.T) {
	cfg := testConfig(config.Recipient{Name: "Jane", Email: "jane@example.com"})
	sc := &fakeScraper{products: testProducts()}
	sm := &fakeSummarizer{fail: true}
	sd := &fakeSender{}

	err := newTestPipeline(cfg, sc, sm, sd).Run(context.Background())
	assert.NoError(t, err)

	// Degraded but complete digest still goes out with taglines
	assert.Len(t, sd.sent, 1)
	assert.Contains(t, sd.sent[0].HTML, "Your AI copilot")
	assert.Contains(t, sd.sent[0].HTML, "Deploy in seconds")
}

func TestRunAttemptsAllRecipientsOnSendFailure(t *testing.T) {
	cfg := testConfig(
		config.Recipient{Name: "Jane", Email: "jane@example.com"},
		config.Recipient{Name: "Ken", Email: "ken@example.com"},
	)
	sc := &fakeScraper{products: testProducts()}
	sm := &fakeSummarizer{}
	sendErr := errors.NewSend("mailer", "provider rejected email", 422, nil)
	sd := &fakeSender{failFor: map[string]error{"jane@example.com": sendErr}}

	err := newTestPipeline(cfg, sc, sm, sd).Run(context.Background())

	// The failure surfaces as the run error, but the other recipient
	// still got their digest
	assert.Error(t, err)
	assert.True(t, errors.IsTerminal(err))
	assert.Len(t, sd.sent, 1)
	assert.Equal(t, "ken@example.com", sd.sent[0].Recipient.Email)
}

func TestRunNoProducts(t *testing.T) {
	cfg := testConfig(config.Recipient{Name: "Jane", Email: "jane@example.com"})
	sc := &fakeScraper{products: nil}
	sm := &fakeSummarizer{}
	sd := &fakeSender{}

	err := newTestPipeline(cfg, sc, sm, sd).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, sm.calls)
	assert.Empty(t, sd.sent)
}
