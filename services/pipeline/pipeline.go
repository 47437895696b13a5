package pipeline

import (
	"context"
	"time"

	"sjsage522/phdigest/config"
	"sjsage522/phdigest/helpers"
	"sjsage522/phdigest/internal/renderer"
	"sjsage522/phdigest/internal/scraper"
	"sjsage522/phdigest/logger"
)

// Scraper fetches the ranked product listing
type Scraper interface {
	TopProducts(ctx context.Context) ([]scraper.Product, error)
}

// Summarizer enriches products in place and returns the fallback count
type Summarizer interface {
	Summarize(ctx context.Context, products []scraper.Product) int
}

// Sender submits one rendered digest and returns the provider's id
type Sender interface {
	Send(ctx context.Context, d renderer.Digest) (string, error)
}

// Pipeline drives one scrape-summarize-render-send run
type Pipeline struct {
	cfg        *config.Config
	scraper    Scraper
	summarizer Summarizer
	sender     Sender
	log        *logger.Logger

	// now is swappable so renders are reproducible in tests
	now func() time.Time
}

// New creates a pipeline with the given stage implementations
func New(cfg *config.Config, sc Scraper, sm Summarizer, sd Sender) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		scraper:    sc,
		summarizer: sm,
		sender:     sd,
		log:        logger.ForPipeline(),
		now:        time.Now,
	}
}

// Run executes one digest run. Fetch and parse failures are terminal
// and abort before any email is attempted; summarization failures
// degrade individual entries to their taglines; every recipient is
// attempted even when an earlier send fails, and the first send error
// is returned afterwards.
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.Info().
		Int("product_count", p.cfg.ProductCount).
		Str("url", p.cfg.ProductHuntURL).
		Msg("Fetching top products")

	products, err := p.scraper.TopProducts(ctx)
	if err != nil {
		return err
	}

	if len(products) == 0 {
		p.log.Warn().Msg("No products found, nothing to send")
		return nil
	}

	for _, prod := range products {
		p.log.Info().
			Int("rank", prod.Rank).
			Str("name", prod.Name).
			Int("votes", prod.Votes).
			Str("tagline", helpers.Truncate(prod.Tagline, 50)).
			Msg("Found product")
	}

	p.log.Info().
		Str("model", p.cfg.GeminiModel).
		Msg("Generating summaries")

	if failed := p.summarizer.Summarize(ctx, products); failed > 0 {
		p.log.Warn().
			Int("failed", failed).
			Int("total", len(products)).
			Msg("Some summaries fell back to the raw tagline")
	}

	return p.sendToRecipients(ctx, products)
}

// sendToRecipients renders a personalized digest per recipient and
// submits them one by one
func (p *Pipeline) sendToRecipients(ctx context.Context, products []scraper.Product) error {
	date := p.now()
	sent := 0
	var firstErr error

	for _, recipient := range p.cfg.Recipients {
		digest, err := renderer.RenderDigest(products, recipient, p.cfg.SubjectPrefix, date)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			p.log.Error().Err(err).Str("recipient", recipient.Email).Msg("Failed to render digest")
			continue
		}

		id, err := p.sender.Send(ctx, digest)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			p.log.Error().Err(err).Str("recipient", recipient.Email).Msg("Failed to send digest")
			continue
		}

		sent++
		p.log.Info().
			Str("recipient", recipient.Email).
			Str("email_id", id).
			Msg("Digest delivered")
	}

	p.log.Info().
		Int("sent", sent).
		Int("failed", len(p.cfg.Recipients)-sent).
		Msg("Run finished")

	return firstErr
}
