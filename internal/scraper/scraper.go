package scraper

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/phdigest/helpers"
	"sjsage522/phdigest/logger"
	"sjsage522/phdigest/pkg/errors"
)

// FetchFunc retrieves the raw page body for a URL
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// Scraper extracts the ranked launch listing from the Product Hunt homepage
type Scraper struct {
	BaseURL string
	Limit   int

	fetch FetchFunc
	log   *logger.Logger
}

// New creates a scraper for the given homepage URL, returning at most
// limit products per run. The timeout bounds the homepage fetch.
func New(baseURL string, limit int, timeout time.Duration) *Scraper {
	return &Scraper{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Limit:   limit,
		fetch:   helpers.NewBrowserFetcher(timeout),
		log:     logger.ForScraper(),
	}
}

// NewWithFetcher creates a scraper with a custom fetch function
func NewWithFetcher(baseURL string, limit int, fetch FetchFunc) *Scraper {
	return &Scraper{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Limit:   limit,
		fetch:   fetch,
		log:     logger.ForScraper(),
	}
}

// TopProducts fetches the homepage and returns up to Limit products in
// page order. Network failures surface as fetch errors, an absent
// listing structure as a parsing error; both abort the run.
func (s *Scraper) TopProducts(ctx context.Context) ([]Product, error) {
	s.log.Debug().Str("url", s.BaseURL).Msg("Fetching homepage")

	body, err := s.fetch(ctx, s.BaseURL)
	if err != nil {
		return nil, errors.NewFetch("scraper", "failed to fetch homepage", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParsing("scraper", "failed to parse homepage HTML", err)
	}

	sections := doc.Find(`section[data-test^="post-item-"]`)
	if sections.Length() == 0 {
		return nil, errors.NewParsing("scraper", "no product listing found; site layout may have changed", nil)
	}

	products := make([]Product, 0, s.Limit)
	sections.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(products) >= s.Limit {
			return false
		}
		p := s.parseSection(sel)
		if p == nil {
			// Entries without a resolvable name and link never make the digest
			s.log.Debug().Int("section", i).Msg("Skipping entry without name or link")
			return true
		}
		p.Rank = len(products) + 1
		products = append(products, *p)
		return true
	})

	s.log.Info().
		Int("sections", sections.Length()).
		Int("products", len(products)).
		Msg("Parsed product listing")

	return products, nil
}

// parseSection extracts a single product from its listing section.
// Returns nil when the section has no usable name or link.
func (s *Scraper) parseSection(sel *goquery.Selection) *Product {
	nameLink := sel.Find(`[data-test^="post-name-"] a`).First()
	if nameLink.Length() == 0 {
		nameLink = sel.Find(`a[data-test^="post-name-"]`).First()
	}

	name := strings.TrimSpace(nameLink.Text())
	href, _ := nameLink.Attr("href")
	href = strings.TrimSpace(href)
	if name == "" || href == "" {
		return nil
	}

	url := href
	if strings.HasPrefix(href, "/") {
		url = s.BaseURL + href
	}

	tagline := strings.TrimSpace(sel.Find(`span[class*="text-secondary"]`).First().Text())

	return &Product{
		Name:         name,
		Tagline:      tagline,
		URL:          url,
		ImageURL:     s.parseImage(sel),
		Votes:        s.parseVotes(sel),
		CommentCount: s.parseComments(sel),
		Topics:       s.parseTopics(sel),
	}
}

// parseImage reads the product thumbnail, preferring the first (higher
// quality) srcset entry over src
func (s *Scraper) parseImage(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}

	if srcset, ok := img.Attr("srcset"); ok {
		first := strings.Fields(strings.Split(srcset, ",")[0])
		if len(first) > 0 {
			return first[0]
		}
	}

	src, _ := img.Attr("src")
	return strings.TrimSpace(src)
}

// parseVotes reads the vote counter, defaulting to 0 when unparseable
func (s *Scraper) parseVotes(sel *goquery.Selection) int {
	voteText := sel.Find(`[data-test="vote-button"]`).First().Text()
	if votes := helpers.ParseCount(voteText); votes > 0 {
		return votes
	}

	// Layout fallback: last numeric button label in the section
	votes := 0
	sel.Find("button").Each(func(i int, b *goquery.Selection) {
		if n := helpers.ParseCount(b.Text()); n > 0 {
			votes = n
		}
	})
	return votes
}

// parseComments reads the first numeric button label outside the vote button
func (s *Scraper) parseComments(sel *goquery.Selection) int {
	comments := 0
	sel.Find("button").EachWithBreak(func(i int, b *goquery.Selection) bool {
		if v, ok := b.Attr("data-test"); ok && v == "vote-button" {
			return true
		}
		if n := helpers.ParseCount(b.Find("p").First().Text()); n > 0 {
			comments = n
			return false
		}
		return true
	})
	return comments
}

// parseTopics collects the category labels linked from the section
func (s *Scraper) parseTopics(sel *goquery.Selection) []string {
	var topics []string
	sel.Find(`a[href^="/topics/"]`).Each(func(i int, a *goquery.Selection) {
		if topic := strings.TrimSpace(a.Text()); topic != "" {
			topics = append(topics, topic)
		}
	})
	return topics
}
