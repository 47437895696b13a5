package scraper

// Product represents one scraped launch entry
type Product struct {
	Rank         int      `json:"rank"`
	Name         string   `json:"name"`
	Tagline      string   `json:"tagline"`
	URL          string   `json:"url"`
	ImageURL     string   `json:"image_url,omitempty"`
	Votes        int      `json:"votes"`
	CommentCount int      `json:"comment_count"`
	Topics       []string `json:"topics,omitempty"`

	// Populated by the summarizer; falls back to Tagline on failure
	Summary      string `json:"summary,omitempty"`
	WhyItMatters string `json:"why_it_matters,omitempty"`
}
