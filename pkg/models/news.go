package models

import "time"

// NewsItem is a single market news article from an RSS feed.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Symbols     []string  `json:"symbols,omitempty"`
}
