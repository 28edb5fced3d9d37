// Package search defines the web-search capability used for fact-checking
// article and factual content.
package search

import "context"

// Result is a single search hit.
type Result struct {
	Title   string
	Snippet string
	URL     string
}

// Client performs a web search and returns ranked results.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}
