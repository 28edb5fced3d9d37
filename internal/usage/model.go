package usage

import "time"

// Usage represents a user's quota consumption snapshot plus lifetime
// token/cost totals.
type Usage struct {
	Plan        string    `json:"plan"`
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	TotalTokens int64     `json:"totalTokens"`
	TotalCost   float64   `json:"totalCost"`
	ResetsAt    time.Time `json:"resetsAt"`
}
