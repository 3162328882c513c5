// Package events defines the payloads carried on the analytics stream.
package events

import "time"

// SearchEvent records one ranking-proxy request. Produced by the search
// handler after the response is sent; consumed into the search_logs table.
type SearchEvent struct {
	Query       string    `json:"query"`
	Category    string    `json:"category"`
	Provider    string    `json:"provider"`
	ResultCount int       `json:"resultCount"`
	OccurredAt  time.Time `json:"occurredAt"`
}
