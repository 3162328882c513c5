package model

// Provider tags identifying which path produced a search result.
const (
	ProviderGemini   = "gemini"   // remote ranking succeeded
	ProviderFallback = "fallback" // remote attempted, keyword matcher substituted
	ProviderMock     = "mock"     // no API key configured, local data only
)

// Location is an optional coordinate pair supplied by the client.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query       string    `json:"query" binding:"required"`
	Category    string    `json:"category"`
	Location    *Location `json:"location,omitempty"`
	MaxDistance float64   `json:"maxDistance,omitempty"`
}

// SearchResult is the uniform response envelope for the ranking proxy.
// Every path, including total remote failure, produces one of these.
type SearchResult struct {
	Success   bool            `json:"success"`
	Count     int             `json:"count"`
	Resources []ServiceRecord `json:"resources"`
	Provider  string          `json:"provider"`
	Query     string          `json:"query,omitempty"`
}
