// Package service contains the application's business-logic layer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"bridge-go/internal/config"
	"bridge-go/internal/fixture"
	"bridge-go/internal/model"
	"bridge-go/internal/repository"
	"bridge-go/pkg/gemini"
	"bridge-go/pkg/log"
)

// SearchService is the ranking proxy: it orders the service directory against
// a free-text query with a single remote completion call, degrading to a
// deterministic keyword matcher whenever the remote path cannot produce a
// valid shortlist.
type SearchService interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error)
}

type searchService struct {
	serviceRepo   repository.ServiceRepository
	completion    gemini.CompletionProvider
	hasCredential bool
	maxResults    int
}

// NewSearchService creates a new SearchService instance. hasCredential is
// false when no API key is configured, which routes every request to mock
// mode without attempting a remote call.
func NewSearchService(serviceRepo repository.ServiceRepository, completion gemini.CompletionProvider, cfg config.SearchConfig, hasCredential bool) SearchService {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &searchService{
		serviceRepo:   serviceRepo,
		completion:    completion,
		hasCredential: hasCredential,
		maxResults:    maxResults,
	}
}

// Search runs the full ranking flow. The only error it returns is a candidate
// fetch failure; every remote or parse failure is absorbed into a fallback
// result so the caller always gets a resources array.
func (s *searchService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	log.Infof("[SearchService] search request, query: %q, category: %q", req.Query, req.Category)

	candidates, err := s.fetchCandidates(req.Category)
	if err != nil {
		log.Errorf("[SearchService] failed to fetch candidates: %v", err)
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	if !s.hasCredential {
		log.Warnf("[SearchService] no API key configured, serving mock result for query %q", req.Query)
		return s.mockResult(req, candidates), nil
	}

	prompt := buildRankingPrompt(req, summarizeCandidates(candidates))
	raw, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		log.Errorf("[SearchService] remote ranking call failed, using fallback: %v", err)
		return s.fallbackResult(req, candidates), nil
	}

	names, err := parseNameArray(raw)
	if err != nil {
		log.Warnf("[SearchService] could not parse model output, using fallback: %v", err)
		return s.fallbackResult(req, candidates), nil
	}

	resources := s.mapNamesToRecords(names, candidates)
	if len(resources) == 0 {
		log.Warnf("[SearchService] ranked names matched no records, using fallback, names: %v", names)
		return s.fallbackResult(req, candidates), nil
	}

	log.Infof("[SearchService] ranked %d of %d candidates for query %q", len(resources), len(candidates), req.Query)
	return &model.SearchResult{
		Success:   true,
		Count:     len(resources),
		Resources: resources,
		Provider:  model.ProviderGemini,
		Query:     req.Query,
	}, nil
}

// fetchCandidates reads the candidate set, pre-filtered by exact category
// match when one is requested.
func (s *searchService) fetchCandidates(category string) ([]model.ServiceRecord, error) {
	if category != "" && category != "all" {
		return s.serviceRepo.FindByCategory(category)
	}
	return s.serviceRepo.FindAll()
}

// fallbackResult wraps the keyword matcher's output in the response envelope.
func (s *searchService) fallbackResult(req model.SearchRequest, candidates []model.ServiceRecord) *model.SearchResult {
	resources := fallbackMatch(req.Query, candidates, s.maxResults)
	return &model.SearchResult{
		Success:   true,
		Count:     len(resources),
		Resources: resources,
		Provider:  model.ProviderFallback,
		Query:     req.Query,
	}
}

// mockResult serves the no-credential path. It prefers real candidates run
// through the keyword matcher and falls back to the embedded fixture when the
// store is empty.
func (s *searchService) mockResult(req model.SearchRequest, candidates []model.ServiceRecord) *model.SearchResult {
	resources := fallbackMatch(req.Query, candidates, s.maxResults)
	if len(resources) == 0 {
		resources = fallbackMatch(req.Query, fixture.MockServices(), s.maxResults)
	}
	return &model.SearchResult{
		Success:   true,
		Count:     len(resources),
		Resources: resources,
		Provider:  model.ProviderMock,
		Query:     req.Query,
	}
}

// summarizeCandidates builds the flat one-line-per-record summary fed to the
// model.
func summarizeCandidates(candidates []model.ServiceRecord) string {
	var sb strings.Builder
	for _, c := range candidates {
		sb.WriteString(fmt.Sprintf("%s (%s): %s\n", c.Name, c.Category, c.Description))
	}
	return sb.String()
}

// buildRankingPrompt assembles the single prompt for the remote model.
func buildRankingPrompt(req model.SearchRequest, summary string) string {
	var sb strings.Builder

	if req.Location != nil {
		sb.WriteString(fmt.Sprintf("User is located at coordinates: %g, %g. ", req.Location.Lat, req.Location.Lng))
	} else {
		sb.WriteString("User is in New York City area. ")
	}
	if req.Category != "" && req.Category != "all" {
		sb.WriteString(fmt.Sprintf("Focus on %s services. ", req.Category))
	}
	if req.MaxDistance > 0 {
		sb.WriteString(fmt.Sprintf("Prioritize services within %g miles. ", req.MaxDistance))
	}

	sb.WriteString(fmt.Sprintf("\n\nA resident is looking for social services related to: %q.\n\n", req.Query))
	sb.WriteString("Available services:\n")
	sb.WriteString(summary)
	sb.WriteString("\nReturn ONLY a JSON array of the names of the 3 to 5 most relevant services, ")
	sb.WriteString("ordered by relevance. Use the exact names as listed above. ")
	sb.WriteString("No markdown formatting, no explanations.")
	return sb.String()
}

var (
	fenceMarkers = regexp.MustCompile("```(?:json)?\n?")
	// First [...] span in the text; the expected payload is a flat string
	// array, so the first closing bracket terminates it.
	arraySpan = regexp.MustCompile(`(?s)\[.*?\]`)
)

// cleanModelOutput recovers a parseable JSON array from a raw text blob. It
// strips code-fence markers, trims whitespace, and cuts the first [...] span
// out of any surrounding prose. Idempotent.
func cleanModelOutput(raw string) string {
	cleaned := fenceMarkers.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)
	if span := arraySpan.FindString(cleaned); span != "" {
		return span
	}
	return cleaned
}

// parseNameArray cleans and parses the model output into an ordered name
// list. Anything that is not a JSON array of strings is a parse failure.
func parseNameArray(raw string) ([]string, error) {
	cleaned := cleanModelOutput(raw)
	var names []string
	if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
		return nil, fmt.Errorf("model output is not a JSON string array: %w", err)
	}
	return names, nil
}

// mapNamesToRecords resolves ranked names back to full records by exact
// string equality, preserving rank order. Names with no match are dropped.
func (s *searchService) mapNamesToRecords(names []string, candidates []model.ServiceRecord) []model.ServiceRecord {
	byName := make(map[string]model.ServiceRecord, len(candidates))
	for _, c := range candidates {
		byName[c.Name] = c
	}

	resources := make([]model.ServiceRecord, 0, len(names))
	for _, name := range names {
		record, ok := byName[name]
		if !ok {
			log.Warnf("[SearchService] dropping ranked name with no matching record: %q", name)
			continue
		}
		resources = append(resources, record)
		if len(resources) == s.maxResults {
			break
		}
	}
	return resources
}

// keywordGroup maps query substrings to a category. Groups are tested in
// order and the first hit wins.
type keywordGroup struct {
	keywords []string
	category string
}

var keywordGroups = []keywordGroup{
	{[]string{"mental", "health", "therapy", "counseling", "depression", "anxiety"}, model.CategoryMentalHealth},
	{[]string{"food", "hunger", "meal", "pantry", "grocery"}, model.CategoryFood},
	{[]string{"housing", "shelter", "homeless", "eviction", "rent"}, model.CategoryHousing},
	{[]string{"legal", "lawyer", "immigration", "asylum", "visa", "deportation"}, model.CategoryLegal},
	{[]string{"job", "work", "employment", "career", "resume"}, model.CategoryEmployment},
	{[]string{"doctor", "medical", "clinic", "hospital", "dental"}, model.CategoryHealthcare},
	{[]string{"school", "ged", "education", "literacy", "college"}, model.CategoryEducation},
	{[]string{"english", "esl", "language class"}, model.CategoryLanguage},
	{[]string{"child", "daycare", "childcare", "after-school"}, model.CategoryChildcare},
}

// fallbackMatch is the deterministic substitute for remote ranking: a pure
// function of the query and candidate set. A keyword hit narrows candidates
// to one category; otherwise the whole set passes through. Candidate order is
// preserved, so it provides coverage, not relevance ordering.
func fallbackMatch(query string, candidates []model.ServiceRecord, max int) []model.ServiceRecord {
	queryLower := strings.ToLower(query)

	matched := candidates
	for _, group := range keywordGroups {
		if containsAny(queryLower, group.keywords) {
			matched = filterByCategory(candidates, group.category)
			if len(matched) == 0 {
				matched = candidates
			}
			break
		}
	}

	if len(matched) > max {
		matched = matched[:max]
	}
	return matched
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func filterByCategory(records []model.ServiceRecord, category string) []model.ServiceRecord {
	var filtered []model.ServiceRecord
	for _, r := range records {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
