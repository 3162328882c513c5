package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"bridge-go/internal/config"
	"bridge-go/internal/model"
	"bridge-go/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// fakeServiceRepo serves a fixed candidate set.
type fakeServiceRepo struct {
	records []model.ServiceRecord
	err     error
}

func (f *fakeServiceRepo) Create(record *model.ServiceRecord) error { return nil }
func (f *fakeServiceRepo) Update(record *model.ServiceRecord) error { return nil }
func (f *fakeServiceRepo) Delete(id uint) error                     { return nil }
func (f *fakeServiceRepo) Count() (int64, error)                    { return int64(len(f.records)), nil }

func (f *fakeServiceRepo) FindByID(id uint) (*model.ServiceRecord, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeServiceRepo) FindByName(name string) (*model.ServiceRecord, error) {
	for i := range f.records {
		if f.records[i].Name == name {
			return &f.records[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeServiceRepo) FindAll() ([]model.ServiceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeServiceRepo) FindByCategory(category string) ([]model.ServiceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var filtered []model.ServiceRecord
	for _, r := range f.records {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// fakeCompletion replays a canned model response.
type fakeCompletion struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testCatalog() []model.ServiceRecord {
	return []model.ServiceRecord{
		{ID: 1, Name: "NYC Well - Mental Health Support", Category: model.CategoryMentalHealth, Description: "24/7 crisis counseling"},
		{ID: 2, Name: "NAMI NYC", Category: model.CategoryMentalHealth, Description: "Peer support groups"},
		{ID: 3, Name: "Food Bank For New York City", Category: model.CategoryFood, Description: "Free food distribution"},
		{ID: 4, Name: "The Legal Aid Society", Category: model.CategoryLegal, Description: "Free legal representation"},
		{ID: 5, Name: "Coalition for the Homeless", Category: model.CategoryHousing, Description: "Emergency shelter placement"},
		{ID: 6, Name: "CUNY Adult Literacy Program", Category: model.CategoryEducation, Description: "Free GED classes"},
		{ID: 7, Name: "NYC Child Care Connect", Category: model.CategoryChildcare, Description: "Subsidized daycare referrals"},
	}
}

func newTestService(repo *fakeServiceRepo, completion *fakeCompletion, hasCredential bool) SearchService {
	return NewSearchService(repo, completion, config.SearchConfig{MaxResults: 5}, hasCredential)
}

func TestSearch_RankedResult(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `["NYC Well - Mental Health Support", "NAMI NYC"]`}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "I feel anxious all the time"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.ProviderGemini, result.Provider)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Resources, 2)
	assert.Equal(t, "NYC Well - Mental Health Support", result.Resources[0].Name)
	assert.Equal(t, "NAMI NYC", result.Resources[1].Name)
}

func TestSearch_FencedOutputIsCleaned(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: "```json\n[\"The Legal Aid Society\"]\n```"}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "deportation help"})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderGemini, result.Provider)
	require.Len(t, result.Resources, 1)
	assert.Equal(t, "The Legal Aid Society", result.Resources[0].Name)
}

func TestSearch_ProseAroundArrayIsCleaned(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `Here are the most relevant services: ["NAMI NYC"] Hope that helps!`}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "support groups"})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderGemini, result.Provider)
	require.Len(t, result.Resources, 1)
	assert.Equal(t, "NAMI NYC", result.Resources[0].Name)
}

func TestSearch_TruncatedOutputFallsBack(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	// Stream cut off mid-array: no closing bracket survives cleaning.
	completion := &fakeCompletion{response: "```json\n[\"NYC Well - Mental Health Support\", \"NAMI NYC\"\n"}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "anxiety"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.ProviderFallback, result.Provider)
	for _, r := range result.Resources {
		assert.Equal(t, model.CategoryMentalHealth, r.Category)
	}
}

func TestSearch_RemoteErrorFallsBack(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{err: errors.New("upstream timeout")}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "I need a lawyer"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.ProviderFallback, result.Provider)
	require.NotEmpty(t, result.Resources)
	for _, r := range result.Resources {
		assert.Equal(t, model.CategoryLegal, r.Category)
	}
}

func TestSearch_UnknownNamesAreDropped(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `["Totally Made Up Org", "NAMI NYC", "Another Hallucination"]`}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "mental health"})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderGemini, result.Provider)
	require.Len(t, result.Resources, 1)
	assert.Equal(t, "NAMI NYC", result.Resources[0].Name)
}

func TestSearch_AllNamesUnknownFallsBack(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `["Ghost Org One", "Ghost Org Two"]`}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "food near me"})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderFallback, result.Provider)
	require.NotEmpty(t, result.Resources)
	for _, r := range result.Resources {
		assert.Equal(t, model.CategoryFood, r.Category)
	}
}

func TestSearch_ResultCapIsEnforced(t *testing.T) {
	records := testCatalog()
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	repo := &fakeServiceRepo{records: records}
	completion := &fakeCompletion{response: `["` + names[0] + `", "` + names[1] + `", "` + names[2] + `", "` + names[3] + `", "` + names[4] + `", "` + names[5] + `", "` + names[6] + `"]`}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "everything"})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Count)
	assert.Len(t, result.Resources, 5)
}

func TestSearch_CategoryNarrowsCandidates(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `["Food Bank For New York City"]`}
	svc := newTestService(repo, completion, true)

	_, err := svc.Search(context.Background(), model.SearchRequest{Query: "groceries", Category: model.CategoryFood})
	require.NoError(t, err)

	require.Len(t, completion.prompts, 1)
	assert.Contains(t, completion.prompts[0], "Food Bank For New York City")
	assert.NotContains(t, completion.prompts[0], "The Legal Aid Society")
}

func TestSearch_LocationAndDistanceShapePrompt(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `["NAMI NYC"]`}
	svc := newTestService(repo, completion, true)

	_, err := svc.Search(context.Background(), model.SearchRequest{
		Query:       "therapy",
		Location:    &model.Location{Lat: 40.7128, Lng: -74.006},
		MaxDistance: 3,
	})
	require.NoError(t, err)

	require.Len(t, completion.prompts, 1)
	assert.Contains(t, completion.prompts[0], "40.7128")
	assert.Contains(t, completion.prompts[0], "within 3 miles")
}

func TestSearch_NoCredentialServesMock(t *testing.T) {
	repo := &fakeServiceRepo{records: testCatalog()}
	completion := &fakeCompletion{response: `["should never be called"]`}
	svc := newTestService(repo, completion, false)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "food"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.ProviderMock, result.Provider)
	require.NotEmpty(t, result.Resources)
	assert.Empty(t, completion.prompts, "no remote call should be made without a credential")
}

func TestSearch_NoCredentialEmptyStoreServesFixture(t *testing.T) {
	repo := &fakeServiceRepo{}
	completion := &fakeCompletion{}
	svc := newTestService(repo, completion, false)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "food"})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderMock, result.Provider)
	require.NotEmpty(t, result.Resources)
	for _, r := range result.Resources {
		assert.Equal(t, model.CategoryFood, r.Category)
	}
}

func TestSearch_StoreErrorIsReturned(t *testing.T) {
	repo := &fakeServiceRepo{err: errors.New("connection refused")}
	completion := &fakeCompletion{}
	svc := newTestService(repo, completion, true)

	result, err := svc.Search(context.Background(), model.SearchRequest{Query: "food"})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestCleanModelOutput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain array", `["A", "B"]`, `["A", "B"]`},
		{"fenced", "```json\n[\"A\"]\n```", `["A"]`},
		{"fenced no language", "```\n[\"A\"]\n```", `["A"]`},
		{"surrounding prose", `Sure! ["A", "B"] Let me know.`, `["A", "B"]`},
		{"whitespace", "  \n[\"A\"]\n  ", `["A"]`},
		{"no array at all", "I cannot help with that.", "I cannot help with that."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cleanModelOutput(tc.in)
			assert.Equal(t, tc.want, got)
			// Cleaning an already clean string must be a no-op.
			assert.Equal(t, got, cleanModelOutput(got))
		})
	}
}

func TestParseNameArray_RejectsNonArray(t *testing.T) {
	_, err := parseNameArray(`{"names": ["A"]}`)
	assert.Error(t, err)

	_, err = parseNameArray("not json at all")
	assert.Error(t, err)

	names, err := parseNameArray(`["A", "B"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestFallbackMatch(t *testing.T) {
	catalog := testCatalog()

	t.Run("keyword routes to category", func(t *testing.T) {
		cases := []struct {
			query    string
			category string
		}{
			{"I'm struggling with depression", model.CategoryMentalHealth},
			{"where can I get a free meal", model.CategoryFood},
			{"facing an eviction notice", model.CategoryHousing},
			{"I need a lawyer", model.CategoryLegal},
			{"GED classes near me", model.CategoryEducation},
			{"daycare for my son", model.CategoryChildcare},
		}
		for _, tc := range cases {
			matched := fallbackMatch(tc.query, catalog, 5)
			require.NotEmpty(t, matched, "query %q", tc.query)
			for _, r := range matched {
				assert.Equal(t, tc.category, r.Category, "query %q", tc.query)
			}
		}
	})

	t.Run("first keyword group wins", func(t *testing.T) {
		// "health" appears in the mental-health group before any
		// healthcare keyword can match.
		matched := fallbackMatch("health problems", catalog, 5)
		require.NotEmpty(t, matched)
		assert.Equal(t, model.CategoryMentalHealth, matched[0].Category)
	})

	t.Run("no keyword returns full set truncated", func(t *testing.T) {
		matched := fallbackMatch("zzz nothing matches this", catalog, 5)
		assert.Len(t, matched, 5)
		assert.Equal(t, catalog[0].Name, matched[0].Name)
	})

	t.Run("keyword with no records in category returns full set", func(t *testing.T) {
		matched := fallbackMatch("english classes", catalog, 5)
		// Catalog has no language records, so coverage beats emptiness.
		assert.Len(t, matched, 5)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := fallbackMatch("food pantry", catalog, 5)
		second := fallbackMatch("food pantry", catalog, 5)
		assert.Equal(t, first, second)
	})

	t.Run("case insensitive", func(t *testing.T) {
		matched := fallbackMatch("FOOD PANTRY", catalog, 5)
		require.NotEmpty(t, matched)
		assert.Equal(t, model.CategoryFood, matched[0].Category)
	})
}
