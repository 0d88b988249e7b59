package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNIHReporterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		criteria := payload["criteria"].(map[string]any)
		assert.Contains(t, criteria["advanced_text_search"].(map[string]any)["search_text"], `"organ-on-chip"`)
		assert.ElementsMatch(t, []any{2024.0, 2025.0, 2026.0}, criteria["fiscal_years"])
		assert.Equal(t, true, criteria["exclude_subprojects"])
		assert.Equal(t, 25.0, payload["limit"])

		_, _ = w.Write([]byte(`{
			"meta": {"total": 2},
			"results": [
				{
					"project_title": "Microphysiological liver systems for DILI prediction",
					"contact_pi_name": "GARCIA, MARIA",
					"org_name": "Stanford University",
					"org_city": "Stanford",
					"org_state": "CA",
					"org_country": "",
					"project_start_date": "2025-04-01T00:00:00",
					"terms": "organoid; hepatocyte; 3d culture"
				},
				{
					"project_title": "Fallback PI project",
					"contact_pi_name": "",
					"principal_investigators": [{"first_name": "Ken", "last_name": "Ito"}],
					"org_name": "Emulate Inc",
					"org_city": "Boston",
					"org_state": "MA",
					"org_country": "USA"
				}
			]
		}`))
	}))
	defer srv.Close()

	n := NewNIHReporter(testHTTPFetcher())
	n.baseURL = srv.URL
	n.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }

	records, err := n.Fetch(context.Background(), []string{"organ-on-chip", "liver injury"}, 25)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "GARCIA, MARIA", first.Str("name"))
	assert.Equal(t, "Principal Investigator", first.Str("title"))
	assert.Equal(t, "Stanford University", first.Str("company"))
	assert.Equal(t, "Stanford, CA", first.Str("person_location"))
	// Country defaults to USA when RePORTER leaves it blank.
	assert.Equal(t, "Stanford, CA, USA", first.Str("company_hq"))
	assert.Equal(t, "NIH Grant", first.Str("funding_stage"))
	assert.Equal(t, 2025, first.Int("publication_year"))
	assert.Contains(t, first.Str("raw_text"), "organoid")

	second := records[1]
	assert.Equal(t, "Ken Ito", second.Str("name"))
	assert.Equal(t, "Emulate Inc", second.Str("company"))
}

func TestNIHReporterSkipsNameless(t *testing.T) {
	n := NewNIHReporter(testHTTPFetcher())
	_, ok := n.extract(nihProject{ProjectTitle: "Orphan grant"})
	assert.False(t, ok)
}

func TestNIHReporterFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNIHReporter(testHTTPFetcher())
	n.baseURL = srv.URL

	_, err := n.Fetch(context.Background(), []string{"organoid"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nih: search")
}
