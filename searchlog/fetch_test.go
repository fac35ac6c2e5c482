package searchlog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webinsights/cache"
	"webinsights/config"
	serviceDisk "webinsights/services/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAPIConfig(endpoint string) *config.ReportingAPIConfig {
	return &config.ReportingAPIConfig{
		Username:      "user:company",
		Secret:        "sharedsecret",
		ReportSuiteID: "mysuite",
		Metric:        "searches",
		Element:       "searchterm",
		Endpoint:      endpoint,
	}
}

func reportServer(t *testing.T, hits *int, rows []RawSearchRow) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("X-WSSE"), "report requests must carry WSSE auth")

		var request reportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "mysuite", request.ReportDescription.ReportSuiteID)
		assert.Equal(t, topTermsLimit, request.ReportDescription.Elements[0].Top)

		response := reportResponse{}
		response.Report.Data = rows
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func TestFetchSiteSearchesLive(t *testing.T) {
	hits := 0
	server := reportServer(t, &hits, []RawSearchRow{
		{Name: "how to renew", Counts: []string{"12"}},
		{Name: "pricing", Counts: []string{"9"}},
	})
	defer server.Close()

	fetcher := NewFetcher(testAPIConfig(server.URL), nil)
	rows, err := fetcher.FetchSiteSearches()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "how to renew", rows[0].Name)
	assert.Equal(t, 1, hits)
}

func TestFetchSiteSearchesUsesCache(t *testing.T) {
	hits := 0
	server := reportServer(t, &hits, []RawSearchRow{{Name: "pricing", Counts: []string{"9"}}})
	defer server.Close()

	fileCache := cache.New(serviceDisk.New(t.TempDir()))
	fetcher := NewFetcher(testAPIConfig(server.URL), fileCache)

	first, err := fetcher.FetchSiteSearches()
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, hits)

	// Second run is served from the persisted cache.
	second, err := fetcher.FetchSiteSearches()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
}

func TestFetchSiteSearchesMalformedCacheFallsThrough(t *testing.T) {
	hits := 0
	server := reportServer(t, &hits, []RawSearchRow{{Name: "pricing", Counts: []string{"9"}}})
	defer server.Close()

	fileCache := cache.New(serviceDisk.New(t.TempDir()))
	require.NoError(t, fileCache.Put(cacheKeySiteSearches, []byte("not json at all")))

	fetcher := NewFetcher(testAPIConfig(server.URL), fileCache)
	rows, err := fetcher.FetchSiteSearches()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, hits, "malformed cache must fall through to a live fetch")

	// The live result was persisted over the bad entry.
	data, ok := fileCache.Get(cacheKeySiteSearches)
	require.True(t, ok)
	var cached []RawSearchRow
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, rows, cached)
}

func TestFetchSiteSearchesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(testAPIConfig(server.URL), nil)
	_, err := fetcher.FetchSiteSearches()
	assert.Error(t, err)
}

func TestFetchSiteSearchesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := reportResponse{Error: "Bad credentials", ErrorDescription: "secret mismatch"}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	fetcher := NewFetcher(testAPIConfig(server.URL), nil)
	_, err := fetcher.FetchSiteSearches()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestFetchSiteSearchesEmptyReport(t *testing.T) {
	hits := 0
	server := reportServer(t, &hits, nil)
	defer server.Close()

	fetcher := NewFetcher(testAPIConfig(server.URL), nil)
	_, err := fetcher.FetchSiteSearches()
	assert.Error(t, err)
}

func TestReportWindow(t *testing.T) {
	reference := time.Date(2016, 5, 15, 10, 30, 0, 0, time.UTC)
	dateFrom, dateTo := reportWindow(reference)
	assert.Equal(t, "2016-05-14", dateTo, "window ends yesterday")
	assert.Equal(t, "2016-04-15", dateFrom, "30 calendar days inclusive")
}

func TestWSSEHeaderShape(t *testing.T) {
	header := wsseHeader("user", "secret")
	assert.Contains(t, header, `UsernameToken Username="user"`)
	assert.Contains(t, header, "PasswordDigest=")
	assert.Contains(t, header, "Nonce=")
	assert.Contains(t, header, "Created=")
}
