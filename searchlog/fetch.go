package searchlog

import (
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"webinsights/cache"
	"webinsights/config"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	cacheKeySiteSearches = "site_searches"

	// Trailing report window: lookbackDays calendar days ending yesterday.
	lookbackDays = 30

	// The API pre-aggregates per term and caps the report at the top N
	// terms by the requested metric.
	topTermsLimit = 750

	fetchTimeout = 2 * time.Minute
)

// RawSearchRow is one row of the remote report before column cleaning.
type RawSearchRow struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Counts []string `json:"counts"`
}

// Fetcher pulls ranked search-term rows from the reporting API, consulting a
// file cache first. A nil cache disables caching. There are no retries: a
// failed fetch propagates and the operator re-runs.
type Fetcher struct {
	conf      *config.ReportingAPIConfig
	fileCache *cache.FileCache
	client    *http.Client
}

func NewFetcher(conf *config.ReportingAPIConfig, fileCache *cache.FileCache) *Fetcher {
	return &Fetcher{
		conf:      conf,
		fileCache: fileCache,
		client:    &http.Client{Timeout: fetchTimeout},
	}
}

// FetchSiteSearches returns the site-search report rows. A cached copy wins
// when present and well formed; a missing or malformed cache entry falls
// through to a live fetch whose result is persisted back.
func (f *Fetcher) FetchSiteSearches() ([]RawSearchRow, error) {
	if f.fileCache != nil {
		if data, ok := f.fileCache.Get(cacheKeySiteSearches); ok {
			var rows []RawSearchRow
			if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
				log.WithField("rows", len(rows)).Info("Loaded site searches from cache")
				return rows, nil
			}
			log.Debug("Malformed site searches cache entry. Falling through to live fetch.")
		}
	}

	rows, err := f.fetchRemote()
	if err != nil {
		return nil, err
	}

	if f.fileCache != nil {
		data, err := json.Marshal(rows)
		if err == nil {
			if err := f.fileCache.Put(cacheKeySiteSearches, data); err != nil {
				log.WithError(err).Warn("Failed to persist site searches cache")
			}
		}
	}
	return rows, nil
}

type reportRequest struct {
	ReportDescription reportDescription `json:"reportDescription"`
}

type reportDescription struct {
	ReportSuiteID string          `json:"reportSuiteID"`
	DateFrom      string          `json:"dateFrom"`
	DateTo        string          `json:"dateTo"`
	Metrics       []reportMetric  `json:"metrics"`
	Elements      []reportElement `json:"elements"`
}

type reportMetric struct {
	ID string `json:"id"`
}

type reportElement struct {
	ID  string `json:"id"`
	Top int    `json:"top"`
}

type reportResponse struct {
	Report struct {
		Data []RawSearchRow `json:"data"`
	} `json:"report"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (f *Fetcher) fetchRemote() ([]RawSearchRow, error) {
	dateFrom, dateTo := reportWindow(time.Now().UTC())

	request := reportRequest{
		ReportDescription: reportDescription{
			ReportSuiteID: f.conf.ReportSuiteID,
			DateFrom:      dateFrom,
			DateTo:        dateTo,
			Metrics:       []reportMetric{{ID: f.conf.Metric}},
			Elements:      []reportElement{{ID: f.conf.Element, Top: topTermsLimit}},
		},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal report request")
	}

	req, err := http.NewRequest(http.MethodPost, f.conf.Endpoint+"?method=Report.Run", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build report request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-WSSE", wsseHeader(f.conf.Username, f.conf.Secret))

	log.WithFields(log.Fields{"rsid": f.conf.ReportSuiteID, "dateFrom": dateFrom, "dateTo": dateTo}).
		Info("Fetching site search report")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "report fetch failed")
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading report response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("report fetch returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var report reportResponse
	if err := json.Unmarshal(respBody, &report); err != nil {
		return nil, errors.Wrap(err, "failed to decode report response")
	}
	if report.Error != "" {
		return nil, fmt.Errorf("report API error %s: %s", report.Error, report.ErrorDescription)
	}
	if len(report.Report.Data) == 0 {
		return nil, fmt.Errorf("report returned no search terms")
	}
	return report.Report.Data, nil
}

// reportWindow returns the inclusive trailing window of lookbackDays calendar
// days ending yesterday, relative to the given time.
func reportWindow(nowTime time.Time) (dateFrom, dateTo string) {
	yesterday := now.With(nowTime.AddDate(0, 0, -1)).BeginningOfDay()
	start := yesterday.AddDate(0, 0, -(lookbackDays - 1))
	return start.Format("2006-01-02"), yesterday.Format("2006-01-02")
}

// wsseHeader builds an X-WSSE UsernameToken header for the shared-secret
// handshake: digest = base64(sha1(nonce + created + secret)).
func wsseHeader(username, secret string) string {
	nonceBytes := make([]byte, 16)
	rand.Read(nonceBytes)
	nonce := base64.StdEncoding.EncodeToString(nonceBytes)
	created := time.Now().UTC().Format("2006-01-02T15:04:05Z")

	digestInput := nonce + created + secret
	digestBytes := sha1.Sum([]byte(digestInput))
	digest := base64.StdEncoding.EncodeToString(digestBytes[:])

	return fmt.Sprintf(`UsernameToken Username="%s", PasswordDigest="%s", Nonce="%s", Created="%s"`,
		username, digest, nonce, created)
}
