package task

import (
	"webinsights/quickchart"
	"webinsights/searchlog"

	log "github.com/sirupsen/logrus"
)

// AnalyzeSearches runs the search query analysis pipeline: fetch the ranked
// site-search report (cache first), render word clouds of the raw and
// normalized terms, and build a table of question-style queries.
func AnalyzeSearches(configs map[string]interface{}) (map[string]interface{}, bool) {
	status := make(map[string]interface{})

	fetcher := configs["fetcher"].(*searchlog.Fetcher)
	exclusions := configs["exclusions"].(map[string]bool)
	caseSensitiveQuestions := configs["caseSensitiveQuestions"].(bool)

	rows, err := fetcher.FetchSiteSearches()
	if err != nil {
		log.WithError(err).Error("Failed to fetch site searches")
		status["err"] = err.Error()
		return status, false
	}
	status["rows"] = len(rows)

	records, err := searchlog.CleanColumns(rows)
	if err != nil {
		log.WithError(err).Error("Failed to clean report columns")
		status["err"] = err.Error()
		return status, false
	}

	questions := searchlog.FilterQuestions(records, caseSensitiveQuestions)
	status["questions"] = len(questions)
	if len(questions) > 0 {
		tableURL, err := quickchart.GetTableURLfromTableConfig(questionTableConfig(questions))
		if err != nil {
			log.WithError(err).Error("Failed to render question table")
			status["err"] = err.Error()
			return status, false
		}
		status["questionTableUrl"] = tableURL
	}

	rawCloudURL, err := quickchart.GetWordCloudURL(rawWordWeights(records))
	if err != nil {
		log.WithError(err).Error("Failed to render raw term word cloud")
		status["err"] = err.Error()
		return status, false
	}
	status["rawWordCloudUrl"] = rawCloudURL

	normalized := searchlog.NormalizeTerms(records, exclusions)
	status["normalizedTerms"] = len(normalized)

	normalizedCloudURL, err := quickchart.GetWordCloudURL(normalizedWordWeights(normalized))
	if err != nil {
		log.WithError(err).Error("Failed to render normalized word cloud")
		status["err"] = err.Error()
		return status, false
	}
	status["normalizedWordCloudUrl"] = normalizedCloudURL

	log.WithFields(log.Fields{"rows": len(rows), "normalized": len(normalized)}).
		Info("Search analysis completed")
	return status, true
}

func questionTableConfig(questions []searchlog.SearchQueryRecord) quickchart.TableConfig {
	dataSource := make([]interface{}, 0, len(questions))
	for _, question := range questions {
		dataSource = append(dataSource, map[string]interface{}{
			"term":   question.Term,
			"metric": question.Metric,
		})
	}
	return quickchart.TableConfig{
		Title: "Question searches",
		Columns: []quickchart.Column{
			{Width: 400, Title: "Search term", DataIndex: "term"},
			{Width: 100, Title: "Searches", DataIndex: "metric"},
		},
		DataSource: dataSource,
	}
}

func rawWordWeights(records []searchlog.SearchQueryRecord) []quickchart.WordWeight {
	words := make([]quickchart.WordWeight, 0, len(records))
	for _, record := range records {
		words = append(words, quickchart.WordWeight{Word: record.Term, Weight: int(record.Metric)})
	}
	return words
}

func normalizedWordWeights(records []searchlog.NormalizedTermRecord) []quickchart.WordWeight {
	words := make([]quickchart.WordWeight, 0, len(records))
	for _, record := range records {
		words = append(words, quickchart.WordWeight{Word: record.Term, Weight: int(record.Metric)})
	}
	return words
}
