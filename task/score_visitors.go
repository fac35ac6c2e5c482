package task

import (
	"bytes"
	"encoding/json"
	"fmt"

	"webinsights/clickstream"
	"webinsights/filestore"
	"webinsights/propensity"

	log "github.com/sirupsen/logrus"
)

const (
	scoringJobName = "visitor_scoring"
	scoresFileName = "visitor_scores.txt"
)

// ScoreVisitors runs the full visitor scoring pipeline: load raw hits,
// aggregate per-visitor features, fit a propensity model on a bounded
// sample and score the whole population.
func ScoreVisitors(configs map[string]interface{}) (map[string]interface{}, bool) {
	status := make(map[string]interface{})

	hitFileGlob := configs["hitFileGlob"].(string)
	aggConfig := clickstream.AggregationConfig{
		EventCode:              configs["eventCode"].(string),
		InterestingPagePattern: configs["interestingPagePattern"].(string),
		OverviewPagePattern:    configs["overviewPagePattern"].(string),
	}
	responseFeature := configs["responseFeature"].(string)
	sampleSize := configs["sampleSize"].(int)

	logCtx := log.WithField("glob", hitFileGlob)

	events, err := clickstream.LoadRawEvents(hitFileGlob)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load raw events")
		status["err"] = err.Error()
		return status, false
	}
	status["events"] = len(events)

	rollup, err := clickstream.AggregateVisitorFeatures(events, aggConfig)
	if err != nil {
		logCtx.WithError(err).Error("Failed to aggregate visitor features")
		status["err"] = err.Error()
		return status, false
	}
	status["visitors"] = len(rollup.Rows)

	population, err := propensity.DeriveResponse(rollup, responseFeature)
	if err != nil {
		logCtx.WithError(err).Error("Failed to derive response labels")
		status["err"] = err.Error()
		return status, false
	}

	sample, err := propensity.SelectTrainingSample(population, sampleSize)
	if err != nil {
		logCtx.WithError(err).Error("Failed to select training sample")
		status["err"] = err.Error()
		return status, false
	}
	status["sample"] = len(sample.Rows)

	model, err := propensity.Fit(sample)
	if err != nil {
		logCtx.WithError(err).Error("Model fit failed")
		status["err"] = err.Error()
		return status, false
	}

	scores, err := model.ScoreAll(population)
	if err != nil {
		logCtx.WithError(err).Error("Failed to score population")
		status["err"] = err.Error()
		return status, false
	}
	status["scored"] = len(scores)

	if fileManager, ok := configs["fileManager"].(filestore.FileManager); ok && fileManager != nil {
		if err := writeScoresFile(fileManager, scores); err != nil {
			logCtx.WithError(err).Error("Failed to write scores file")
			status["err"] = err.Error()
			return status, false
		}
		status["scoresFile"] = scoresFileName
	}

	if summary, err := propensity.SummarizeScores(scores); err == nil {
		status["summary"] = summary
	}

	chartURL, err := propensity.HistogramChartURL(scores)
	if err != nil {
		logCtx.WithError(err).Error("Failed to render score histogram")
		status["err"] = err.Error()
		return status, false
	}
	status["histogramUrl"] = chartURL

	logCtx.WithField("scored", len(scores)).Info("Visitor scoring completed")
	return status, true
}

// writeScoresFile persists one JSON line per scored visitor under the job's
// data dir.
func writeScoresFile(fileManager filestore.FileManager, scores []propensity.VisitorScore) error {
	var buf bytes.Buffer
	for _, score := range scores {
		line, err := json.Marshal(score)
		if err != nil {
			return fmt.Errorf("unable to marshal score for visitor %s: %v", score.VisitorID, err)
		}
		buf.Write(line)
		buf.WriteString("\n")
	}
	return fileManager.Create(fileManager.GetJobDataPath(scoringJobName), scoresFileName, &buf)
}
