package propensity

import (
	"fmt"

	"webinsights/quickchart"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"
)

const numScoreBuckets = 10

var scoreBucketLabels = []string{
	"0-9", "10-19", "20-29", "30-39", "40-49",
	"50-59", "60-69", "70-79", "80-89", "90-100",
}

// BucketScores counts predicted percentages into ten decile buckets. A
// score of 100 lands in the top bucket.
func BucketScores(scores []VisitorScore) []int {
	counts := make([]int, numScoreBuckets)
	for _, score := range scores {
		bucket := score.Percent / 10
		if bucket >= numScoreBuckets {
			bucket = numScoreBuckets - 1
		}
		counts[bucket]++
	}
	return counts
}

// HistogramChartURL renders the score distribution as a bar chart URL.
func HistogramChartURL(scores []VisitorScore) (string, error) {
	counts := BucketScores(scores)

	labels := make([]interface{}, numScoreBuckets)
	data := make([]interface{}, numScoreBuckets)
	for i := 0; i < numScoreBuckets; i++ {
		labels[i] = scoreBucketLabels[i]
		data[i] = counts[i]
	}

	chartConfig := quickchart.ChartConfig{
		Type: "bar",
		Data: quickchart.ChartData{
			Labels: labels,
			DataSets: []quickchart.Dataset{
				{Label: "visitors", Data: data},
			},
		},
	}
	return quickchart.GetChartImageUrlForConfig(chartConfig)
}

// SummarizeScores logs and returns descriptive statistics of the predicted
// probabilities across the scored population.
func SummarizeScores(scores []VisitorScore) (map[string]float64, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores to summarize")
	}

	probabilities := make([]float64, len(scores))
	for i, score := range scores {
		probabilities[i] = score.Probability
	}

	mean, err := stats.Mean(probabilities)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(probabilities)
	if err != nil {
		return nil, err
	}
	p90, err := stats.Percentile(probabilities, 90)
	if err != nil {
		return nil, err
	}

	summary := map[string]float64{"mean": mean, "median": median, "p90": p90}
	log.WithFields(log.Fields{"mean": mean, "median": median, "p90": p90, "scored": len(scores)}).
		Info("Propensity score distribution")
	return summary, nil
}
