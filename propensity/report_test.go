package propensity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketScores(t *testing.T) {
	scores := []VisitorScore{
		{VisitorID: "a", Percent: 0},
		{VisitorID: "b", Percent: 9},
		{VisitorID: "c", Percent: 10},
		{VisitorID: "d", Percent: 55},
		{VisitorID: "e", Percent: 95},
		{VisitorID: "f", Percent: 100},
	}

	counts := BucketScores(scores)
	require.Len(t, counts, 10)
	assert.Equal(t, 2, counts[0])
	assert.Equal(t, 1, counts[1])
	assert.Equal(t, 1, counts[5])
	assert.Equal(t, 2, counts[9], "a score of 100 lands in the top bucket")

	total := 0
	for _, count := range counts {
		total += count
	}
	assert.Equal(t, len(scores), total)
}

func TestSummarizeScores(t *testing.T) {
	scores := []VisitorScore{
		{Probability: 0.2},
		{Probability: 0.4},
		{Probability: 0.6},
		{Probability: 0.8},
	}

	summary, err := SummarizeScores(scores)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, summary["mean"], 0.0001)
	assert.InDelta(t, 0.5, summary["median"], 0.0001)
	assert.GreaterOrEqual(t, summary["p90"], summary["median"])
}

func TestSummarizeScoresEmpty(t *testing.T) {
	_, err := SummarizeScores(nil)
	assert.Error(t, err)
}
