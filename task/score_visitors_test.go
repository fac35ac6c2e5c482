package task

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"webinsights/propensity"
	serviceDisk "webinsights/services/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHitFile(t *testing.T, dir string, numVisitors int) string {
	// Deterministic synthetic hit data with independent variation in every
	// feature so the design matrix stays full rank.
	rng := rand.New(rand.NewSource(7))
	base := int64(1700000000)
	pages := []string{"home", "product detail", "site overview", "faq"}

	var lines []string
	for i := 0; i < numVisitors; i++ {
		numHits := 2 + rng.Intn(4)
		for j := 0; j < numHits; j++ {
			visitNum := 1 + rng.Intn(6)
			dayOffset := rng.Intn(5)
			if j == numHits-1 && rng.Intn(2) == 0 {
				// Push some visitors into a second calendar month.
				dayOffset += 35
			}
			timestamp := base + int64(dayOffset)*86400 + int64(j)

			pageEvent := 0
			if rng.Intn(2) == 1 {
				pageEvent = 100
			}
			eventList := "100"
			if rng.Intn(2) == 0 {
				eventList = fmt.Sprintf("203=%d", 1+rng.Intn(3))
			}

			lines = append(lines, strings.Join([]string{
				fmt.Sprintf("%04d", i), "suffix",
				fmt.Sprintf("%d", visitNum),
				"browser1",
				eventList,
				fmt.Sprintf("%d", timestamp),
				fmt.Sprintf("%d", pageEvent),
				pages[rng.Intn(len(pages))],
			}, "\t"))
		}
	}

	filePath := filepath.Join(dir, "hit_data.tsv")
	require.NoError(t, os.WriteFile(filePath, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return filePath
}

func scoreConfigs(glob string) map[string]interface{} {
	return map[string]interface{}{
		"hitFileGlob":            glob,
		"eventCode":              "203",
		"interestingPagePattern": "product",
		"overviewPagePattern":    "site overview",
		"responseFeature":        "event_count",
		"sampleSize":             1000,
	}
}

func TestScoreVisitorsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	writeHitFile(t, dir, 40)

	configs := scoreConfigs(filepath.Join(dir, "hit_data*.tsv"))
	configs["fileManager"] = serviceDisk.New(outDir)

	status, ok := ScoreVisitors(configs)
	require.True(t, ok, "status: %v", status)

	assert.Equal(t, 40, status["visitors"])
	assert.Equal(t, 40, status["scored"], "every visitor is scored, not just the sample")
	assert.NotEmpty(t, status["histogramUrl"])
	assert.Contains(t, status["histogramUrl"].(string), "quickchart")

	scoresData, err := os.ReadFile(filepath.Join(outDir, "visitor_scoring", "visitor_scores.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(scoresData)), "\n")
	assert.Len(t, lines, 40)

	var score propensity.VisitorScore
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &score))
	assert.NotEmpty(t, score.VisitorID)
}

func TestScoreVisitorsBadGlob(t *testing.T) {
	status, ok := ScoreVisitors(scoreConfigs(filepath.Join(t.TempDir(), "nothing*.tsv")))
	assert.False(t, ok)
	assert.NotEmpty(t, status["err"])
}
