package main

import (
	"flag"
	"fmt"

	log "github.com/sirupsen/logrus"

	C "webinsights/config"
	serviceDisk "webinsights/services/disk"
	"webinsights/task"
)

func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	dataDir := flag.String("data_dir", "./data", "Base dir for job output files.")
	hitFileGlob := flag.String("hit_file_glob", "./data/hit_data*.tsv", "Glob of tab-delimited raw hit files.")
	eventCode := flag.String("event_code", "203", "Event code to count from the event list column.")
	interestingPagePattern := flag.String("interesting_page_pattern", "(?i)product", "Page name pattern for visits_to_interesting_page.")
	overviewPagePattern := flag.String("overview_page_pattern", "(?i)site overview", "Page name pattern for page_views_to_site_overview.")
	responseFeature := flag.String("response_feature", "event_count", "Rollup feature the binary response is derived from.")
	sampleSize := flag.Int("sample_size", 50000, "Max number of visitors in the training sample.")
	flag.Parse()

	if !C.IsValidEnv(*env) {
		err := fmt.Errorf("env [ %s ] not recognised", *env)
		panic(err)
	}

	configs := map[string]interface{}{
		"hitFileGlob":            *hitFileGlob,
		"eventCode":              *eventCode,
		"interestingPagePattern": *interestingPagePattern,
		"overviewPagePattern":    *overviewPagePattern,
		"responseFeature":        *responseFeature,
		"sampleSize":             *sampleSize,
		"fileManager":            serviceDisk.New(*dataDir),
	}

	status, ok := task.ScoreVisitors(configs)
	log.WithFields(log.Fields{"status": status, "success": ok}).Info("visitor_scoring done")
	if !ok {
		panic(fmt.Errorf("visitor scoring failed: %v", status["err"]))
	}
	if url, ok := status["histogramUrl"]; ok {
		fmt.Println(url)
	}
}
