package main

import (
	"flag"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"webinsights/cache"
	C "webinsights/config"
	"webinsights/searchlog"
	serviceDisk "webinsights/services/disk"
	"webinsights/task"
)

func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	dataDir := flag.String("data_dir", "./data", "Base dir for job data and the report cache.")
	noCache := flag.Bool("no_cache", false, "Skip the site_searches cache and always fetch live.")
	exclusions := flag.String("exclude_terms", "", "Comma-separated pre-stemmed tokens to drop after normalization.")
	caseSensitiveQuestions := flag.Bool("case_sensitive_questions", false, "Match question prefixes case-sensitively.")
	flag.Parse()

	if !C.IsValidEnv(*env) {
		err := fmt.Errorf("env [ %s ] not recognised", *env)
		panic(err)
	}

	apiConf, err := C.LoadReportingAPIConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load reporting API config")
	}

	var fileCache *cache.FileCache
	if !*noCache {
		fileCache = cache.New(serviceDisk.New(*dataDir))
	}
	fetcher := searchlog.NewFetcher(apiConf, fileCache)

	excludeSet := make(map[string]bool)
	for _, token := range strings.Split(*exclusions, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			excludeSet[token] = true
		}
	}

	configs := map[string]interface{}{
		"fetcher":                fetcher,
		"exclusions":             excludeSet,
		"caseSensitiveQuestions": *caseSensitiveQuestions,
	}

	status, ok := task.AnalyzeSearches(configs)
	log.WithFields(log.Fields{"status": status, "success": ok}).Info("search_analysis done")
	if !ok {
		panic(fmt.Errorf("search analysis failed: %v", status["err"]))
	}
	for _, key := range []string{"rawWordCloudUrl", "normalizedWordCloudUrl", "questionTableUrl"} {
		if url, ok := status[key]; ok {
			fmt.Println(url)
		}
	}
}
