package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DEVELOPMENT = "development"
	STAGING     = "staging"
	PRODUCTION  = "production"
)

// Configuration holds the operational knobs of a job run, built once in main
// from flags and treated as immutable afterwards.
type Configuration struct {
	AppName string
	Env     string
	DataDir string
}

func IsValidEnv(env string) bool {
	return env == DEVELOPMENT || env == STAGING || env == PRODUCTION
}

// ReportingAPIConfig scopes and authenticates remote reporting API queries.
// Credentials and suite ids come from the environment, decoded once at
// process start.
type ReportingAPIConfig struct {
	Username      string `envconfig:"ANALYTICS_USERNAME" required:"true"`
	Secret        string `envconfig:"ANALYTICS_SECRET" required:"true"`
	ReportSuiteID string `envconfig:"ANALYTICS_RSID" required:"true"`
	Metric        string `envconfig:"ANALYTICS_METRIC" default:"searches"`
	Element       string `envconfig:"ANALYTICS_ELEMENT" default:"searchterm"`
	Endpoint      string `envconfig:"ANALYTICS_ENDPOINT" default:"https://api.omniture.com/admin/1.4/rest/"`
}

func LoadReportingAPIConfig() (*ReportingAPIConfig, error) {
	var conf ReportingAPIConfig
	if err := envconfig.Process("", &conf); err != nil {
		return nil, errors.Wrap(err, "failed to read reporting API config from env")
	}
	return &conf, nil
}
