package quickchart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	quickchartgo "github.com/henomis/quickchart-go"
	log "github.com/sirupsen/logrus"
)

type ChartConfig struct {
	Type string    `json:"type"`
	Data ChartData `json:"data"`
}
type ChartData struct {
	Labels   []interface{} `json:"labels"`
	DataSets []Dataset     `json:"datasets"`
}
type Dataset struct {
	Label       string        `json:"label"`
	Data        []interface{} `json:"data"`
	Fill        bool          `json:"fill"`
	LineTension float32       `json:"lineTension"`
}
type TableConfig struct {
	Title      string        `json:"title"`
	Columns    []Column      `json:"columns"`
	DataSource []interface{} `json:"dataSource"`
}
type Column struct {
	Width     int    `json:"width"`
	Title     string `json:"title"`
	DataIndex string `json:"dataIndex"`
}

// WordWeight is one word of a word cloud with its relative size.
type WordWeight struct {
	Word   string
	Weight int
}

func GetChartImageUrlForConfig(config ChartConfig) (url string, err error) {
	bytes, err := json.Marshal(config)
	if err != nil {
		log.Error("failed to marshal chart config")
		return "", errors.New("failed to get chart url from quickchart")
	}
	qc := quickchartgo.New()
	qc.Config = string(bytes)
	url, error := qc.GetUrl()
	if error != nil {
		log.Error("failed to get chart url from quickchart")
		return "", errors.New("failed to get chart url from quickchart")
	}
	return url, nil
}

func GetTableURLfromTableConfig(config TableConfig) (string, error) {
	bytes, err := json.Marshal(config)
	if err != nil {
		return "", errors.New("Failed to marshal table config")
	}
	url := fmt.Sprintf("https://api.quickchart.io/v1/table?data=%s", url.QueryEscape(string(bytes)))
	return url, nil
}

// maxWordRepeats caps how often a single word is repeated in the wordcloud
// text. The endpoint sizes words by in-text frequency, so weights beyond the
// cap stop adding visual information and only bloat the URL.
const maxWordRepeats = 50

// GetWordCloudURL builds a quickchart wordcloud URL where each word is sized
// proportionally to its weight.
func GetWordCloudURL(words []WordWeight) (string, error) {
	if len(words) == 0 {
		return "", errors.New("no words to render in wordcloud")
	}
	repeated := make([]string, 0)
	for _, ww := range words {
		n := ww.Weight
		if n < 1 {
			n = 1
		}
		if n > maxWordRepeats {
			n = maxWordRepeats
		}
		for i := 0; i < n; i++ {
			repeated = append(repeated, ww.Word)
		}
	}
	text := strings.Join(repeated, " ")
	return fmt.Sprintf("https://quickchart.io/wordcloud?text=%s", url.QueryEscape(text)), nil
}
