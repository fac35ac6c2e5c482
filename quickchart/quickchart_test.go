package quickchart

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableURLfromTableConfig(t *testing.T) {
	config := TableConfig{
		Title: "Question searches",
		Columns: []Column{
			{Width: 400, Title: "Search term", DataIndex: "term"},
		},
		DataSource: []interface{}{map[string]interface{}{"term": "how to renew"}},
	}

	tableURL, err := GetTableURLfromTableConfig(config)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tableURL, "https://api.quickchart.io/v1/table?data="))

	parsed, err := url.Parse(tableURL)
	require.NoError(t, err)
	assert.Contains(t, parsed.Query().Get("data"), "how to renew")
}

func TestGetWordCloudURLWeights(t *testing.T) {
	cloudURL, err := GetWordCloudURL([]WordWeight{
		{Word: "shoe", Weight: 3},
		{Word: "sock", Weight: 1},
	})
	require.NoError(t, err)

	parsed, err := url.Parse(cloudURL)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.Equal(t, 3, strings.Count(text, "shoe"))
	assert.Equal(t, 1, strings.Count(text, "sock"))
}

func TestGetWordCloudURLCapsRepeats(t *testing.T) {
	cloudURL, err := GetWordCloudURL([]WordWeight{{Word: "shoe", Weight: 100000}})
	require.NoError(t, err)

	parsed, err := url.Parse(cloudURL)
	require.NoError(t, err)
	assert.Equal(t, maxWordRepeats, strings.Count(parsed.Query().Get("text"), "shoe"))
}

func TestGetWordCloudURLZeroWeightStillRendered(t *testing.T) {
	cloudURL, err := GetWordCloudURL([]WordWeight{{Word: "shoe", Weight: 0}})
	require.NoError(t, err)
	assert.Contains(t, cloudURL, "shoe")
}

func TestGetWordCloudURLEmpty(t *testing.T) {
	_, err := GetWordCloudURL(nil)
	assert.Error(t, err)
}
