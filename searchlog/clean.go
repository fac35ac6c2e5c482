package searchlog

import (
	"fmt"
	"strconv"
	"strings"
)

// SearchQueryRecord is one distinct search term with its metric value, after
// column cleaning. The API has already aggregated per term server-side.
type SearchQueryRecord struct {
	Term   string
	Metric float64
}

// CleanColumns drops the report's bookkeeping fields and keeps term + metric
// under canonical names.
func CleanColumns(rows []RawSearchRow) ([]SearchQueryRecord, error) {
	records := make([]SearchQueryRecord, 0, len(rows))
	for i, row := range rows {
		if len(row.Counts) == 0 {
			return nil, fmt.Errorf("report row %d (%q) has no metric counts", i, row.Name)
		}
		metric, err := strconv.ParseFloat(row.Counts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("report row %d (%q) has non-numeric metric %q", i, row.Name, row.Counts[0])
		}
		records = append(records, SearchQueryRecord{Term: row.Name, Metric: metric})
	}
	return records, nil
}

var questionWords = []string{"who", "what", "why", "when", "where", "how"}

// FilterQuestions selects terms that begin with an interrogative word
// followed by a space. The subset is returned unmodified for direct display.
func FilterQuestions(records []SearchQueryRecord, caseSensitive bool) []SearchQueryRecord {
	questions := make([]SearchQueryRecord, 0)
	for _, record := range records {
		term := record.Term
		if !caseSensitive {
			term = strings.ToLower(term)
		}
		for _, word := range questionWords {
			if strings.HasPrefix(term, word+" ") {
				questions = append(questions, record)
				break
			}
		}
	}
	return questions
}
