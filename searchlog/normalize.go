package searchlog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
	"github.com/kljensen/snowball/english"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedTermRecord is one normalized token with the metric mass summed
// across every raw term that collapsed onto it.
type NormalizedTermRecord struct {
	Term   string
	Metric float64
}

// NormalizeTerms collapses multi-word search terms into stemmed single-word
// tokens and re-aggregates metric values per token. Each token of a raw term
// inherits the term's full metric value (fan-out, not a split). Exclusion
// entries are matched after stemming, so callers must supply pre-stemmed
// forms. Output is sorted by summed metric descending, term ascending on
// ties.
func NormalizeTerms(records []SearchQueryRecord, exclusions map[string]bool) []NormalizedTermRecord {
	totals := make(map[string]float64)
	for _, record := range records {
		for _, token := range strings.Fields(coerceASCII(record.Term)) {
			token = strings.ToLower(strings.TrimFunc(token, unicode.IsPunct))
			if token == "" || isStopword(token) {
				continue
			}
			stemmed := english.Stem(token, true)
			if stemmed == "" || exclusions[stemmed] {
				continue
			}
			totals[stemmed] += record.Metric
		}
	}

	normalized := make([]NormalizedTermRecord, 0, len(totals))
	for term, metric := range totals {
		normalized = append(normalized, NormalizedTermRecord{Term: term, Metric: metric})
	}
	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i].Metric != normalized[j].Metric {
			return normalized[i].Metric > normalized[j].Metric
		}
		return normalized[i].Term < normalized[j].Term
	})

	log.WithFields(log.Fields{"raw": len(records), "normalized": len(normalized)}).
		Info("Normalized search terms")
	return normalized
}

func isStopword(token string) bool {
	return strings.TrimSpace(stopwords.CleanString(token, "en", false)) == ""
}

// coerceASCII strips accents and drops characters with no ASCII
// representation. Lossy for non-English terms: "café" becomes "cafe" but
// ideographic input can vanish entirely. That is accepted behavior, not
// something to correct here.
func coerceASCII(s string) string {
	asciiFolder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
