package clickstream

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	U "webinsights/util"

	log "github.com/sirupsen/logrus"
)

// Feature names of the visitor rollup.
const (
	FeatureHitCount       = "hit_count"
	FeatureLifetimeVisits = "lifetime_visits"
	FeatureVisits         = "visits"
	FeatureEventCount     = "event_count"
	FeatureInterestVisits = "visits_to_interesting_page"
	FeatureOverviewViews  = "page_views_to_site_overview"
	FeatureDaysVisited    = "days_visited"
	FeatureMonthsVisited  = "months_visited"
)

var rollupFeatures = []string{
	FeatureHitCount,
	FeatureLifetimeVisits,
	FeatureVisits,
	FeatureEventCount,
	FeatureInterestVisits,
	FeatureOverviewViews,
	FeatureDaysVisited,
	FeatureMonthsVisited,
}

// AggregationConfig carries the caller-supplied match parameters for the
// pattern-based features.
type AggregationConfig struct {
	EventCode              string
	InterestingPagePattern string
	OverviewPagePattern    string
}

// FeatureTable is a partial per-visitor feature table: visitor id to named
// numeric features.
type FeatureTable map[string]map[string]float64

// Rollup is the merged visitor feature table. After AggregateVisitorFeatures
// every row carries a value for every name in Features; missing partial-table
// entries have been zero-filled.
type Rollup struct {
	Features []string
	Rows     FeatureTable
}

// VisitorIDs returns the visitor keys in ascending order.
func (r *Rollup) VisitorIDs() []string {
	ids := make([]string, 0, len(r.Rows))
	for id := range r.Rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AggregateVisitorFeatures computes the five partial feature tables
// independently and merges them into one row per visitor. A visitor filtered
// out of a pattern-based table still appears in the rollup with zeros for
// that table's features: absence there genuinely means zero occurrences.
func AggregateVisitorFeatures(events []RawEvent, conf AggregationConfig) (*Rollup, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to aggregate")
	}

	eventTable, err := eventCountTable(events, conf.EventCode)
	if err != nil {
		return nil, err
	}
	interestTable, err := interestingVisitTable(events, conf.InterestingPagePattern)
	if err != nil {
		return nil, err
	}
	overviewTable, err := overviewViewTable(events, conf.OverviewPagePattern)
	if err != nil {
		return nil, err
	}

	merged := hitAndVisitTable(events)
	for _, partial := range []FeatureTable{eventTable, interestTable, overviewTable, dateTable(events)} {
		merged = outerJoin(merged, partial)
	}
	zeroFill(merged, rollupFeatures)

	log.WithFields(log.Fields{"visitors": len(merged), "events": len(events)}).
		Info("Aggregated visitor features")
	return &Rollup{Features: rollupFeatures, Rows: merged}, nil
}

// hitAndVisitTable computes hit_count, lifetime_visits and visits. Every
// visitor with at least one raw event is present here, which anchors the
// outer join.
func hitAndVisitTable(events []RawEvent) FeatureTable {
	table := make(FeatureTable)
	distinctVisits := make(map[string]map[int64]bool)
	for _, event := range events {
		row, ok := table[event.VisitorID]
		if !ok {
			row = make(map[string]float64)
			table[event.VisitorID] = row
			distinctVisits[event.VisitorID] = make(map[int64]bool)
		}
		row[FeatureHitCount] += 1
		if float64(event.VisitNum) > row[FeatureLifetimeVisits] {
			row[FeatureLifetimeVisits] = float64(event.VisitNum)
		}
		distinctVisits[event.VisitorID][event.VisitNum] = true
	}
	for visitorID, visitSet := range distinctVisits {
		table[visitorID][FeatureVisits] = float64(len(visitSet))
	}
	return table
}

// eventCountRegexp anchors the event code on a list boundary so code "203"
// does not match inside "1203" or "2030". Only the first occurrence in a
// row's event list contributes.
func eventCountRegexp(eventCode string) (*regexp.Regexp, error) {
	expr := "(?:^|[,;])" + regexp.QuoteMeta(eventCode) + "(?:=([0-9]+))?(?:[,;]|$)"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid event code %q: %v", eventCode, err)
	}
	return re, nil
}

func eventCountTable(events []RawEvent, eventCode string) (FeatureTable, error) {
	re, err := eventCountRegexp(eventCode)
	if err != nil {
		return nil, err
	}

	table := make(FeatureTable)
	for _, event := range events {
		count, ok := matchEventCount(re, event.EventList)
		if !ok {
			// Rows without the code are excluded here, not zero-filled.
			continue
		}
		row, present := table[event.VisitorID]
		if !present {
			row = make(map[string]float64)
			table[event.VisitorID] = row
		}
		row[FeatureEventCount] += count
	}
	return table, nil
}

// matchEventCount returns the count contributed by one event list: the
// numeric suffix of the first `code=N` occurrence, 1 for a bare code, and
// ok=false when the code does not appear.
func matchEventCount(re *regexp.Regexp, eventList string) (float64, bool) {
	match := re.FindStringSubmatch(eventList)
	if match == nil {
		return 0, false
	}
	if match[1] == "" {
		return 1, true
	}
	count, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		// [0-9]+ only overflows here; treat as a bare occurrence.
		return 1, true
	}
	return count, true
}

func interestingVisitTable(events []RawEvent, pagePattern string) (FeatureTable, error) {
	re, err := regexp.Compile(pagePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid interesting page pattern %q: %v", pagePattern, err)
	}

	distinctVisits := make(map[string]map[int64]bool)
	for _, event := range events {
		if !re.MatchString(event.PageName) {
			continue
		}
		if _, ok := distinctVisits[event.VisitorID]; !ok {
			distinctVisits[event.VisitorID] = make(map[int64]bool)
		}
		distinctVisits[event.VisitorID][event.VisitNum] = true
	}

	table := make(FeatureTable)
	for visitorID, visitSet := range distinctVisits {
		table[visitorID] = map[string]float64{FeatureInterestVisits: float64(len(visitSet))}
	}
	return table, nil
}

func overviewViewTable(events []RawEvent, pagePattern string) (FeatureTable, error) {
	re, err := regexp.Compile(pagePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid overview page pattern %q: %v", pagePattern, err)
	}

	table := make(FeatureTable)
	for _, event := range events {
		// Only plain page views count, not link or media events.
		if event.PageEvent != pageEventNone || !re.MatchString(event.PageName) {
			continue
		}
		row, ok := table[event.VisitorID]
		if !ok {
			row = make(map[string]float64)
			table[event.VisitorID] = row
		}
		row[FeatureOverviewViews] += 1
	}
	return table, nil
}

func dateTable(events []RawEvent) FeatureTable {
	days := make(map[string]map[string]bool)
	months := make(map[string]map[string]bool)
	for _, event := range events {
		if _, ok := days[event.VisitorID]; !ok {
			days[event.VisitorID] = make(map[string]bool)
			months[event.VisitorID] = make(map[string]bool)
		}
		days[event.VisitorID][U.GetDateOnlyFromTimestampZ(event.HitTimestamp)] = true
		months[event.VisitorID][U.GetMonthOnlyFromTimestampZ(event.HitTimestamp)] = true
	}

	table := make(FeatureTable)
	for visitorID, daySet := range days {
		table[visitorID] = map[string]float64{
			FeatureDaysVisited:   float64(len(daySet)),
			FeatureMonthsVisited: float64(len(months[visitorID])),
		}
	}
	return table
}

// outerJoin merges two partial tables on visitor id, keeping the union of
// visitors and the union of each visitor's features.
func outerJoin(left, right FeatureTable) FeatureTable {
	joined := make(FeatureTable, len(left))
	for visitorID, features := range left {
		row := make(map[string]float64, len(features))
		for name, value := range features {
			row[name] = value
		}
		joined[visitorID] = row
	}
	for visitorID, features := range right {
		row, ok := joined[visitorID]
		if !ok {
			row = make(map[string]float64, len(features))
			joined[visitorID] = row
		}
		for name, value := range features {
			row[name] = value
		}
	}
	return joined
}

// zeroFill resolves features missing after the outer join to 0.
func zeroFill(table FeatureTable, features []string) {
	for _, row := range table {
		for _, name := range features {
			if _, ok := row[name]; !ok {
				row[name] = 0
			}
		}
	}
}
