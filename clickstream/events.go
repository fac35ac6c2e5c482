package clickstream

import (
	"fmt"

	U "webinsights/util"
)

// Positional columns of the raw tab-delimited hit files. Only the first
// eight are used; anything after is carried by the upstream logger and
// ignored here.
const (
	colVisIDHigh = iota
	colVisIDLow
	colVisitNum
	colBrowserID
	colEventList
	colHitTimestamp
	colPageEvent
	colPageName

	numRawColumns
)

// pageEventNone is the sentinel page-event code for a plain page view.
const pageEventNone = 0

// RawEvent is one recorded hit. Immutable once loaded.
type RawEvent struct {
	VisitorID    string
	VisitNum     int64
	BrowserID    string
	EventList    string
	HitTimestamp int64
	PageEvent    int64
	PageName     string
}

// ProjectColumns maps one positional raw record onto a RawEvent. The two
// visitor id halves are concatenated into the single visitor key used by
// every downstream aggregation.
func ProjectColumns(record []string) (RawEvent, error) {
	if len(record) < numRawColumns {
		return RawEvent{}, fmt.Errorf("raw record has %d columns, need at least %d", len(record), numRawColumns)
	}

	visitNum, err := U.ParseIntStrict(record[colVisitNum])
	if err != nil {
		return RawEvent{}, fmt.Errorf("bad visit number column: %v", err)
	}
	hitTimestamp, err := U.ParseIntStrict(record[colHitTimestamp])
	if err != nil {
		return RawEvent{}, fmt.Errorf("bad hit timestamp column: %v", err)
	}
	pageEvent, err := U.ParseIntStrict(record[colPageEvent])
	if err != nil {
		return RawEvent{}, fmt.Errorf("bad page event column: %v", err)
	}

	return RawEvent{
		VisitorID:    record[colVisIDHigh] + "_" + record[colVisIDLow],
		VisitNum:     visitNum,
		BrowserID:    record[colBrowserID],
		EventList:    record[colEventList],
		HitTimestamp: hitTimestamp,
		PageEvent:    pageEvent,
		PageName:     record[colPageName],
	}, nil
}
