package clickstream

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LoadRawEvents reads every hit file matching the given glob into memory.
// Files are tab-delimited and headerless. Malformed rows fail the whole
// load; there is no row skipping.
func LoadRawEvents(globPattern string) ([]RawEvent, error) {
	filePaths, err := filepath.Glob(globPattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hit file glob %q", globPattern)
	}
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no hit files match glob %q", globPattern)
	}

	events := make([]RawEvent, 0)
	for _, filePath := range filePaths {
		fileEvents, err := loadHitFile(filePath)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"file": filePath, "rows": len(fileEvents)}).Info("Loaded hit file")
		events = append(events, fileEvents...)
	}
	return events, nil
}

func loadHitFile(filePath string) ([]RawEvent, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open hit file %s", filePath)
	}
	defer f.Close()
	return ReadRawEvents(f, filePath)
}

// ReadRawEvents parses tab-delimited hit records from the given reader.
// name is used only for error context.
func ReadRawEvents(r io.Reader, name string) ([]RawEvent, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	events := make([]RawEvent, 0)
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed reading %s line %d", name, lineNum+1)
		}
		lineNum++

		event, err := ProjectColumns(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %v", name, lineNum, err)
		}
		events = append(events, event)
	}
	return events, nil
}
