package propensity

import (
	"fmt"
	"sort"

	"webinsights/clickstream"

	log "github.com/sirupsen/logrus"
)

// LabeledRow is one visitor's modeling inputs. The visitor id is carried for
// bookkeeping only and is never a predictor. HitCount is kept outside the
// predictor vector so the sampling filter works even when hit_count is the
// response source.
type LabeledRow struct {
	VisitorID string
	Features  []float64
	Response  float64
	HitCount  float64
}

// Dataset is an ordered set of labeled visitor rows sharing one predictor
// layout.
type Dataset struct {
	FeatureNames []string
	Rows         []LabeledRow
}

// DeriveResponse labels every visitor in the rollup with a binary response:
// 1 if the designated feature is positive, else 0. The source feature is
// removed from the predictor set so the model cannot see its own label.
func DeriveResponse(rollup *clickstream.Rollup, responseFeature string) (*Dataset, error) {
	featureNames := make([]string, 0, len(rollup.Features)-1)
	found := false
	for _, name := range rollup.Features {
		if name == responseFeature {
			found = true
			continue
		}
		featureNames = append(featureNames, name)
	}
	if !found {
		return nil, fmt.Errorf("response feature %q not present in rollup", responseFeature)
	}

	rows := make([]LabeledRow, 0, len(rollup.Rows))
	for _, visitorID := range rollup.VisitorIDs() {
		rollupRow := rollup.Rows[visitorID]

		response := 0.0
		if rollupRow[responseFeature] > 0 {
			response = 1.0
		}

		features := make([]float64, len(featureNames))
		for i, name := range featureNames {
			features[i] = rollupRow[name]
		}
		rows = append(rows, LabeledRow{
			VisitorID: visitorID,
			Features:  features,
			Response:  response,
			HitCount:  rollupRow[clickstream.FeatureHitCount],
		})
	}

	log.WithFields(log.Fields{"visitors": len(rows), "response": responseFeature}).
		Info("Derived response labels")
	return &Dataset{FeatureNames: featureNames, Rows: rows}, nil
}

// SelectTrainingSample draws a bounded training subset: single-hit visitors
// are dropped (they carry no usable signal and bias the single-visit cohort)
// and the remainder is ordered by visitor id descending before taking the
// first sampleSize rows. The ordering makes selection deterministic rather
// than random; callers relying on this should treat it as policy, not an
// accident.
func SelectTrainingSample(dataset *Dataset, sampleSize int) (*Dataset, error) {
	if sampleSize <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", sampleSize)
	}

	eligible := make([]LabeledRow, 0, len(dataset.Rows))
	for _, row := range dataset.Rows {
		if row.HitCount <= 1 {
			continue
		}
		eligible = append(eligible, row)
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].VisitorID > eligible[j].VisitorID
	})

	if sampleSize < len(eligible) {
		eligible = eligible[:sampleSize]
	}
	log.WithFields(log.Fields{"sample": len(eligible), "population": len(dataset.Rows)}).
		Info("Selected training sample")
	return &Dataset{FeatureNames: dataset.FeatureNames, Rows: eligible}, nil
}
