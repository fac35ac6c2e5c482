package propensity

import (
	"fmt"
	"math"

	U "webinsights/util"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingleClassSample is returned when the training sample holds only
	// one response class and a classifier cannot be fitted.
	ErrSingleClassSample = errors.New("training sample has a single response class")

	// ErrSingularDesign is returned when the weighted normal matrix is not
	// positive definite, which happens when predictors are perfectly
	// collinear.
	ErrSingularDesign = errors.New("design matrix is singular, predictors are collinear")
)

const (
	irlsMaxIterations = 25
	irlsTolerance     = 1e-8
	// Floors keep the working weights positive so the Cholesky factorization
	// stays well defined as fitted probabilities approach 0 or 1.
	minProbability = 1e-9
	minWeight      = 1e-10
)

// FittedModel holds the parameters of a fitted binary logistic regression.
// Immutable after fitting, used only for scoring.
type FittedModel struct {
	featureNames []string
	// intercept first, then one coefficient per feature in featureNames order
	coefficients []float64
	iterations   int
}

// VisitorScore is one visitor's predicted propensity.
type VisitorScore struct {
	VisitorID   string  `json:"vid"`
	Probability float64 `json:"prob"`
	Percent     int     `json:"pct"`
}

// Fit trains a binary logistic regression on the sample via iteratively
// reweighted least squares. Fit fails hard on degenerate inputs instead of
// degrading: a single-class sample or a collinear predictor set is a
// configuration/data error for the caller to resolve.
func Fit(sample *Dataset) (*FittedModel, error) {
	n := len(sample.Rows)
	if n == 0 {
		return nil, fmt.Errorf("cannot fit on an empty sample")
	}
	if err := checkTwoClasses(sample); err != nil {
		return nil, err
	}

	p := len(sample.FeatureNames) + 1 // intercept column
	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i, row := range sample.Rows {
		x.Set(i, 0, 1)
		for j, value := range row.Features {
			x.Set(i, j+1, value)
		}
		y[i] = row.Response
	}

	beta := make([]float64, p)
	mu := make([]float64, n)
	weights := make([]float64, n)
	iterations := 0

	for iter := 0; iter < irlsMaxIterations; iter++ {
		iterations = iter + 1
		for i := 0; i < n; i++ {
			eta := 0.0
			for j := 0; j < p; j++ {
				eta += x.At(i, j) * beta[j]
			}
			mu[i] = sigmoid(eta)
			if mu[i] < minProbability {
				mu[i] = minProbability
			} else if mu[i] > 1-minProbability {
				mu[i] = 1 - minProbability
			}
			weights[i] = mu[i] * (1 - mu[i])
			if weights[i] < minWeight {
				weights[i] = minWeight
			}
		}

		gradient := mat.NewVecDense(p, nil)
		for j := 0; j < p; j++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += x.At(i, j) * (y[i] - mu[i])
			}
			gradient.SetVec(j, sum)
		}

		hessian := mat.NewSymDense(p, nil)
		for j := 0; j < p; j++ {
			for k := j; k < p; k++ {
				sum := 0.0
				for i := 0; i < n; i++ {
					sum += weights[i] * x.At(i, j) * x.At(i, k)
				}
				hessian.SetSym(j, k, sum)
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(hessian); !ok {
			return nil, errors.Wrap(ErrSingularDesign, "IRLS normal matrix factorization failed")
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, gradient); err != nil {
			return nil, errors.Wrap(ErrSingularDesign, err.Error())
		}

		maxDelta := 0.0
		for j := 0; j < p; j++ {
			beta[j] += step.AtVec(j)
			if d := math.Abs(step.AtVec(j)); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < irlsTolerance {
			break
		}
	}

	log.WithFields(log.Fields{"sample": n, "predictors": len(sample.FeatureNames), "iterations": iterations}).
		Info("Fitted propensity model")
	return &FittedModel{
		featureNames: append([]string(nil), sample.FeatureNames...),
		coefficients: beta,
		iterations:   iterations,
	}, nil
}

func checkTwoClasses(sample *Dataset) error {
	seenPositive, seenNegative := false, false
	for _, row := range sample.Rows {
		if row.Response > 0 {
			seenPositive = true
		} else {
			seenNegative = true
		}
		if seenPositive && seenNegative {
			return nil
		}
	}
	return errors.Wrapf(ErrSingleClassSample, "%d rows", len(sample.Rows))
}

func sigmoid(eta float64) float64 {
	return 1.0 / (1.0 + math.Exp(-eta))
}

// Predict returns the fitted probability for one predictor vector laid out
// in the model's feature order.
func (m *FittedModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.featureNames) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.featureNames), len(features))
	}
	eta := m.coefficients[0]
	for j, value := range features {
		eta += m.coefficients[j+1] * value
	}
	return sigmoid(eta), nil
}

// ScoreAll scores every row of the full population, including visitors that
// were excluded from the training sample. Probabilities are also rounded to
// the nearest integer percentage.
func (m *FittedModel) ScoreAll(population *Dataset) ([]VisitorScore, error) {
	if len(population.FeatureNames) != len(m.featureNames) {
		return nil, fmt.Errorf("population has %d features, model was fitted on %d",
			len(population.FeatureNames), len(m.featureNames))
	}

	scores := make([]VisitorScore, 0, len(population.Rows))
	for _, row := range population.Rows {
		probability, err := m.Predict(row.Features)
		if err != nil {
			return nil, err
		}
		scores = append(scores, VisitorScore{
			VisitorID:   row.VisitorID,
			Probability: probability,
			Percent:     U.RoundToPercent(probability),
		})
	}
	return scores, nil
}
