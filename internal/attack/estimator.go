package attack

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"adversa/internal/classifier"
)

// Estimator produces NES gradient estimates: it draws antithetic Gaussian
// perturbations around the current candidate, scores the perturbed points
// through the black-box classifier, and averages margin losses weighted by
// their perturbations into a single gradient vector.
type Estimator struct {
	rng            *rand.Rand
	samplesPerDraw int
	sigma          float64
}

// Estimate is the output of one draw: the estimated gradient, the margin
// loss per sample, and their mean.
type Estimate struct {
	Gradient []float64
	Losses   []float64
	MeanLoss float64
}

// NewEstimator validates the sampling contract. samplesPerDraw is rounded
// down to the nearest even count so every perturbation can be paired with
// its negation.
func NewEstimator(rng *rand.Rand, samplesPerDraw int, sigma float64) (*Estimator, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	samplesPerDraw = (samplesPerDraw / 2) * 2
	if samplesPerDraw < 2 {
		return nil, fmt.Errorf("samples per draw must be >= 2, got %d", samplesPerDraw)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("sigma must be > 0, got %g", sigma)
	}
	return &Estimator{rng: rng, samplesPerDraw: samplesPerDraw, sigma: sigma}, nil
}

func (e *Estimator) SamplesPerDraw() int {
	return e.samplesPerDraw
}

// Estimate issues exactly SamplesPerDraw scoring queries in one batched
// call. label is the true label for untargeted goals and the target label
// for targeted goals; the returned gradient already carries the goal's
// ascent/descent sign.
func (e *Estimator) Estimate(ctx context.Context, c classifier.Classifier, current []float64, label int, goal Goal) (Estimate, error) {
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}

	perts := e.drawPerturbations(len(current))
	points := make([][]float64, len(perts))
	for s, pert := range perts {
		point := make([]float64, len(current))
		for d := range current {
			point[d] = current[d] + e.sigma*pert[d]
		}
		points[s] = point
	}

	scores, _, err := c.Scores(ctx, points)
	if err != nil {
		return Estimate{}, err
	}
	if len(scores) != len(points) {
		return Estimate{}, fmt.Errorf("%w: scores=%d want=%d", classifier.ErrMalformedResponse, len(scores), len(points))
	}

	losses := make([]float64, len(scores))
	lossTotal := 0.0
	for s, row := range scores {
		loss, err := marginLoss(row, label)
		if err != nil {
			return Estimate{}, fmt.Errorf("sample %d: %w", s, err)
		}
		losses[s] = loss
		lossTotal += loss
	}

	gradient := make([]float64, len(current))
	for s, pert := range perts {
		for d := range gradient {
			gradient[d] += losses[s] * pert[d]
		}
	}
	scale := 1.0 / (float64(len(perts)) * e.sigma)
	if goal.Targeted() {
		scale = -scale
	}
	for d := range gradient {
		gradient[d] *= scale
	}

	return Estimate{
		Gradient: gradient,
		Losses:   losses,
		MeanLoss: lossTotal / float64(len(losses)),
	}, nil
}

// drawPerturbations returns samplesPerDraw standard-normal vectors where
// the second half is the elementwise negation of the first.
func (e *Estimator) drawPerturbations(size int) [][]float64 {
	half := e.samplesPerDraw / 2
	perts := make([][]float64, e.samplesPerDraw)
	for i := 0; i < half; i++ {
		pert := make([]float64, size)
		neg := make([]float64, size)
		for d := range pert {
			v := e.rng.NormFloat64()
			pert[d] = v
			neg[d] = -v
		}
		perts[i] = pert
		perts[half+i] = neg
	}
	return perts
}

// marginLoss is the C&W-style margin: highest non-label score minus the
// label score. Positive means the classifier already prefers another class.
func marginLoss(scores []float64, label int) (float64, error) {
	if label < 0 || label >= len(scores) {
		return 0, fmt.Errorf("label %d out of range for %d classes", label, len(scores))
	}
	if len(scores) < 2 {
		return 0, fmt.Errorf("margin loss requires at least 2 classes, got %d", len(scores))
	}

	that := 0.0
	found := false
	for j, score := range scores {
		if j == label {
			continue
		}
		if !found || score > that {
			that = score
			found = true
		}
	}
	return that - scores[label], nil
}
