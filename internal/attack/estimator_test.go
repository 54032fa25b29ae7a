package attack

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"adversa/internal/classifier"
)

func TestNewEstimatorRoundsDownToEven(t *testing.T) {
	e, err := NewEstimator(rand.New(rand.NewSource(1)), 7, 0.1)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}
	if e.SamplesPerDraw() != 6 {
		t.Fatalf("samples per draw got=%d want=6", e.SamplesPerDraw())
	}
}

func TestNewEstimatorValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewEstimator(nil, 10, 0.1); err == nil {
		t.Fatalf("expected error for nil random source")
	}
	if _, err := NewEstimator(rng, 1, 0.1); err == nil {
		t.Fatalf("expected error for samples per draw below 2")
	}
	if _, err := NewEstimator(rng, 10, 0); err == nil {
		t.Fatalf("expected error for non-positive sigma")
	}
}

func TestDrawPerturbationsAntithetic(t *testing.T) {
	e, err := NewEstimator(rand.New(rand.NewSource(7)), 8, 0.001)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	perts := e.drawPerturbations(5)
	if len(perts) != 8 {
		t.Fatalf("perturbation count got=%d want=8", len(perts))
	}
	half := len(perts) / 2
	for i := 0; i < half; i++ {
		for d := range perts[i] {
			if perts[half+i][d] != -perts[i][d] {
				t.Fatalf("perturbation %d dim %d is not the negation of its pair: %g vs %g",
					half+i, d, perts[half+i][d], perts[i][d])
			}
		}
	}
}

func TestEstimateQueryAccounting(t *testing.T) {
	stub := thresholdClassifier()
	e, err := NewEstimator(rand.New(rand.NewSource(3)), 50, 0.001)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	_, err = e.Estimate(context.Background(), stub, []float64{0.4, 0.4, 0.4, 0.4}, 0, GoalUntargeted)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if stub.queries != 50 {
		t.Fatalf("queries got=%d want=50", stub.queries)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one batched scoring call, got=%d", stub.calls)
	}
}

func TestEstimateGradientDirection(t *testing.T) {
	// Scores depend only on the first coordinate, so the margin loss for
	// label 0 is -2*x[0] and its gradient along dim 0 is negative.
	stub := &stubClassifier{
		meta: classifier.Metadata{InputShape: []int{1}, NumClasses: 2, MinValue: -1, MaxValue: 1},
		scoreFn: func(input []float64) []float64 {
			return []float64{input[0], -input[0]}
		},
	}

	e, err := NewEstimator(rand.New(rand.NewSource(11)), 40, 0.001)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	est, err := e.Estimate(context.Background(), stub, []float64{0}, 0, GoalUntargeted)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.Gradient[0] >= 0 {
		t.Fatalf("untargeted gradient along dim 0 got=%g want negative", est.Gradient[0])
	}

	// The same geometry with label 0 as the target descends, so the sign
	// flips.
	est, err = e.Estimate(context.Background(), stub, []float64{0}, 0, GoalTargeted)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.Gradient[0] <= 0 {
		t.Fatalf("targeted gradient along dim 0 got=%g want positive", est.Gradient[0])
	}
}

func TestEstimateMeanLoss(t *testing.T) {
	// Constant scores give a constant margin loss regardless of the draw.
	stub := &stubClassifier{
		meta: classifier.Metadata{InputShape: []int{2}, NumClasses: 3, MinValue: 0, MaxValue: 1},
		scoreFn: func([]float64) []float64 {
			return []float64{1.0, 3.0, 2.0}
		},
	}

	e, err := NewEstimator(rand.New(rand.NewSource(5)), 10, 0.01)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	est, err := e.Estimate(context.Background(), stub, []float64{0.5, 0.5}, 0, GoalUntargeted)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if math.Abs(est.MeanLoss-2.0) > 1e-12 {
		t.Fatalf("mean loss got=%g want=2", est.MeanLoss)
	}
	if len(est.Losses) != 10 {
		t.Fatalf("loss count got=%d want=10", len(est.Losses))
	}
}

func TestMarginLoss(t *testing.T) {
	scores := []float64{1.0, 3.0, 2.0}

	loss, err := marginLoss(scores, 0)
	if err != nil {
		t.Fatalf("marginLoss: %v", err)
	}
	if loss != 2.0 {
		t.Fatalf("margin loss for label 0 got=%g want=2", loss)
	}

	loss, err = marginLoss(scores, 1)
	if err != nil {
		t.Fatalf("marginLoss: %v", err)
	}
	if loss != -1.0 {
		t.Fatalf("margin loss for label 1 got=%g want=-1", loss)
	}

	if _, err := marginLoss(scores, 3); err == nil {
		t.Fatalf("expected error for out-of-range label")
	}
	if _, err := marginLoss([]float64{1.0}, 0); err == nil {
		t.Fatalf("expected error for single-class scores")
	}
}

func TestEstimateContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewEstimator(rand.New(rand.NewSource(1)), 4, 0.01)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}
	if _, err := e.Estimate(ctx, thresholdClassifier(), []float64{0.4, 0.4, 0.4, 0.4}, 0, GoalUntargeted); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
