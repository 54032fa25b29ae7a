package attack

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"adversa/internal/classifier"
)

// Config carries the tunable attack options. Zero values are replaced by
// defaults at construction; Configure merges non-zero numeric fields onto
// the current settings and applies LRTuning and Logger unconditionally.
type Config struct {
	// Magnitude is the metric-ball radius eps around the original input.
	Magnitude float64
	// MaxQueries bounds the total scoring queries charged to gradient
	// estimation. A draw is only started when the remaining budget covers it.
	MaxQueries int
	// Sigma is the Gaussian search-distribution standard deviation.
	Sigma float64
	// LearningRate is the initial step size; when LRTuning is enabled it is
	// halved on loss plateaus, floored at MinLearningRate.
	LearningRate    float64
	MinLearningRate float64
	LRTuning        bool
	// PlateauLength is the sliding loss-window size for plateau detection.
	PlateauLength int
	Logger        ProgressLogger
}

const (
	DefaultMaxQueries      = 10000
	DefaultSigma           = 0.001
	DefaultLearningRate    = 0.01
	DefaultMinLearningRate = 0.0005
	DefaultPlateauLength   = 20
	DefaultMagnitude       = 0.05
	DefaultSamplesPerDraw  = 50
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusExhausted Status = "exhausted"
)

// Result is the outcome of one attack run. On exhaustion Adversarial holds
// the last candidate regardless of success.
type Result struct {
	Adversarial     []float64
	QueriesUsed     int
	Status          Status
	FinalLabel      int
	MeanLossHistory []float64
	L2Distortion    float64
	MaxDistortion   float64
}

// NES drives the estimation-and-update loop: NES gradient estimation over
// antithetic Gaussian samples, followed by a projected gradient step
// constrained to the configured metric ball and the classifier's valid
// value range.
type NES struct {
	classifier     classifier.Classifier
	goal           Goal
	metric         Metric
	samplesPerDraw int
	rng            *rand.Rand
	cfg            Config
}

func New(c classifier.Classifier, goal Goal, metric Metric, samplesPerDraw int, rng *rand.Rand, cfg Config) (*NES, error) {
	if c == nil {
		return nil, errors.New("classifier is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	switch goal {
	case GoalUntargeted, GoalTargeted, GoalTargetedMisclassify:
	default:
		return nil, fmt.Errorf("unsupported goal: %s", goal)
	}
	switch metric {
	case MetricL2, MetricLInf:
	default:
		return nil, fmt.Errorf("unsupported distance metric: %s", metric)
	}
	if samplesPerDraw <= 0 {
		samplesPerDraw = DefaultSamplesPerDraw
	}
	samplesPerDraw = (samplesPerDraw / 2) * 2
	if samplesPerDraw < 2 {
		return nil, fmt.Errorf("samples per draw must be >= 2, got %d", samplesPerDraw)
	}

	n := &NES{
		classifier:     c,
		goal:           goal,
		metric:         metric,
		samplesPerDraw: samplesPerDraw,
		rng:            rng,
		cfg:            applyDefaults(cfg),
	}
	if n.cfg.Sigma <= 0 {
		return nil, fmt.Errorf("sigma must be > 0, got %g", n.cfg.Sigma)
	}
	return n, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.Magnitude == 0 {
		cfg.Magnitude = DefaultMagnitude
	}
	if cfg.MaxQueries == 0 {
		cfg.MaxQueries = DefaultMaxQueries
	}
	if cfg.Sigma == 0 {
		cfg.Sigma = DefaultSigma
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if cfg.MinLearningRate == 0 {
		cfg.MinLearningRate = DefaultMinLearningRate
	}
	if cfg.PlateauLength == 0 {
		cfg.PlateauLength = DefaultPlateauLength
	}
	return cfg
}

// Configure merges new options onto the current configuration. Zero-valued
// numeric fields keep their current setting; LRTuning and Logger are
// applied as given.
func (n *NES) Configure(cfg Config) error {
	merged := n.cfg
	if cfg.Magnitude != 0 {
		merged.Magnitude = cfg.Magnitude
	}
	if cfg.MaxQueries != 0 {
		merged.MaxQueries = cfg.MaxQueries
	}
	if cfg.Sigma != 0 {
		merged.Sigma = cfg.Sigma
	}
	if cfg.LearningRate != 0 {
		merged.LearningRate = cfg.LearningRate
	}
	if cfg.MinLearningRate != 0 {
		merged.MinLearningRate = cfg.MinLearningRate
	}
	if cfg.PlateauLength != 0 {
		merged.PlateauLength = cfg.PlateauLength
	}
	merged.LRTuning = cfg.LRTuning
	merged.Logger = cfg.Logger

	if merged.Sigma <= 0 {
		return fmt.Errorf("sigma must be > 0, got %g", merged.Sigma)
	}
	n.cfg = merged
	return nil
}

func (n *NES) SamplesPerDraw() int {
	return n.samplesPerDraw
}

// Run attacks one input. label is the true label; target is only consulted
// for targeted goals. Success-predicate queries (one argmax prediction per
// iteration plus the initial check) are not charged against MaxQueries;
// QueriesUsed counts estimator batches only and is always a multiple of
// SamplesPerDraw.
func (n *NES) Run(ctx context.Context, input []float64, label, target int) (Result, error) {
	meta := n.classifier.Metadata()
	if len(input) != meta.InputSize() {
		return Result{}, fmt.Errorf("input size mismatch: got=%d want=%d", len(input), meta.InputSize())
	}

	estimator, err := NewEstimator(n.rng, n.samplesPerDraw, n.cfg.Sigma)
	if err != nil {
		return Result{}, err
	}

	origin := append([]float64(nil), input...)
	current := append([]float64(nil), origin...)
	lr := n.cfg.LearningRate
	queries := 0
	lossWindow := make([]float64, 0, n.cfg.PlateauLength)
	lossHistory := make([]float64, 0)

	// The margin loss tracks the true label for untargeted goals and the
	// target label otherwise.
	lossLabel := label
	if n.goal.Targeted() {
		lossLabel = target
	}

	predicted, err := classifier.Predict(ctx, n.classifier, current)
	if err != nil {
		return Result{}, err
	}
	if n.adversarial(predicted, label, target) {
		return n.result(current, origin, queries, StatusSucceeded, predicted, lossHistory), nil
	}

	for queries+n.samplesPerDraw <= n.cfg.MaxQueries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		estimate, err := estimator.Estimate(ctx, n.classifier, current, lossLabel, n.goal)
		if err != nil {
			return Result{}, err
		}
		queries += n.samplesPerDraw
		lossHistory = append(lossHistory, estimate.MeanLoss)

		if n.cfg.LRTuning {
			lossWindow = append(lossWindow, estimate.MeanLoss)
			if len(lossWindow) > n.cfg.PlateauLength {
				lossWindow = lossWindow[len(lossWindow)-n.cfg.PlateauLength:]
			}
			if len(lossWindow) == n.cfg.PlateauLength && n.stalled(lossWindow) {
				lr = lr / 2
				if lr < n.cfg.MinLearningRate {
					lr = n.cfg.MinLearningRate
				}
				lossWindow = lossWindow[:0]
			}
		}

		current, err = Update(current, origin, estimate.Gradient, lr, n.cfg.Magnitude, n.metric, meta.MinValue, meta.MaxValue)
		if err != nil {
			return Result{}, err
		}

		predicted, err = classifier.Predict(ctx, n.classifier, current)
		if err != nil {
			return Result{}, err
		}
		if n.cfg.Logger != nil {
			n.cfg.Logger.Progress(Progress{
				QueryCount:       queries,
				MeanLoss:         estimate.MeanLoss,
				CurrentLR:        lr,
				PredictedLabel:   predicted,
				MaxAbsDistortion: MaxDistortion(current, origin),
				L2Distortion:     L2Distortion(current, origin),
			})
		}

		if n.adversarial(predicted, label, target) {
			return n.result(current, origin, queries, StatusSucceeded, predicted, lossHistory), nil
		}
	}

	return n.result(current, origin, queries, StatusExhausted, predicted, lossHistory), nil
}

// stalled reports an unfavorable loss trend across the full window: for
// untargeted goals the margin loss should grow, for targeted goals shrink.
func (n *NES) stalled(window []float64) bool {
	first := window[0]
	last := window[len(window)-1]
	if n.goal.Targeted() {
		return last > first
	}
	return last < first
}

func (n *NES) adversarial(predicted, label, target int) bool {
	if n.goal == GoalTargeted {
		return predicted == target
	}
	return predicted != label
}

func (n *NES) result(current, origin []float64, queries int, status Status, predicted int, lossHistory []float64) Result {
	return Result{
		Adversarial:     current,
		QueriesUsed:     queries,
		Status:          status,
		FinalLabel:      predicted,
		MeanLossHistory: lossHistory,
		L2Distortion:    L2Distortion(current, origin),
		MaxDistortion:   MaxDistortion(current, origin),
	}
}
