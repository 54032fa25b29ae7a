package attack

import (
	"fmt"
	"math"
)

// gradNormFloor guards the L2 normalization against an all-zero estimate.
const gradNormFloor = 1e-12

// Update takes one constrained step from current along the estimated
// gradient and returns the next candidate. The step starts at the previous
// adversarial point, the offset from origin is projected back into the
// metric ball of radius eps, and the absolute result is clipped into
// [minValue, maxValue] last so the value range always holds.
func Update(current, origin, gradient []float64, lr, eps float64, metric Metric, minValue, maxValue float64) ([]float64, error) {
	if len(current) != len(origin) || len(current) != len(gradient) {
		return nil, fmt.Errorf("length mismatch: current=%d origin=%d gradient=%d", len(current), len(origin), len(gradient))
	}

	next := make([]float64, len(current))
	switch metric {
	case MetricL2:
		norm := l2Norm(gradient)
		if norm < gradNormFloor {
			norm = gradNormFloor
		}
		delta := make([]float64, len(current))
		for d := range delta {
			delta[d] = current[d] - origin[d] + lr*gradient[d]/norm
		}
		deltaNorm := l2Norm(delta)
		scale := 1.0
		if deltaNorm > eps {
			scale = eps / deltaNorm
		}
		for d := range next {
			next[d] = origin[d] + delta[d]*scale
		}
	case MetricLInf:
		for d := range next {
			delta := current[d] - origin[d] + lr*sign(gradient[d])
			if delta > eps {
				delta = eps
			} else if delta < -eps {
				delta = -eps
			}
			next[d] = origin[d] + delta
		}
	default:
		return nil, fmt.Errorf("unsupported distance metric: %s", metric)
	}

	for d := range next {
		if next[d] < minValue {
			next[d] = minValue
		} else if next[d] > maxValue {
			next[d] = maxValue
		}
	}
	return next, nil
}

// L2Distortion is the Euclidean distance between a candidate and its origin.
func L2Distortion(candidate, origin []float64) float64 {
	sum := 0.0
	for d := range candidate {
		diff := candidate[d] - origin[d]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// MaxDistortion is the largest elementwise distance between a candidate
// and its origin.
func MaxDistortion(candidate, origin []float64) float64 {
	max := 0.0
	for d := range candidate {
		diff := math.Abs(candidate[d] - origin[d])
		if diff > max {
			max = diff
		}
	}
	return max
}

func l2Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
