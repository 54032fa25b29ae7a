package classifier

import (
	"context"
	"fmt"
)

// Linear is a deterministic in-process affine classifier. It exists so
// attacks can be exercised without any external model service: score_j =
// weights[j] . input + bias[j].
type Linear struct {
	name    string
	weights [][]float64
	bias    []float64
	meta    Metadata
}

func NewLinear(name string, weights [][]float64, bias []float64, meta Metadata) (*Linear, error) {
	if name == "" {
		return nil, fmt.Errorf("classifier name is required")
	}
	if meta.NumClasses < 2 {
		return nil, fmt.Errorf("classifier requires at least 2 classes, got %d", meta.NumClasses)
	}
	if meta.InputSize() <= 0 {
		return nil, fmt.Errorf("input shape must have positive size")
	}
	if meta.MinValue >= meta.MaxValue {
		return nil, fmt.Errorf("invalid value range [%g, %g]", meta.MinValue, meta.MaxValue)
	}
	if len(weights) != meta.NumClasses {
		return nil, fmt.Errorf("weight rows mismatch: got=%d want=%d", len(weights), meta.NumClasses)
	}
	if len(bias) != meta.NumClasses {
		return nil, fmt.Errorf("bias length mismatch: got=%d want=%d", len(bias), meta.NumClasses)
	}
	copied := make([][]float64, len(weights))
	for j, row := range weights {
		if len(row) != meta.InputSize() {
			return nil, fmt.Errorf("weight row %d length mismatch: got=%d want=%d", j, len(row), meta.InputSize())
		}
		copied[j] = append([]float64(nil), row...)
	}

	return &Linear{
		name:    name,
		weights: copied,
		bias:    append([]float64(nil), bias...),
		meta:    meta,
	}, nil
}

func (c *Linear) Name() string {
	return c.name
}

func (c *Linear) Metadata() Metadata {
	return c.meta
}

func (c *Linear) Scores(ctx context.Context, batch [][]float64) ([][]float64, []int, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	scores := make([][]float64, len(batch))
	labels := make([]int, len(batch))
	for i, input := range batch {
		if len(input) != c.meta.InputSize() {
			return nil, nil, fmt.Errorf("input %d size mismatch: got=%d want=%d", i, len(input), c.meta.InputSize())
		}
		row := make([]float64, c.meta.NumClasses)
		best := 0
		for j := 0; j < c.meta.NumClasses; j++ {
			sum := c.bias[j]
			for d, v := range input {
				sum += c.weights[j][d] * v
			}
			row[j] = sum
			if sum > row[best] {
				best = j
			}
		}
		scores[i] = row
		labels[i] = best
	}
	return scores, labels, nil
}
