package classifier

import (
	"context"
	"errors"
)

// ErrMalformedResponse reports a classifier returning score or label
// batches whose shape does not match the request.
var ErrMalformedResponse = errors.New("classifier returned malformed response")

// Metadata describes the static input/output contract of a classifier.
type Metadata struct {
	InputShape []int
	NumClasses int
	MinValue   float64
	MaxValue   float64
}

// InputSize is the flat element count of one input tensor.
func (m Metadata) InputSize() int {
	if len(m.InputShape) == 0 {
		return 0
	}
	size := 1
	for _, dim := range m.InputShape {
		size *= dim
	}
	return size
}

// Classifier is a black-box scoring collaborator: it exposes per-class
// scores and argmax labels for a batch of flat input vectors, and nothing
// about how the scores are computed.
type Classifier interface {
	Name() string
	Metadata() Metadata
	Scores(ctx context.Context, batch [][]float64) ([][]float64, []int, error)
}

// Predict returns the argmax label for a single input.
func Predict(ctx context.Context, c Classifier, input []float64) (int, error) {
	_, labels, err := c.Scores(ctx, [][]float64{input})
	if err != nil {
		return 0, err
	}
	if len(labels) != 1 {
		return 0, ErrMalformedResponse
	}
	return labels[0], nil
}
