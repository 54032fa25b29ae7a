package attack

import (
	"context"

	"adversa/internal/classifier"
)

// stubClassifier scores every input through scoreFn and tracks how many
// scoring queries it has served.
type stubClassifier struct {
	meta    classifier.Metadata
	scoreFn func(input []float64) []float64
	queries int
	calls   int
}

func (s *stubClassifier) Name() string {
	return "stub"
}

func (s *stubClassifier) Metadata() classifier.Metadata {
	return s.meta
}

func (s *stubClassifier) Scores(_ context.Context, batch [][]float64) ([][]float64, []int, error) {
	s.calls++
	s.queries += len(batch)

	scores := make([][]float64, len(batch))
	labels := make([]int, len(batch))
	for i, input := range batch {
		row := s.scoreFn(input)
		best := 0
		for j := range row {
			if row[j] > row[best] {
				best = j
			}
		}
		scores[i] = row
		labels[i] = best
	}
	return scores, labels, nil
}

// thresholdClassifier matches the step-function scenario: label 1 whenever
// any coordinate exceeds 0.5, label 0 otherwise.
func thresholdClassifier() *stubClassifier {
	return &stubClassifier{
		meta: classifier.Metadata{
			InputShape: []int{4},
			NumClasses: 2,
			MinValue:   0,
			MaxValue:   1,
		},
		scoreFn: func(input []float64) []float64 {
			max := input[0]
			for _, v := range input[1:] {
				if v > max {
					max = v
				}
			}
			return []float64{0.5 - max, max - 0.5}
		},
	}
}

// progressRecorder captures every per-iteration event.
type progressRecorder struct {
	events []Progress
}

func (r *progressRecorder) Progress(p Progress) {
	r.events = append(r.events, p)
}
