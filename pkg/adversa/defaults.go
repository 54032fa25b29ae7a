package adversa

import (
	"errors"
	"sync"

	"adversa/internal/classifier"
)

// DemoClassifierName is the built-in linear classifier used when a request
// names no classifier.
const DemoClassifierName = "linear-demo"

var registerDefaultsOnce sync.Once

func registerDefaultClassifiers() error {
	var registerErr error
	registerDefaultsOnce.Do(func() {
		registerErr = classifier.Register(DemoClassifierName, func() (classifier.Classifier, error) {
			// A small 3-class affine model over 4 inputs in [0, 1]; weights
			// chosen so the decision boundaries sit inside the input cube.
			return classifier.NewLinear(
				DemoClassifierName,
				[][]float64{
					{2.0, -1.0, 0.5, 0.0},
					{-1.0, 2.0, 0.0, 0.5},
					{0.5, 0.5, -2.0, 1.0},
				},
				[]float64{0.1, -0.1, 0.0},
				classifier.Metadata{
					InputShape: []int{4},
					NumClasses: 3,
					MinValue:   0,
					MaxValue:   1,
				},
			)
		})
		if errors.Is(registerErr, classifier.ErrExists) {
			registerErr = nil
		}
	})
	return registerErr
}
