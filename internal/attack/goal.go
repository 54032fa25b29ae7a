package attack

import "fmt"

// Goal selects what counts as a successful adversarial example and the
// direction of the estimated-gradient step.
type Goal string

const (
	// GoalUntargeted succeeds when the predicted label moves away from the
	// true label; the loop ascends the margin loss.
	GoalUntargeted Goal = "untargeted"
	// GoalTargeted succeeds only when the predicted label equals the
	// target label; the loop descends the margin loss toward it.
	GoalTargeted Goal = "targeted"
	// GoalTargetedMisclassify descends toward the target label but already
	// succeeds on any misclassification of the true label.
	GoalTargetedMisclassify Goal = "targeted_misclassify"
)

func GoalFromName(name string) (Goal, error) {
	switch name {
	case "", "ut", "untargeted":
		return GoalUntargeted, nil
	case "t", "targeted":
		return GoalTargeted, nil
	case "tm", "targeted_misclassify", "targeted-misclassify":
		return GoalTargetedMisclassify, nil
	default:
		return "", fmt.Errorf("unsupported goal: %s", name)
	}
}

// Targeted reports whether the gradient step descends the margin loss.
func (g Goal) Targeted() bool {
	return g != GoalUntargeted
}

// Metric is the norm bounding the perturbation around the original input.
type Metric string

const (
	MetricL2   Metric = "l2"
	MetricLInf Metric = "linf"
)

func MetricFromName(name string) (Metric, error) {
	switch name {
	case "", "l2", "l_2":
		return MetricL2, nil
	case "linf", "l_inf", "l-inf":
		return MetricLInf, nil
	default:
		return "", fmt.Errorf("unsupported distance metric: %s", name)
	}
}
