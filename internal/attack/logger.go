package attack

import "github.com/sirupsen/logrus"

// Progress is the structured event emitted once per attack iteration.
type Progress struct {
	QueryCount       int
	MeanLoss         float64
	CurrentLR        float64
	PredictedLabel   int
	MaxAbsDistortion float64
	L2Distortion     float64
}

// ProgressLogger receives per-iteration progress events. A nil logger on
// the attack config disables progress reporting entirely.
type ProgressLogger interface {
	Progress(p Progress)
}

type logrusProgress struct {
	logger logrus.FieldLogger
}

// NewLogrusProgress adapts a logrus logger into a ProgressLogger.
func NewLogrusProgress(logger logrus.FieldLogger) ProgressLogger {
	return logrusProgress{logger: logger}
}

func (l logrusProgress) Progress(p Progress) {
	l.logger.WithFields(logrus.Fields{
		"query_count":        p.QueryCount,
		"mean_loss":          p.MeanLoss,
		"current_lr":         p.CurrentLR,
		"predicted_label":    p.PredictedLabel,
		"max_abs_distortion": p.MaxAbsDistortion,
		"l2_distortion":      p.L2Distortion,
	}).Info("attack progress")
}
