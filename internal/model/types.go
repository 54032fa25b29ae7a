package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// AttackRecord is the persisted outcome of one adversarial attack run.
type AttackRecord struct {
	VersionedRecord
	RunID           string  `json:"run_id"`
	Classifier      string  `json:"classifier"`
	Goal            string  `json:"goal"`
	Metric          string  `json:"metric"`
	Magnitude       float64 `json:"magnitude"`
	Sigma           float64 `json:"sigma"`
	LearningRate    float64 `json:"learning_rate"`
	MinLearningRate float64 `json:"min_learning_rate"`
	LRTuning        bool    `json:"lr_tuning"`
	PlateauLength   int     `json:"plateau_length"`
	SamplesPerDraw  int     `json:"samples_per_draw"`
	MaxQueries      int     `json:"max_queries"`
	Seed            int64   `json:"seed"`
	QueriesUsed     int     `json:"queries_used"`
	Succeeded       bool    `json:"succeeded"`
	FinalLabel      int     `json:"final_label"`
	L2Distortion    float64 `json:"l2_distortion"`
	MaxDistortion   float64 `json:"max_distortion"`
	CreatedAtUTC    string  `json:"created_at_utc"`
}

type ClassifierSummary struct {
	VersionedRecord
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSize   int    `json:"input_size"`
	NumClasses  int    `json:"num_classes"`
}
