package adversa

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"adversa/internal/attack"
	"adversa/internal/classifier"
	"adversa/internal/model"
	"adversa/internal/report"
	"adversa/internal/storage"
)

const (
	defaultRunsDir = "runs"
	defaultDBPath  = "adversa.db"
)

type Options struct {
	StoreKind string
	DBPath    string
	RunsDir   string
}

// Client runs black-box adversarial attacks against registered classifiers
// and keeps a store-backed history of runs.
type Client struct {
	store   storage.Store
	runsDir string

	mu    sync.Mutex
	ready bool
}

type AttackRequest struct {
	Classifier      string
	Goal            string
	Metric          string
	Input           []float64
	Label           int
	Target          int
	Magnitude       float64
	Sigma           float64
	LearningRate    float64
	MinLearningRate float64
	LRTuning        bool
	PlateauLength   int
	SamplesPerDraw  int
	MaxQueries      int
	Seed            int64
	Verbose         bool
}

type AttackSummary struct {
	RunID         string
	Status        string
	Succeeded     bool
	QueriesUsed   int
	FinalLabel    int
	L2Distortion  float64
	MaxDistortion float64
	Adversarial   []float64
	ArtifactsDir  string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Classifier   string
	Goal         string
	Metric       string
	QueriesUsed  int
	Succeeded    bool
	L2Distortion float64
}

type ExportRequest struct {
	RunID  string
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := registerDefaultClassifiers(); err != nil {
		return nil, err
	}

	return &Client{
		store:   store,
		runsDir: runsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// Classifiers lists the registered classifier names.
func (c *Client) Classifiers() []string {
	return classifier.Names()
}

// Attack runs one attack and persists its record, loss history, and run
// artifacts. The classifier name may also be an http(s) base URL, in which
// case a remote scoring service is used.
func (c *Client) Attack(ctx context.Context, req AttackRequest) (AttackSummary, error) {
	if err := c.ensureStore(ctx); err != nil {
		return AttackSummary{}, err
	}
	if len(req.Input) == 0 {
		return AttackSummary{}, fmt.Errorf("input vector is required")
	}
	if req.Classifier == "" {
		req.Classifier = DemoClassifierName
	}

	goal, err := attack.GoalFromName(req.Goal)
	if err != nil {
		return AttackSummary{}, err
	}
	metric, err := attack.MetricFromName(req.Metric)
	if err != nil {
		return AttackSummary{}, err
	}
	target, err := resolveClassifier(ctx, req.Classifier)
	if err != nil {
		return AttackSummary{}, err
	}

	cfg := attack.Config{
		Magnitude:       req.Magnitude,
		MaxQueries:      req.MaxQueries,
		Sigma:           req.Sigma,
		LearningRate:    req.LearningRate,
		MinLearningRate: req.MinLearningRate,
		LRTuning:        req.LRTuning,
		PlateauLength:   req.PlateauLength,
	}
	if req.Verbose {
		cfg.Logger = attack.NewLogrusProgress(logrus.StandardLogger())
	}

	rng := rand.New(rand.NewSource(req.Seed))
	nes, err := attack.New(target, goal, metric, req.SamplesPerDraw, rng, cfg)
	if err != nil {
		return AttackSummary{}, err
	}

	result, err := nes.Run(ctx, req.Input, req.Label, req.Target)
	if err != nil {
		return AttackSummary{}, err
	}

	runID := uuid.NewString()
	record := model.AttackRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:           runID,
		Classifier:      target.Name(),
		Goal:            string(goal),
		Metric:          string(metric),
		Magnitude:       req.Magnitude,
		Sigma:           req.Sigma,
		LearningRate:    req.LearningRate,
		MinLearningRate: req.MinLearningRate,
		LRTuning:        req.LRTuning,
		PlateauLength:   req.PlateauLength,
		SamplesPerDraw:  nes.SamplesPerDraw(),
		MaxQueries:      req.MaxQueries,
		Seed:            req.Seed,
		QueriesUsed:     result.QueriesUsed,
		Succeeded:       result.Status == attack.StatusSucceeded,
		FinalLabel:      result.FinalLabel,
		L2Distortion:    result.L2Distortion,
		MaxDistortion:   result.MaxDistortion,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := c.store.SaveAttackRecord(ctx, record); err != nil {
		return AttackSummary{}, err
	}
	if err := c.store.SaveLossHistory(ctx, runID, result.MeanLossHistory); err != nil {
		return AttackSummary{}, err
	}
	meta := target.Metadata()
	if err := c.store.SaveClassifierSummary(ctx, model.ClassifierSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Name:       target.Name(),
		InputSize:  meta.InputSize(),
		NumClasses: meta.NumClasses,
	}); err != nil {
		return AttackSummary{}, err
	}

	runDir, err := report.WriteRunArtifacts(c.runsDir, report.RunArtifacts{
		Record:      record,
		Adversarial: result.Adversarial,
		LossHistory: result.MeanLossHistory,
	})
	if err != nil {
		return AttackSummary{}, err
	}

	return AttackSummary{
		RunID:         runID,
		Status:        string(result.Status),
		Succeeded:     record.Succeeded,
		QueriesUsed:   result.QueriesUsed,
		FinalLabel:    result.FinalLabel,
		L2Distortion:  result.L2Distortion,
		MaxDistortion: result.MaxDistortion,
		Adversarial:   result.Adversarial,
		ArtifactsDir:  runDir,
	}, nil
}

// Runs lists recorded attack runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListAttackRecords(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	items := make([]RunItem, 0, len(records))
	for _, record := range records {
		items = append(items, RunItem{
			RunID:        record.RunID,
			CreatedAtUTC: record.CreatedAtUTC,
			Classifier:   record.Classifier,
			Goal:         record.Goal,
			Metric:       record.Metric,
			QueriesUsed:  record.QueriesUsed,
			Succeeded:    record.Succeeded,
			L2Distortion: record.L2Distortion,
		})
	}
	return items, nil
}

// Export copies a run's artifacts directory into OutDir.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if err := c.ensureStore(ctx); err != nil {
		return ExportSummary{}, err
	}
	if req.RunID == "" {
		return ExportSummary{}, fmt.Errorf("run id is required")
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = "exports"
	}

	dir, err := report.ExportRun(c.runsDir, req.RunID, outDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: req.RunID, Directory: dir}, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.ready = true
	return nil
}

func resolveClassifier(ctx context.Context, name string) (classifier.Classifier, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return classifier.NewRemote(ctx, name)
	}
	return classifier.Resolve(name)
}
