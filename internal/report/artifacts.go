package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"adversa/internal/model"
)

const (
	runIndexFile    = "run_index.json"
	runFile         = "run.json"
	lossHistoryFile = "loss_history.json"
)

// RunArtifacts is the on-disk payload for one attack run.
type RunArtifacts struct {
	Record      model.AttackRecord `json:"record"`
	Adversarial []float64          `json:"adversarial"`
	LossHistory []float64          `json:"loss_history"`
}

// RunIndexEntry is one line of the base-directory run index.
type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	CreatedAtUTC string `json:"created_at_utc"`
	Classifier   string `json:"classifier"`
	Goal         string `json:"goal"`
	Succeeded    bool   `json:"succeeded"`
	QueriesUsed  int    `json:"queries_used"`
}

// WriteRunArtifacts writes run.json and loss_history.json under
// baseDir/<run-id>/ and updates the run index. Returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	runID := artifacts.Record.RunID
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, runFile), artifacts); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, lossHistoryFile), artifacts.LossHistory); err != nil {
		return "", err
	}

	if err := appendRunIndex(baseDir, RunIndexEntry{
		RunID:        runID,
		CreatedAtUTC: artifacts.Record.CreatedAtUTC,
		Classifier:   artifacts.Record.Classifier,
		Goal:         artifacts.Record.Goal,
		Succeeded:    artifacts.Record.Succeeded,
		QueriesUsed:  artifacts.Record.QueriesUsed,
	}); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRunArtifacts loads the payload for one run from baseDir.
func ReadRunArtifacts(baseDir, runID string) (RunArtifacts, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, runFile))
	if err != nil {
		return RunArtifacts{}, err
	}
	var artifacts RunArtifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return RunArtifacts{}, fmt.Errorf("decode run artifacts %s: %w", runID, err)
	}
	return artifacts, nil
}

// ReadRunIndex returns the index entries newest first.
func ReadRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode run index: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAtUTC == entries[j].CreatedAtUTC {
			return entries[i].RunID < entries[j].RunID
		}
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

// ExportRun copies one run directory into outDir and returns the
// destination directory.
func ExportRun(baseDir, runID, outDir string) (string, error) {
	srcDir := filepath.Join(baseDir, runID)
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return "", err
	}

	dstDir := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, entry.Name()))
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dstDir, entry.Name()), data, 0o644); err != nil {
			return "", err
		}
	}
	return dstDir, nil
}

func appendRunIndex(baseDir string, entry RunIndexEntry) error {
	entries, err := ReadRunIndex(baseDir)
	if err != nil {
		return err
	}
	filtered := make([]RunIndexEntry, 0, len(entries)+1)
	for _, existing := range entries {
		if existing.RunID == entry.RunID {
			continue
		}
		filtered = append(filtered, existing)
	}
	filtered = append(filtered, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), filtered)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
