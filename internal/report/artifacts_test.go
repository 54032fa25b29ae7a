package report

import (
	"os"
	"path/filepath"
	"testing"

	"adversa/internal/model"
)

func testArtifacts(runID, createdAt string) RunArtifacts {
	return RunArtifacts{
		Record: model.AttackRecord{
			VersionedRecord: model.VersionedRecord{SchemaVersion: 1, CodecVersion: 1},
			RunID:           runID,
			Classifier:      "linear-demo",
			Goal:            "untargeted",
			Metric:          "linf",
			QueriesUsed:     150,
			Succeeded:       true,
			CreatedAtUTC:    createdAt,
		},
		Adversarial: []float64{0.7, 0.4, 0.4, 0.4},
		LossHistory: []float64{-0.2, -0.05, 0.1},
	}
}

func TestWriteAndReadRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()

	runDir, err := WriteRunArtifacts(baseDir, testArtifacts("run-1", "2026-08-23T10:00:00Z"))
	if err != nil {
		t.Fatalf("WriteRunArtifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("run dir got=%s", runDir)
	}

	for _, name := range []string{"run.json", "loss_history.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	artifacts, err := ReadRunArtifacts(baseDir, "run-1")
	if err != nil {
		t.Fatalf("ReadRunArtifacts: %v", err)
	}
	if artifacts.Record.RunID != "run-1" || artifacts.Record.QueriesUsed != 150 {
		t.Fatalf("record mismatch: got=%+v", artifacts.Record)
	}
	if len(artifacts.Adversarial) != 4 || artifacts.Adversarial[0] != 0.7 {
		t.Fatalf("adversarial mismatch: got=%v", artifacts.Adversarial)
	}
	if len(artifacts.LossHistory) != 3 {
		t.Fatalf("loss history mismatch: got=%v", artifacts.LossHistory)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatalf("expected error for missing run id")
	}
}

func TestRunIndexNewestFirstAndDeduplicated(t *testing.T) {
	baseDir := t.TempDir()

	if _, err := WriteRunArtifacts(baseDir, testArtifacts("run-old", "2026-08-21T10:00:00Z")); err != nil {
		t.Fatalf("WriteRunArtifacts: %v", err)
	}
	if _, err := WriteRunArtifacts(baseDir, testArtifacts("run-new", "2026-08-23T10:00:00Z")); err != nil {
		t.Fatalf("WriteRunArtifacts: %v", err)
	}
	// Rewriting the same run must replace its index entry, not add one.
	if _, err := WriteRunArtifacts(baseDir, testArtifacts("run-old", "2026-08-21T10:00:00Z")); err != nil {
		t.Fatalf("WriteRunArtifacts (rewrite): %v", err)
	}

	entries, err := ReadRunIndex(baseDir)
	if err != nil {
		t.Fatalf("ReadRunIndex: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("index length got=%d want=2", len(entries))
	}
	if entries[0].RunID != "run-new" || entries[1].RunID != "run-old" {
		t.Fatalf("index order got=[%s %s] want=[run-new run-old]", entries[0].RunID, entries[1].RunID)
	}
}

func TestReadRunIndexMissingIsEmpty(t *testing.T) {
	entries, err := ReadRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("ReadRunIndex: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got=%d entries", len(entries))
	}
}

func TestExportRun(t *testing.T) {
	baseDir := t.TempDir()
	outDir := t.TempDir()

	if _, err := WriteRunArtifacts(baseDir, testArtifacts("run-1", "2026-08-23T10:00:00Z")); err != nil {
		t.Fatalf("WriteRunArtifacts: %v", err)
	}

	dstDir, err := ExportRun(baseDir, "run-1", outDir)
	if err != nil {
		t.Fatalf("ExportRun: %v", err)
	}
	if dstDir != filepath.Join(outDir, "run-1") {
		t.Fatalf("export dir got=%s", dstDir)
	}
	for _, name := range []string{"run.json", "loss_history.json"} {
		if _, err := os.Stat(filepath.Join(dstDir, name)); err != nil {
			t.Fatalf("missing exported file %s: %v", name, err)
		}
	}
}

func TestExportRunUnknown(t *testing.T) {
	if _, err := ExportRun(t.TempDir(), "missing", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}
