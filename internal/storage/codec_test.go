package storage

import (
	"errors"
	"testing"

	"adversa/internal/model"
)

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func TestAttackRecordCodec(t *testing.T) {
	record := model.AttackRecord{
		VersionedRecord: currentVersion(),
		RunID:           "run-1",
		Classifier:      "linear-demo",
		Goal:            "untargeted",
		Metric:          "linf",
		Magnitude:       0.3,
		SamplesPerDraw:  50,
		MaxQueries:      1000,
		QueriesUsed:     150,
		Succeeded:       true,
		FinalLabel:      1,
		L2Distortion:    0.42,
		CreatedAtUTC:    "2026-08-23T10:00:00Z",
	}

	data, err := EncodeAttackRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeAttackRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RunID != record.RunID || decoded.QueriesUsed != record.QueriesUsed || decoded.L2Distortion != record.L2Distortion {
		t.Fatalf("roundtrip mismatch: got=%+v", decoded)
	}
}

func TestDecodeAttackRecordVersionMismatch(t *testing.T) {
	record := model.AttackRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 99, CodecVersion: CurrentCodecVersion},
		RunID:           "run-1",
	}
	data, err := EncodeAttackRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeAttackRecord(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("decode error got=%v want=%v", err, ErrVersionMismatch)
	}
}

func TestDecodeAttackRecordBadPayload(t *testing.T) {
	if _, err := DecodeAttackRecord([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestClassifierSummaryCodec(t *testing.T) {
	summary := model.ClassifierSummary{
		VersionedRecord: currentVersion(),
		Name:            "linear-demo",
		InputSize:       4,
		NumClasses:      3,
	}

	data, err := EncodeClassifierSummary(summary)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeClassifierSummary(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != summary {
		t.Fatalf("roundtrip mismatch: got=%+v want=%+v", decoded, summary)
	}

	summary.CodecVersion = 99
	data, err = EncodeClassifierSummary(summary)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeClassifierSummary(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("decode error got=%v want=%v", err, ErrVersionMismatch)
	}
}

func TestLossHistoryCodec(t *testing.T) {
	history := []float64{-0.2, -0.1, 0.05}

	data, err := EncodeLossHistory(history)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeLossHistory(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(history) {
		t.Fatalf("length got=%d want=%d", len(decoded), len(history))
	}
	for i := range history {
		if decoded[i] != history[i] {
			t.Fatalf("entry %d got=%g want=%g", i, decoded[i], history[i])
		}
	}
}
